package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cliptube/backend/internal/models"
)

func TestLikeToggles(t *testing.T) {
	f := newFixture()
	aliceCookies := f.registerAndLogin(t, "alice")
	bobCookies := f.registerAndLogin(t, "bob")
	video := f.publishVideo(t, aliceCookies, "clip")

	toggle := func(path string, cookies []*http.Cookie) (int, bool) {
		t.Helper()
		rec, env := f.do(t, withCookies(httptest.NewRequest(http.MethodPost, path, nil), cookies))
		var state map[string]bool
		if rec.Code == http.StatusOK {
			if err := json.Unmarshal(env.Data, &state); err != nil {
				t.Fatalf("decode toggle state: %v", err)
			}
		}
		return rec.Code, state["liked"]
	}

	status, liked := toggle("/api/v1/likes/toggle/video/"+video.ID, bobCookies)
	if status != http.StatusOK || !liked {
		t.Fatalf("expected like on, got status %d liked %v", status, liked)
	}

	status, liked = toggle("/api/v1/likes/toggle/video/"+video.ID, bobCookies)
	if status != http.StatusOK || liked {
		t.Fatalf("expected like off, got status %d liked %v", status, liked)
	}

	if status, _ = toggle("/api/v1/likes/toggle/video/missing", bobCookies); status != http.StatusNotFound {
		t.Fatalf("expected 404 liking missing video, got %d", status)
	}
	if status, _ = toggle("/api/v1/likes/toggle/comment/missing", bobCookies); status != http.StatusNotFound {
		t.Fatalf("expected 404 liking missing comment, got %d", status)
	}
	if status, _ = toggle("/api/v1/likes/toggle/tweet/missing", bobCookies); status != http.StatusNotFound {
		t.Fatalf("expected 404 liking missing tweet, got %d", status)
	}
}

func TestLikedVideosListing(t *testing.T) {
	f := newFixture()
	aliceCookies := f.registerAndLogin(t, "alice")
	bobCookies := f.registerAndLogin(t, "bob")

	first := f.publishVideo(t, aliceCookies, "first")
	second := f.publishVideo(t, aliceCookies, "second")

	for _, video := range []models.Video{first, second} {
		rec, env := f.do(t, withCookies(httptest.NewRequest(http.MethodPost, "/api/v1/likes/toggle/video/"+video.ID, nil), bobCookies))
		if rec.Code != http.StatusOK {
			t.Fatalf("like %s: status %d, message %q", video.Title, rec.Code, env.Message)
		}
	}

	rec, env := f.do(t, withCookies(httptest.NewRequest(http.MethodGet, "/api/v1/likes/videos", nil), bobCookies))
	if rec.Code != http.StatusOK {
		t.Fatalf("liked videos: status %d, message %q", rec.Code, env.Message)
	}
	var videos []models.VideoWithOwner
	if err := json.Unmarshal(env.Data, &videos); err != nil {
		t.Fatalf("decode liked videos: %v", err)
	}
	if len(videos) != 2 {
		t.Fatalf("expected 2 liked videos, got %d", len(videos))
	}
	for _, video := range videos {
		if video.Owner.Username != "alice" {
			t.Fatalf("expected owner joined, got %+v", video.Owner)
		}
	}

	// Alice liked nothing; her list is empty, not an error.
	rec, env = f.do(t, withCookies(httptest.NewRequest(http.MethodGet, "/api/v1/likes/videos", nil), aliceCookies))
	if rec.Code != http.StatusOK {
		t.Fatalf("empty liked videos: status %d, message %q", rec.Code, env.Message)
	}
	if err := json.Unmarshal(env.Data, &videos); err != nil {
		t.Fatalf("decode liked videos: %v", err)
	}
	if len(videos) != 0 {
		t.Fatalf("expected empty list, got %d", len(videos))
	}
}
