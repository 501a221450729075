package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cliptube/backend/internal/models"
)

func (f *fixture) publishVideo(t *testing.T, cookies []*http.Cookie, title string) models.Video {
	t.Helper()
	req := multipartRequest(t, "/api/v1/videos", map[string]string{"title": title},
		map[string]string{"videoFile": title + ".mp4"})
	rec, env := f.do(t, withCookies(req, cookies))
	if rec.Code != http.StatusCreated {
		t.Fatalf("publish %s: status %d, message %q", title, rec.Code, env.Message)
	}
	var video models.Video
	if err := json.Unmarshal(env.Data, &video); err != nil {
		t.Fatalf("decode video: %v", err)
	}
	return video
}

func TestCommentLifecycle(t *testing.T) {
	f := newFixture()
	aliceCookies := f.registerAndLogin(t, "alice")
	bobCookies := f.registerAndLogin(t, "bob")
	video := f.publishVideo(t, aliceCookies, "clip")

	// Bob comments on alice's video.
	rec, env := f.do(t, withCookies(jsonRequest(t, http.MethodPost, "/api/v1/videos/"+video.ID+"/comments",
		map[string]string{"content": "nice clip"}), bobCookies))
	if rec.Code != http.StatusCreated {
		t.Fatalf("add comment: status %d, message %q", rec.Code, env.Message)
	}
	var comment models.Comment
	if err := json.Unmarshal(env.Data, &comment); err != nil {
		t.Fatalf("decode comment: %v", err)
	}
	if comment.Content != "nice clip" || comment.VideoID != video.ID {
		t.Fatalf("unexpected comment: %+v", comment)
	}

	// Bob can edit his own comment.
	rec, env = f.do(t, withCookies(jsonRequest(t, http.MethodPatch, "/api/v1/comments/"+comment.ID,
		map[string]string{"content": "really nice clip"}), bobCookies))
	if rec.Code != http.StatusOK {
		t.Fatalf("update comment: status %d, message %q", rec.Code, env.Message)
	}

	// Alice cannot edit bob's comment.
	rec, env = f.do(t, withCookies(jsonRequest(t, http.MethodPatch, "/api/v1/comments/"+comment.ID,
		map[string]string{"content": "hijacked"}), aliceCookies))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 editing someone else's comment, got %d (%q)", rec.Code, env.Message)
	}

	// Nor delete it.
	rec, env = f.do(t, withCookies(httptest.NewRequest(http.MethodDelete, "/api/v1/comments/"+comment.ID, nil), aliceCookies))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 deleting someone else's comment, got %d (%q)", rec.Code, env.Message)
	}

	// Bob deletes it.
	rec, env = f.do(t, withCookies(httptest.NewRequest(http.MethodDelete, "/api/v1/comments/"+comment.ID, nil), bobCookies))
	if rec.Code != http.StatusOK {
		t.Fatalf("delete comment: status %d, message %q", rec.Code, env.Message)
	}

	rec, env = f.do(t, withCookies(httptest.NewRequest(http.MethodDelete, "/api/v1/comments/"+comment.ID, nil), bobCookies))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 deleting twice, got %d (%q)", rec.Code, env.Message)
	}

	// Blank content is rejected.
	rec, env = f.do(t, withCookies(jsonRequest(t, http.MethodPost, "/api/v1/videos/"+video.ID+"/comments",
		map[string]string{"content": "   "}), bobCookies))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank content, got %d (%q)", rec.Code, env.Message)
	}
}

func TestCommentListPagination(t *testing.T) {
	f := newFixture()
	cookies := f.registerAndLogin(t, "alice")
	video := f.publishVideo(t, cookies, "clip")

	for i := 0; i < 15; i++ {
		rec, env := f.do(t, withCookies(jsonRequest(t, http.MethodPost, "/api/v1/videos/"+video.ID+"/comments",
			map[string]string{"content": fmt.Sprintf("comment %02d", i)}), cookies))
		if rec.Code != http.StatusCreated {
			t.Fatalf("add comment %d: status %d, message %q", i, rec.Code, env.Message)
		}
	}

	rec, env := f.do(t, withCookies(httptest.NewRequest(http.MethodGet, "/api/v1/videos/"+video.ID+"/comments?page=1", nil), cookies))
	if rec.Code != http.StatusOK {
		t.Fatalf("list page 1: status %d, message %q", rec.Code, env.Message)
	}
	var page models.CommentPage
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if len(page.Comments) != 10 || page.TotalCount != 15 {
		t.Fatalf("expected 10 of 15, got %d of %d", len(page.Comments), page.TotalCount)
	}
	if page.Comments[0].Owner.Username != "alice" {
		t.Fatalf("expected owner joined, got %+v", page.Comments[0].Owner)
	}

	rec, env = f.do(t, withCookies(httptest.NewRequest(http.MethodGet, "/api/v1/videos/"+video.ID+"/comments?page=2&limit=10", nil), cookies))
	if rec.Code != http.StatusOK {
		t.Fatalf("list page 2: status %d, message %q", rec.Code, env.Message)
	}
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if len(page.Comments) != 5 {
		t.Fatalf("expected 5 comments on page 2, got %d", len(page.Comments))
	}

	// Comments on a video with none yet is a success, not an error.
	empty := f.publishVideo(t, cookies, "quiet")
	rec, env = f.do(t, withCookies(httptest.NewRequest(http.MethodGet, "/api/v1/videos/"+empty.ID+"/comments", nil), cookies))
	if rec.Code != http.StatusOK {
		t.Fatalf("list empty: status %d, message %q", rec.Code, env.Message)
	}
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if len(page.Comments) != 0 || page.TotalCount != 0 {
		t.Fatalf("expected empty page, got %+v", page)
	}

	// A missing video is 404.
	rec, env = f.do(t, withCookies(httptest.NewRequest(http.MethodGet, "/api/v1/videos/missing/comments", nil), cookies))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing video, got %d (%q)", rec.Code, env.Message)
	}
}
