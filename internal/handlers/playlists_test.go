package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cliptube/backend/internal/models"
)

func TestPlaylistLifecycle(t *testing.T) {
	f := newFixture()
	aliceCookies := f.registerAndLogin(t, "alice")
	bobCookies := f.registerAndLogin(t, "bob")

	rec, env := f.do(t, withCookies(jsonRequest(t, http.MethodPost, "/api/v1/playlists",
		map[string]string{"name": "Favorites", "description": "the good stuff"}), aliceCookies))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create playlist: status %d, message %q", rec.Code, env.Message)
	}
	var playlist models.Playlist
	if err := json.Unmarshal(env.Data, &playlist); err != nil {
		t.Fatalf("decode playlist: %v", err)
	}
	if playlist.Name != "Favorites" {
		t.Fatalf("unexpected playlist: %+v", playlist)
	}

	// A name is required.
	rec, env = f.do(t, withCookies(jsonRequest(t, http.MethodPost, "/api/v1/playlists",
		map[string]string{"description": "nameless"}), aliceCookies))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing name, got %d (%q)", rec.Code, env.Message)
	}

	first := f.publishVideo(t, aliceCookies, "first")
	second := f.publishVideo(t, aliceCookies, "second")

	for _, video := range []models.Video{first, second} {
		rec, env = f.do(t, withCookies(httptest.NewRequest(http.MethodPost,
			"/api/v1/playlists/"+playlist.ID+"/videos/"+video.ID, nil), aliceCookies))
		if rec.Code != http.StatusOK {
			t.Fatalf("add video %s: status %d, message %q", video.Title, rec.Code, env.Message)
		}
	}

	// Adding the same video twice conflicts.
	rec, env = f.do(t, withCookies(httptest.NewRequest(http.MethodPost,
		"/api/v1/playlists/"+playlist.ID+"/videos/"+first.ID, nil), aliceCookies))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 adding duplicate video, got %d (%q)", rec.Code, env.Message)
	}

	// Only the owner mutates membership.
	rec, env = f.do(t, withCookies(httptest.NewRequest(http.MethodPost,
		"/api/v1/playlists/"+playlist.ID+"/videos/"+first.ID, nil), bobCookies))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign playlist, got %d (%q)", rec.Code, env.Message)
	}

	// Fetch preserves insertion order.
	rec, env = f.do(t, withCookies(httptest.NewRequest(http.MethodGet, "/api/v1/playlists/"+playlist.ID, nil), bobCookies))
	if rec.Code != http.StatusOK {
		t.Fatalf("get playlist: status %d, message %q", rec.Code, env.Message)
	}
	if err := json.Unmarshal(env.Data, &playlist); err != nil {
		t.Fatalf("decode playlist: %v", err)
	}
	if len(playlist.VideoIDs) != 2 || playlist.VideoIDs[0] != first.ID || playlist.VideoIDs[1] != second.ID {
		t.Fatalf("unexpected member videos: %v", playlist.VideoIDs)
	}

	rec, env = f.do(t, withCookies(httptest.NewRequest(http.MethodDelete,
		"/api/v1/playlists/"+playlist.ID+"/videos/"+first.ID, nil), aliceCookies))
	if rec.Code != http.StatusOK {
		t.Fatalf("remove video: status %d, message %q", rec.Code, env.Message)
	}

	rec, env = f.do(t, withCookies(httptest.NewRequest(http.MethodGet, "/api/v1/playlists/"+playlist.ID, nil), aliceCookies))
	if rec.Code != http.StatusOK {
		t.Fatalf("get playlist after removal: status %d, message %q", rec.Code, env.Message)
	}
	if err := json.Unmarshal(env.Data, &playlist); err != nil {
		t.Fatalf("decode playlist: %v", err)
	}
	if len(playlist.VideoIDs) != 1 || playlist.VideoIDs[0] != second.ID {
		t.Fatalf("unexpected member videos after removal: %v", playlist.VideoIDs)
	}

	rec, env = f.do(t, withCookies(httptest.NewRequest(http.MethodGet, "/api/v1/playlists", nil), aliceCookies))
	if rec.Code != http.StatusOK {
		t.Fatalf("list playlists: status %d, message %q", rec.Code, env.Message)
	}
	var playlists []models.Playlist
	if err := json.Unmarshal(env.Data, &playlists); err != nil {
		t.Fatalf("decode playlists: %v", err)
	}
	if len(playlists) != 1 || playlists[0].ID != playlist.ID {
		t.Fatalf("unexpected playlists: %+v", playlists)
	}
}
