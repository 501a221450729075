package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/config"
	"github.com/cliptube/backend/internal/feed"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/repositories"
)

// fixture wires the full handler stack against in-memory stores, so tests
// exercise routing, middleware and handlers exactly as production does.
type fixture struct {
	mux       *http.ServeMux
	users     *repositories.InMemoryUserStore
	videos    *repositories.InMemoryVideoStore
	comments  *repositories.InMemoryCommentStore
	tweets    *repositories.InMemoryTweetStore
	playlists *repositories.InMemoryPlaylistStore
	media     *stubMediaStore
	flow      *auth.Flow
}

type stubMediaStore struct {
	uploads map[string][]byte
	deleted []string
}

func newStubMediaStore() *stubMediaStore {
	return &stubMediaStore{uploads: make(map[string][]byte)}
}

func (s *stubMediaStore) Upload(_ context.Context, key string, r io.Reader) (models.MediaAsset, error) {
	contents, err := io.ReadAll(r)
	if err != nil {
		return models.MediaAsset{}, err
	}
	s.uploads[key] = contents
	return models.MediaAsset{URL: "https://cdn.test/" + key, Key: key}, nil
}

func (s *stubMediaStore) Delete(_ context.Context, key string) error {
	if _, ok := s.uploads[key]; !ok {
		return errors.New("missing key " + key)
	}
	s.deleted = append(s.deleted, key)
	delete(s.uploads, key)
	return nil
}

func newFixture() *fixture {
	users := repositories.NewInMemoryUserStore()
	videos := repositories.NewInMemoryVideoStore()
	comments := repositories.NewInMemoryCommentStore(users)
	tweets := repositories.NewInMemoryTweetStore()
	likes := repositories.NewInMemoryLikeStore(videos, users)
	subscriptions := repositories.NewInMemorySubscriptionStore()
	history := repositories.NewInMemoryHistoryStore(videos, users)
	playlists := repositories.NewInMemoryPlaylistStore()
	media := newStubMediaStore()

	tokens := auth.NewTokenIssuer(config.TokenConfig{
		AccessSecret:  "test-access-secret",
		RefreshSecret: "test-refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
	})

	flow := &auth.Flow{Users: users, Media: media, Tokens: tokens}

	engine := &feed.Engine{
		Users:         users,
		Videos:        videos,
		Comments:      comments,
		Tweets:        tweets,
		Likes:         likes,
		Subscriptions: subscriptions,
		History:       history,
	}

	mux := http.NewServeMux()
	RegisterRoutes(mux, Dependencies{
		Sessions:  flow,
		Feed:      engine,
		Comments:  comments,
		Tweets:    tweets,
		Playlists: playlists,
		Videos:    videos,
		Media:     media,
		Verifier:  tokens,
		Users:     users,
	})

	return &fixture{
		mux:       mux,
		users:     users,
		videos:    videos,
		comments:  comments,
		tweets:    tweets,
		playlists: playlists,
		media:     media,
		flow:      flow,
	}
}

type testEnvelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
}

func (f *fixture) do(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, testEnvelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	var env testEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope (status %d): %v", rec.Code, err)
	}
	return rec, env
}

func jsonRequest(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func multipartRequest(t *testing.T, target string, fields map[string]string, files map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("write field %s: %v", name, err)
		}
	}
	for field, filename := range files {
		part, err := writer.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("create file part %s: %v", field, err)
		}
		if _, err := io.Copy(part, strings.NewReader("file-contents-"+filename)); err != nil {
			t.Fatalf("write file part %s: %v", field, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

// registerAndLogin creates an account through the HTTP surface and returns
// the session cookies issued at login.
func (f *fixture) registerAndLogin(t *testing.T, username string) []*http.Cookie {
	t.Helper()

	req := multipartRequest(t, "/api/v1/users/register", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
		"fullname": "Test " + username,
	}, map[string]string{"avatar": username + ".png"})

	rec, env := f.do(t, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d, message %q", username, rec.Code, env.Message)
	}

	loginReq := jsonRequest(t, http.MethodPost, "/api/v1/users/login", map[string]string{
		"username": username,
		"password": "password123",
	})
	rec, env = f.do(t, loginReq)
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status %d, message %q", username, rec.Code, env.Message)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("login %s: no cookies issued", username)
	}
	return cookies
}

func withCookies(req *http.Request, cookies []*http.Cookie) *http.Request {
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	return req
}

func cookieValue(cookies []*http.Cookie, name string) string {
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie.Value
		}
	}
	return ""
}
