package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cliptube/backend/internal/models"
)

func TestTweetLifecycle(t *testing.T) {
	f := newFixture()
	aliceCookies := f.registerAndLogin(t, "alice")
	bobCookies := f.registerAndLogin(t, "bob")

	rec, env := f.do(t, withCookies(jsonRequest(t, http.MethodPost, "/api/v1/tweets",
		map[string]string{"content": "hello world"}), aliceCookies))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create tweet: status %d, message %q", rec.Code, env.Message)
	}
	var tweet models.Tweet
	if err := json.Unmarshal(env.Data, &tweet); err != nil {
		t.Fatalf("decode tweet: %v", err)
	}
	if tweet.Content != "hello world" {
		t.Fatalf("unexpected tweet: %+v", tweet)
	}

	// Listing returns only the caller's tweets.
	rec, env = f.do(t, withCookies(httptest.NewRequest(http.MethodGet, "/api/v1/tweets", nil), aliceCookies))
	if rec.Code != http.StatusOK {
		t.Fatalf("list tweets: status %d, message %q", rec.Code, env.Message)
	}
	var tweets []models.Tweet
	if err := json.Unmarshal(env.Data, &tweets); err != nil {
		t.Fatalf("decode tweets: %v", err)
	}
	if len(tweets) != 1 || tweets[0].ID != tweet.ID {
		t.Fatalf("unexpected tweet list: %+v", tweets)
	}

	rec, env = f.do(t, withCookies(httptest.NewRequest(http.MethodGet, "/api/v1/tweets", nil), bobCookies))
	if rec.Code != http.StatusOK {
		t.Fatalf("list bob tweets: status %d", rec.Code)
	}
	if err := json.Unmarshal(env.Data, &tweets); err != nil {
		t.Fatalf("decode tweets: %v", err)
	}
	if len(tweets) != 0 {
		t.Fatalf("bob should have no tweets, got %+v", tweets)
	}

	// Only the owner can update or delete.
	rec, env = f.do(t, withCookies(jsonRequest(t, http.MethodPatch, "/api/v1/tweets/"+tweet.ID,
		map[string]string{"content": "hijacked"}), bobCookies))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 updating foreign tweet, got %d (%q)", rec.Code, env.Message)
	}

	rec, env = f.do(t, withCookies(jsonRequest(t, http.MethodPatch, "/api/v1/tweets/"+tweet.ID,
		map[string]string{"content": "edited"}), aliceCookies))
	if rec.Code != http.StatusOK {
		t.Fatalf("update tweet: status %d, message %q", rec.Code, env.Message)
	}
	if err := json.Unmarshal(env.Data, &tweet); err != nil {
		t.Fatalf("decode tweet: %v", err)
	}
	if tweet.Content != "edited" {
		t.Fatalf("expected edited content, got %+v", tweet)
	}

	rec, env = f.do(t, withCookies(httptest.NewRequest(http.MethodDelete, "/api/v1/tweets/"+tweet.ID, nil), bobCookies))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 deleting foreign tweet, got %d (%q)", rec.Code, env.Message)
	}

	rec, env = f.do(t, withCookies(httptest.NewRequest(http.MethodDelete, "/api/v1/tweets/"+tweet.ID, nil), aliceCookies))
	if rec.Code != http.StatusOK {
		t.Fatalf("delete tweet: status %d, message %q", rec.Code, env.Message)
	}

	rec, env = f.do(t, withCookies(jsonRequest(t, http.MethodPatch, "/api/v1/tweets/"+tweet.ID,
		map[string]string{"content": "gone"}), aliceCookies))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 updating deleted tweet, got %d (%q)", rec.Code, env.Message)
	}
}
