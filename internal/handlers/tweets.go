package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/cliptube/backend/internal/middleware"
	"github.com/cliptube/backend/internal/models"
)

// TweetHandler serves the short-post CRUD endpoints.
type TweetHandler struct {
	Tweets       TweetStore
	Unauthorized http.HandlerFunc
	NowFunc      func() time.Time
}

// Create handles POST /api/v1/tweets.
func (h TweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewer, ok := middleware.UserFromContext(ctx)
	if !ok {
		h.Unauthorized(w, r)
		return
	}

	content, err := decodeContent(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	now := h.now()
	tweet := models.Tweet{
		ID:        uuid.NewString(),
		OwnerID:   viewer.ID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Tweets.Create(ctx, tweet); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusCreated, tweet, "tweet created")
}

// ListMine handles GET /api/v1/tweets.
func (h TweetHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewer, ok := middleware.UserFromContext(ctx)
	if !ok {
		h.Unauthorized(w, r)
		return
	}

	tweets, err := h.Tweets.ListByOwner(ctx, viewer.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	if tweets == nil {
		tweets = []models.Tweet{}
	}

	respondJSON(ctx, w, http.StatusOK, tweets, "tweets fetched")
}

// Update handles PATCH /api/v1/tweets/{id}.
func (h TweetHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewer, ok := middleware.UserFromContext(ctx)
	if !ok {
		h.Unauthorized(w, r)
		return
	}

	tweet, err := h.Tweets.FindByID(ctx, r.PathValue("id"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	if tweet.OwnerID != viewer.ID {
		respondJSON(ctx, w, http.StatusForbidden, nil, "not the owner of this tweet")
		return
	}

	content, err := decodeContent(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	tweet.Content = content
	tweet.UpdatedAt = h.now()

	if err := h.Tweets.Update(ctx, tweet); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, tweet, "tweet updated")
}

// Delete handles DELETE /api/v1/tweets/{id}.
func (h TweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewer, ok := middleware.UserFromContext(ctx)
	if !ok {
		h.Unauthorized(w, r)
		return
	}

	tweet, err := h.Tweets.FindByID(ctx, r.PathValue("id"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	if tweet.OwnerID != viewer.ID {
		respondJSON(ctx, w, http.StatusForbidden, nil, "not the owner of this tweet")
		return
	}

	if err := h.Tweets.Delete(ctx, tweet.ID); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, nil, "tweet deleted")
}

func (h TweetHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
