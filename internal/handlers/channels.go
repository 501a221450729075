package handlers

import (
	"net/http"

	"github.com/cliptube/backend/internal/middleware"
	"github.com/cliptube/backend/internal/models"
)

// ChannelHandler serves channel profiles, subscription toggles and the
// viewer's watch history.
type ChannelHandler struct {
	Feed         Aggregator
	Unauthorized http.HandlerFunc
}

// Profile handles GET /api/v1/channels/{username}.
func (h ChannelHandler) Profile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewer, ok := middleware.UserFromContext(ctx)
	if !ok {
		h.Unauthorized(w, r)
		return
	}

	profile, err := h.Feed.ChannelProfile(ctx, viewer.ID, r.PathValue("username"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, profile, "channel profile fetched")
}

// ToggleSubscription handles POST /api/v1/channels/{username}/subscribe.
func (h ChannelHandler) ToggleSubscription(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewer, ok := middleware.UserFromContext(ctx)
	if !ok {
		h.Unauthorized(w, r)
		return
	}

	subscribed, err := h.Feed.ToggleSubscription(ctx, viewer.ID, r.PathValue("username"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	message := "subscription removed"
	if subscribed {
		message = "subscription added"
	}
	respondJSON(ctx, w, http.StatusOK, map[string]bool{"subscribed": subscribed}, message)
}

// WatchHistory handles GET /api/v1/users/watch-history.
func (h ChannelHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewer, ok := middleware.UserFromContext(ctx)
	if !ok {
		h.Unauthorized(w, r)
		return
	}

	entries, err := h.Feed.WatchHistory(ctx, viewer.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	if entries == nil {
		entries = []models.WatchEntry{}
	}

	respondJSON(ctx, w, http.StatusOK, entries, "watch history fetched")
}
