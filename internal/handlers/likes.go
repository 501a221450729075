package handlers

import (
	"net/http"

	"github.com/cliptube/backend/internal/middleware"
	"github.com/cliptube/backend/internal/models"
)

// LikeHandler serves the like toggles and the liked-videos listing.
type LikeHandler struct {
	Feed         Aggregator
	Unauthorized http.HandlerFunc
}

// ToggleVideoLike handles POST /api/v1/likes/toggle/video/{id}.
func (h LikeHandler) ToggleVideoLike(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, models.LikeVideo)
}

// ToggleCommentLike handles POST /api/v1/likes/toggle/comment/{id}.
func (h LikeHandler) ToggleCommentLike(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, models.LikeComment)
}

// ToggleTweetLike handles POST /api/v1/likes/toggle/tweet/{id}.
func (h LikeHandler) ToggleTweetLike(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, models.LikeTweet)
}

// LikedVideos handles GET /api/v1/likes/videos.
func (h LikeHandler) LikedVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewer, ok := middleware.UserFromContext(ctx)
	if !ok {
		h.Unauthorized(w, r)
		return
	}

	videos, err := h.Feed.LikedVideos(ctx, viewer.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	if videos == nil {
		videos = []models.VideoWithOwner{}
	}

	respondJSON(ctx, w, http.StatusOK, videos, "liked videos fetched")
}

func (h LikeHandler) toggle(w http.ResponseWriter, r *http.Request, target models.LikeTarget) {
	ctx := r.Context()

	viewer, ok := middleware.UserFromContext(ctx)
	if !ok {
		h.Unauthorized(w, r)
		return
	}

	liked, err := h.Feed.ToggleLike(ctx, viewer.ID, target, r.PathValue("id"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	message := "like removed"
	if liked {
		message = "like added"
	}
	respondJSON(ctx, w, http.StatusOK, map[string]bool{"liked": liked}, message)
}
