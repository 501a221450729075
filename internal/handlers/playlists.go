package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/middleware"
	"github.com/cliptube/backend/internal/models"
)

// PlaylistHandler serves playlist CRUD and membership endpoints.
type PlaylistHandler struct {
	Playlists    PlaylistStore
	Unauthorized http.HandlerFunc
	NowFunc      func() time.Time
}

// Create handles POST /api/v1/playlists.
func (h PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewer, ok := middleware.UserFromContext(ctx)
	if !ok {
		h.Unauthorized(w, r)
		return
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, fmt.Errorf("%w: invalid request body", auth.ErrValidation))
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		respondError(ctx, w, fmt.Errorf("%w: name is required", auth.ErrValidation))
		return
	}

	playlist := models.Playlist{
		ID:          uuid.NewString(),
		OwnerID:     viewer.ID,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		VideoIDs:    []string{},
		CreatedAt:   h.now(),
	}

	if err := h.Playlists.Create(ctx, playlist); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusCreated, playlist, "playlist created")
}

// Get handles GET /api/v1/playlists/{id}.
func (h PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := middleware.UserFromContext(ctx); !ok {
		h.Unauthorized(w, r)
		return
	}

	playlist, err := h.Playlists.FindByID(ctx, r.PathValue("id"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, playlist, "playlist fetched")
}

// ListMine handles GET /api/v1/playlists.
func (h PlaylistHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewer, ok := middleware.UserFromContext(ctx)
	if !ok {
		h.Unauthorized(w, r)
		return
	}

	playlists, err := h.Playlists.ListByOwner(ctx, viewer.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	if playlists == nil {
		playlists = []models.Playlist{}
	}

	respondJSON(ctx, w, http.StatusOK, playlists, "playlists fetched")
}

// AddVideo handles POST /api/v1/playlists/{id}/videos/{videoId}.
func (h PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	h.mutateMembership(w, r, h.Playlists.AddVideo, "video added to playlist")
}

// RemoveVideo handles DELETE /api/v1/playlists/{id}/videos/{videoId}.
func (h PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	h.mutateMembership(w, r, h.Playlists.RemoveVideo, "video removed from playlist")
}

func (h PlaylistHandler) mutateMembership(w http.ResponseWriter, r *http.Request, mutate func(ctx context.Context, playlistID, videoID string) error, message string) {
	ctx := r.Context()

	viewer, ok := middleware.UserFromContext(ctx)
	if !ok {
		h.Unauthorized(w, r)
		return
	}

	playlist, err := h.Playlists.FindByID(ctx, r.PathValue("id"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	if playlist.OwnerID != viewer.ID {
		respondJSON(ctx, w, http.StatusForbidden, nil, "not the owner of this playlist")
		return
	}

	if err := mutate(ctx, playlist.ID, r.PathValue("videoId")); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, nil, message)
}

func (h PlaylistHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
