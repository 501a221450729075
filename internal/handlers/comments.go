package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/middleware"
	"github.com/cliptube/backend/internal/models"
)

// CommentHandler serves the comment read model and comment mutations.
type CommentHandler struct {
	Feed         Aggregator
	Comments     CommentStore
	Unauthorized http.HandlerFunc
	NowFunc      func() time.Time
}

// List handles GET /api/v1/videos/{id}/comments?page=&limit=.
func (h CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := middleware.UserFromContext(ctx); !ok {
		h.Unauthorized(w, r)
		return
	}

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 0)

	comments, err := h.Feed.VideoComments(ctx, r.PathValue("id"), page, limit)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, comments, "comments fetched")
}

// Add handles POST /api/v1/videos/{id}/comments.
func (h CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
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
	comment := models.Comment{
		ID:        uuid.NewString(),
		VideoID:   r.PathValue("id"),
		OwnerID:   viewer.ID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Comments.Create(ctx, comment); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusCreated, comment, "comment added")
}

// Update handles PATCH /api/v1/comments/{id}.
func (h CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewer, ok := middleware.UserFromContext(ctx)
	if !ok {
		h.Unauthorized(w, r)
		return
	}

	comment, err := h.Comments.FindByID(ctx, r.PathValue("id"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	if comment.OwnerID != viewer.ID {
		respondJSON(ctx, w, http.StatusForbidden, nil, "not the owner of this comment")
		return
	}

	content, err := decodeContent(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	comment.Content = content
	comment.UpdatedAt = h.now()

	if err := h.Comments.Update(ctx, comment); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, comment, "comment updated")
}

// Delete handles DELETE /api/v1/comments/{id}.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewer, ok := middleware.UserFromContext(ctx)
	if !ok {
		h.Unauthorized(w, r)
		return
	}

	comment, err := h.Comments.FindByID(ctx, r.PathValue("id"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	if comment.OwnerID != viewer.ID {
		respondJSON(ctx, w, http.StatusForbidden, nil, "not the owner of this comment")
		return
	}

	if err := h.Comments.Delete(ctx, comment.ID); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, nil, "comment deleted")
}

func (h CommentHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

// decodeContent reads a {"content": "..."} body and rejects blank content.
func decodeContent(r *http.Request) (string, error) {
	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", fmt.Errorf("%w: invalid request body", auth.ErrValidation)
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return "", fmt.Errorf("%w: content is required", auth.ErrValidation)
	}
	return content, nil
}

// queryInt reads an integer query parameter, falling back when absent or
// malformed.
func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
