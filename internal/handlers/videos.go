package handlers

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/logging"
	"github.com/cliptube/backend/internal/middleware"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/repositories"
)

// VideoHandler serves video publishing and playback endpoints.
type VideoHandler struct {
	Videos       VideoStore
	Media        MediaStore
	Feed         Aggregator
	Unauthorized http.HandlerFunc
	NowFunc      func() time.Time
}

// Publish handles POST /api/v1/videos (multipart). The video file is
// required, the thumbnail is optional.
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewer, ok := middleware.UserFromContext(ctx)
	if !ok {
		h.Unauthorized(w, r)
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(ctx, w, fmt.Errorf("%w: expected multipart form", auth.ErrValidation))
		return
	}
	defer cleanupMultipart(r)

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		respondError(ctx, w, fmt.Errorf("%w: title is required", auth.ErrValidation))
		return
	}

	file, fileName, ok := formFile(r, "videoFile")
	if !ok {
		respondError(ctx, w, fmt.Errorf("%w: videoFile is required", auth.ErrValidation))
		return
	}
	defer file.Close()

	videoAsset, err := h.Media.Upload(ctx, mediaKey("videos", fileName), file)
	if err != nil {
		respondError(ctx, w, fmt.Errorf("upload video: %w", err))
		return
	}

	var thumbnail models.MediaAsset
	if thumb, thumbName, ok := formFile(r, "thumbnail"); ok {
		defer thumb.Close()
		thumbnail, err = h.Media.Upload(ctx, mediaKey("thumbnails", thumbName), thumb)
		if err != nil {
			h.discard(ctx, videoAsset)
			respondError(ctx, w, fmt.Errorf("upload thumbnail: %w", err))
			return
		}
	}

	video := models.Video{
		ID:          uuid.NewString(),
		OwnerID:     viewer.ID,
		Title:       title,
		Description: strings.TrimSpace(r.FormValue("description")),
		VideoURL:    videoAsset.URL,
		VideoKey:    videoAsset.Key,
		Thumbnail:   thumbnail,
		Published:   true,
		CreatedAt:   h.now(),
	}

	if err := h.Videos.Create(ctx, video); err != nil {
		h.discard(ctx, videoAsset)
		h.discard(ctx, thumbnail)
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusCreated, video, "video published")
}

// Get handles GET /api/v1/videos/{id}. Fetching a video records the watch
// and bumps the view counter.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewer, ok := middleware.UserFromContext(ctx)
	if !ok {
		h.Unauthorized(w, r)
		return
	}

	video, err := h.Videos.FindByID(ctx, r.PathValue("id"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	if !video.Published && video.OwnerID != viewer.ID {
		respondError(ctx, w, repositories.ErrNotFound)
		return
	}

	logger := logging.FromContext(ctx)
	if err := h.Feed.RecordWatch(ctx, viewer.ID, video.ID); err != nil {
		logger.Warn("record watch", "video_id", video.ID, "error", err)
	}
	if err := h.Videos.IncrementViews(ctx, video.ID); err != nil {
		logger.Warn("increment views", "video_id", video.ID, "error", err)
	} else {
		video.Views++
	}

	respondJSON(ctx, w, http.StatusOK, video, "video fetched")
}

// discard removes an uploaded asset after a failed publish. Failures here
// are logged, not surfaced.
func (h VideoHandler) discard(ctx context.Context, asset models.MediaAsset) {
	if asset.Key == "" {
		return
	}
	if err := h.Media.Delete(ctx, asset.Key); err != nil {
		logging.FromContext(ctx).Warn("delete orphaned media asset", "key", asset.Key, "error", err)
	}
}

func (h VideoHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

// mediaKey builds a unique object key preserving the upload's extension.
func mediaKey(prefix, name string) string {
	return prefix + "/" + uuid.NewString() + strings.ToLower(filepath.Ext(name))
}
