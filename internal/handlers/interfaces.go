package handlers

import (
	"context"
	"io"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/models"
)

// SessionFlow captures the credential/session lifecycle consumed by the user
// handlers.
type SessionFlow interface {
	Register(ctx context.Context, in auth.RegisterInput) (models.User, error)
	Login(ctx context.Context, identifier, password string) (models.User, models.SessionTokens, error)
	Logout(ctx context.Context, userID string) error
	Refresh(ctx context.Context, presented string) (models.SessionTokens, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	CurrentUser(ctx context.Context, userID string) (models.User, error)
	UpdateAccount(ctx context.Context, userID, fullName, email string) (models.User, error)
	UpdateAvatar(ctx context.Context, userID string, file auth.FileUpload) (models.User, error)
	UpdateCoverImage(ctx context.Context, userID string, file auth.FileUpload) (models.User, error)
}

// Aggregator captures the read-model queries and toggles consumed by the
// channel, like and comment handlers.
type Aggregator interface {
	ChannelProfile(ctx context.Context, viewerID, username string) (models.ChannelProfile, error)
	WatchHistory(ctx context.Context, userID string) ([]models.WatchEntry, error)
	RecordWatch(ctx context.Context, userID, videoID string) error
	LikedVideos(ctx context.Context, userID string) ([]models.VideoWithOwner, error)
	VideoComments(ctx context.Context, videoID string, page, pageSize int) (models.CommentPage, error)
	ToggleLike(ctx context.Context, userID string, target models.LikeTarget, targetID string) (bool, error)
	ToggleSubscription(ctx context.Context, subscriberID, channelUsername string) (bool, error)
}

// CommentStore captures the comment mutations used by the comment handlers.
type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	Update(ctx context.Context, comment models.Comment) error
	Delete(ctx context.Context, id string) error
}

// TweetStore captures persistence for tweet workflows.
type TweetStore interface {
	Create(ctx context.Context, tweet models.Tweet) error
	FindByID(ctx context.Context, id string) (models.Tweet, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Tweet, error)
	Update(ctx context.Context, tweet models.Tweet) error
	Delete(ctx context.Context, id string) error
}

// PlaylistStore captures persistence for playlist workflows.
type PlaylistStore interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Playlist, error)
	AddVideo(ctx context.Context, playlistID, videoID string) error
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
}

// MediaStore is the slice of the object store the video handlers need.
type MediaStore interface {
	Upload(ctx context.Context, key string, content io.Reader) (models.MediaAsset, error)
	Delete(ctx context.Context, key string) error
}

// VideoStore captures persistence for video publishing and lookup.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	IncrementViews(ctx context.Context, id string) error
}
