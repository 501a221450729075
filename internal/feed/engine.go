// Package feed builds the denormalized read models served to clients:
// channel profiles, watch history, liked videos and comment pages. It also
// owns the like and subscription toggles, which are the only writes here.
package feed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/repositories"
)

// DefaultPageSize is used when a comment listing does not specify a limit.
const DefaultPageSize = 10

// ErrSelfSubscription is returned when a user tries to subscribe to their
// own channel.
var ErrSelfSubscription = errors.New("cannot subscribe to own channel")

// UserReader resolves users for read models.
type UserReader interface {
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
}

// VideoReader resolves videos referenced by likes, comments and history.
type VideoReader interface {
	FindByID(ctx context.Context, id string) (models.Video, error)
}

// CommentReader lists a video's comments with their owners joined on.
type CommentReader interface {
	FindByID(ctx context.Context, id string) (models.Comment, error)
	ListForVideo(ctx context.Context, videoID string, limit, offset int) ([]models.CommentWithOwner, error)
	CountForVideo(ctx context.Context, videoID string) (int64, error)
}

// TweetReader resolves tweets targeted by likes.
type TweetReader interface {
	FindByID(ctx context.Context, id string) (models.Tweet, error)
}

// LikeStore persists like relations and resolves liked-video joins.
type LikeStore interface {
	Find(ctx context.Context, userID string, target models.LikeTarget, targetID string) (models.Like, error)
	Create(ctx context.Context, like models.Like) error
	Delete(ctx context.Context, id string) error
	LikedVideos(ctx context.Context, userID string) ([]models.VideoWithOwner, error)
}

// SubscriptionStore persists subscriber-to-channel relations and answers the
// counting queries behind channel profiles.
type SubscriptionStore interface {
	CountSubscribers(ctx context.Context, channelID string) (int64, error)
	CountSubscriptions(ctx context.Context, subscriberID string) (int64, error)
	Exists(ctx context.Context, subscriberID, channelID string) (bool, error)
	Create(ctx context.Context, sub models.Subscription) error
	Delete(ctx context.Context, subscriberID, channelID string) error
}

// HistoryStore persists the append-only watch history per user.
type HistoryStore interface {
	Append(ctx context.Context, userID, videoID string, watchedAt time.Time) error
	List(ctx context.Context, userID string) ([]models.WatchEntry, error)
}

// Engine answers aggregation queries by joining foreign-keyed stores. All
// query methods are pure reads.
type Engine struct {
	Users         UserReader
	Videos        VideoReader
	Comments      CommentReader
	Tweets        TweetReader
	Likes         LikeStore
	Subscriptions SubscriptionStore
	History       HistoryStore
	NowFunc       func() time.Time
}

// ChannelProfile locates the channel by username and computes its
// subscription summary from the viewer's perspective.
func (e *Engine) ChannelProfile(ctx context.Context, viewerID, username string) (models.ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	channel, err := e.Users.FindByUsername(ctx, username)
	if err != nil {
		return models.ChannelProfile{}, fmt.Errorf("find channel %q: %w", username, err)
	}

	subscribers, err := e.Subscriptions.CountSubscribers(ctx, channel.ID)
	if err != nil {
		return models.ChannelProfile{}, fmt.Errorf("count subscribers: %w", err)
	}

	subscribed, err := e.Subscriptions.CountSubscriptions(ctx, channel.ID)
	if err != nil {
		return models.ChannelProfile{}, fmt.Errorf("count subscriptions: %w", err)
	}

	isSubscribed, err := e.Subscriptions.Exists(ctx, viewerID, channel.ID)
	if err != nil {
		return models.ChannelProfile{}, fmt.Errorf("check subscription: %w", err)
	}

	return models.ChannelProfile{
		Username:         channel.Username,
		SubscribersCount: subscribers,
		SubscribedCount:  subscribed,
		IsSubscribed:     isSubscribed,
		Avatar:           channel.Avatar,
		CoverImage:       channel.CoverImage,
	}, nil
}

// WatchHistory resolves the user's ordered watch history into full video
// records with minimal owner profiles, preserving the stored order.
func (e *Engine) WatchHistory(ctx context.Context, userID string) ([]models.WatchEntry, error) {
	if _, err := e.Users.FindByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	entries, err := e.History.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list watch history: %w", err)
	}

	return entries, nil
}

// RecordWatch appends a video to the user's watch history.
func (e *Engine) RecordWatch(ctx context.Context, userID, videoID string) error {
	if _, err := e.Videos.FindByID(ctx, videoID); err != nil {
		return fmt.Errorf("find video: %w", err)
	}
	if err := e.History.Append(ctx, userID, videoID, e.now()); err != nil {
		return fmt.Errorf("append watch history: %w", err)
	}
	return nil
}

// LikedVideos lists the videos the user has liked, each joined with its
// owner's minimal profile.
func (e *Engine) LikedVideos(ctx context.Context, userID string) ([]models.VideoWithOwner, error) {
	videos, err := e.Likes.LikedVideos(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list liked videos: %w", err)
	}
	return videos, nil
}

// VideoComments returns one owner-annotated page of a video's comments,
// ordered by creation time ascending. Pages are 1-based; pageSize falls back
// to DefaultPageSize. A video with no comments yields an empty page, not an
// error; only a missing video is a not-found failure.
func (e *Engine) VideoComments(ctx context.Context, videoID string, page, pageSize int) (models.CommentPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	if _, err := e.Videos.FindByID(ctx, videoID); err != nil {
		return models.CommentPage{}, fmt.Errorf("find video: %w", err)
	}

	total, err := e.Comments.CountForVideo(ctx, videoID)
	if err != nil {
		return models.CommentPage{}, fmt.Errorf("count comments: %w", err)
	}

	comments, err := e.Comments.ListForVideo(ctx, videoID, pageSize, (page-1)*pageSize)
	if err != nil {
		return models.CommentPage{}, fmt.Errorf("list comments: %w", err)
	}
	if comments == nil {
		comments = []models.CommentWithOwner{}
	}

	return models.CommentPage{
		Comments:   comments,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
	}, nil
}

// ToggleLike creates the like relation if absent and deletes it if present,
// returning the resulting liked state. The target entity must exist.
func (e *Engine) ToggleLike(ctx context.Context, userID string, target models.LikeTarget, targetID string) (bool, error) {
	if err := e.checkTarget(ctx, target, targetID); err != nil {
		return false, err
	}

	existing, err := e.Likes.Find(ctx, userID, target, targetID)
	switch {
	case err == nil:
		if err := e.Likes.Delete(ctx, existing.ID); err != nil {
			return false, fmt.Errorf("remove like: %w", err)
		}
		return false, nil
	case errors.Is(err, repositories.ErrNotFound):
		like := models.Like{
			ID:        uuid.NewString(),
			LikedBy:   userID,
			Target:    target,
			TargetID:  targetID,
			CreatedAt: e.now(),
		}
		if err := e.Likes.Create(ctx, like); err != nil {
			return false, fmt.Errorf("create like: %w", err)
		}
		return true, nil
	default:
		return false, fmt.Errorf("find like: %w", err)
	}
}

// ToggleSubscription flips the viewer's subscription to the channel named
// by username and returns the resulting subscribed state.
func (e *Engine) ToggleSubscription(ctx context.Context, subscriberID, channelUsername string) (bool, error) {
	channelUsername = strings.ToLower(strings.TrimSpace(channelUsername))

	channel, err := e.Users.FindByUsername(ctx, channelUsername)
	if err != nil {
		return false, fmt.Errorf("find channel %q: %w", channelUsername, err)
	}
	channelID := channel.ID

	if subscriberID == channelID {
		return false, ErrSelfSubscription
	}

	subscribed, err := e.Subscriptions.Exists(ctx, subscriberID, channelID)
	if err != nil {
		return false, fmt.Errorf("check subscription: %w", err)
	}

	if subscribed {
		if err := e.Subscriptions.Delete(ctx, subscriberID, channelID); err != nil {
			return false, fmt.Errorf("remove subscription: %w", err)
		}
		return false, nil
	}

	sub := models.Subscription{
		SubscriberID: subscriberID,
		ChannelID:    channelID,
		CreatedAt:    e.now(),
	}
	if err := e.Subscriptions.Create(ctx, sub); err != nil {
		return false, fmt.Errorf("create subscription: %w", err)
	}
	return true, nil
}

func (e *Engine) checkTarget(ctx context.Context, target models.LikeTarget, targetID string) error {
	var err error
	switch target {
	case models.LikeVideo:
		_, err = e.Videos.FindByID(ctx, targetID)
	case models.LikeComment:
		_, err = e.Comments.FindByID(ctx, targetID)
	case models.LikeTweet:
		_, err = e.Tweets.FindByID(ctx, targetID)
	default:
		return fmt.Errorf("unknown like target %q", target)
	}
	if err != nil {
		return fmt.Errorf("find %s: %w", target, err)
	}
	return nil
}

func (e *Engine) now() time.Time {
	if e.NowFunc != nil {
		return e.NowFunc()
	}
	return time.Now().UTC()
}
