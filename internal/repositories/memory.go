package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cliptube/backend/internal/models"
)

// The in-memory stores below mirror the Postgres repositories for tests and
// local development. They share the same sentinel errors so callers cannot
// tell them apart.

// NewInMemoryUserStore returns a user store backed by maps.
func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{users: make(map[string]models.User)}
}

// InMemoryUserStore implements the user persistence contracts in memory.
type InMemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]models.User
}

// Create stores a new user, enforcing username/email uniqueness.
func (s *InMemoryUserStore) Create(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return ErrConflict
		}
	}
	s.users[user.ID] = user
	return nil
}

// FindByID fetches a user by id.
func (s *InMemoryUserStore) FindByID(_ context.Context, id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return user, nil
}

// FindByUsername fetches a user by username.
func (s *InMemoryUserStore) FindByUsername(_ context.Context, username string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return models.User{}, ErrNotFound
}

// FindByIdentifier matches against username or email.
func (s *InMemoryUserStore) FindByIdentifier(_ context.Context, identifier string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	identifier = strings.ToLower(identifier)
	for _, user := range s.users {
		if user.Username == identifier || user.Email == identifier {
			return user, nil
		}
	}
	return models.User{}, ErrNotFound
}

// Update replaces the stored profile fields.
func (s *InMemoryUserStore) Update(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Email = user.Email
	existing.FullName = user.FullName
	existing.Avatar = user.Avatar
	existing.CoverImage = user.CoverImage
	existing.UpdatedAt = user.UpdatedAt
	s.users[user.ID] = existing
	return nil
}

// SetRefreshToken overwrites the stored refresh token.
func (s *InMemoryUserStore) SetRefreshToken(_ context.Context, userID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}
	user.RefreshToken = token
	s.users[userID] = user
	return nil
}

// RotateRefreshToken swaps the token only if presented still matches.
func (s *InMemoryUserStore) RotateRefreshToken(_ context.Context, userID, presented, next string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok || user.RefreshToken != presented {
		return ErrNotFound
	}
	user.RefreshToken = next
	s.users[userID] = user
	return nil
}

// UpdatePassword stores a new password hash.
func (s *InMemoryUserStore) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}
	user.Password = passwordHash
	s.users[userID] = user
	return nil
}

// NewInMemoryVideoStore returns a video store backed by maps.
func NewInMemoryVideoStore() *InMemoryVideoStore {
	return &InMemoryVideoStore{videos: make(map[string]models.Video)}
}

// InMemoryVideoStore implements video persistence in memory.
type InMemoryVideoStore struct {
	mu     sync.RWMutex
	videos map[string]models.Video
}

// Create stores a new video.
func (s *InMemoryVideoStore) Create(_ context.Context, video models.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.videos[video.ID]; exists {
		return ErrConflict
	}
	s.videos[video.ID] = video
	return nil
}

// FindByID fetches a video by id.
func (s *InMemoryVideoStore) FindByID(_ context.Context, id string) (models.Video, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	video, ok := s.videos[id]
	if !ok {
		return models.Video{}, ErrNotFound
	}
	return video, nil
}

// ListByOwner returns a channel's videos, newest first.
func (s *InMemoryVideoStore) ListByOwner(_ context.Context, ownerID string) ([]models.Video, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var videos []models.Video
	for _, video := range s.videos {
		if video.OwnerID == ownerID {
			videos = append(videos, video)
		}
	}
	sort.Slice(videos, func(i, j int) bool { return videos[i].CreatedAt.After(videos[j].CreatedAt) })
	return videos, nil
}

// IncrementViews bumps the view counter.
func (s *InMemoryVideoStore) IncrementViews(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	video, ok := s.videos[id]
	if !ok {
		return ErrNotFound
	}
	video.Views++
	s.videos[id] = video
	return nil
}

// NewInMemoryCommentStore returns a comment store joining owners from users.
func NewInMemoryCommentStore(users *InMemoryUserStore) *InMemoryCommentStore {
	return &InMemoryCommentStore{users: users, comments: make(map[string]models.Comment)}
}

// InMemoryCommentStore implements comment persistence in memory.
type InMemoryCommentStore struct {
	mu       sync.RWMutex
	users    *InMemoryUserStore
	comments map[string]models.Comment
}

// Create stores a new comment.
func (s *InMemoryCommentStore) Create(_ context.Context, comment models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments[comment.ID] = comment
	return nil
}

// FindByID fetches a comment by id.
func (s *InMemoryCommentStore) FindByID(_ context.Context, id string) (models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	comment, ok := s.comments[id]
	if !ok {
		return models.Comment{}, ErrNotFound
	}
	return comment, nil
}

// Update rewrites a comment's content.
func (s *InMemoryCommentStore) Update(_ context.Context, comment models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.comments[comment.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Content = comment.Content
	existing.UpdatedAt = comment.UpdatedAt
	s.comments[comment.ID] = existing
	return nil
}

// Delete removes a comment.
func (s *InMemoryCommentStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[id]; !ok {
		return ErrNotFound
	}
	delete(s.comments, id)
	return nil
}

// ListForVideo pages through a video's comments, oldest first.
func (s *InMemoryCommentStore) ListForVideo(ctx context.Context, videoID string, limit, offset int) ([]models.CommentWithOwner, error) {
	s.mu.RLock()
	var matched []models.Comment
	for _, comment := range s.comments {
		if comment.VideoID == videoID {
			matched = append(matched, comment)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}

	var result []models.CommentWithOwner
	for _, comment := range matched {
		owner := models.OwnerProfile{}
		if user, err := s.users.FindByID(ctx, comment.OwnerID); err == nil {
			owner = models.OwnerProfile{Username: user.Username, Avatar: user.Avatar}
		}
		result = append(result, models.CommentWithOwner{
			ID:        comment.ID,
			Content:   comment.Content,
			CreatedAt: comment.CreatedAt,
			Owner:     owner,
		})
	}
	return result, nil
}

// CountForVideo counts a video's comments.
func (s *InMemoryCommentStore) CountForVideo(_ context.Context, videoID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, comment := range s.comments {
		if comment.VideoID == videoID {
			count++
		}
	}
	return count, nil
}

// NewInMemoryTweetStore returns a tweet store backed by maps.
func NewInMemoryTweetStore() *InMemoryTweetStore {
	return &InMemoryTweetStore{tweets: make(map[string]models.Tweet)}
}

// InMemoryTweetStore implements tweet persistence in memory.
type InMemoryTweetStore struct {
	mu     sync.RWMutex
	tweets map[string]models.Tweet
}

// Create stores a new tweet.
func (s *InMemoryTweetStore) Create(_ context.Context, tweet models.Tweet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tweets[tweet.ID] = tweet
	return nil
}

// FindByID fetches a tweet by id.
func (s *InMemoryTweetStore) FindByID(_ context.Context, id string) (models.Tweet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tweet, ok := s.tweets[id]
	if !ok {
		return models.Tweet{}, ErrNotFound
	}
	return tweet, nil
}

// ListByOwner returns a user's tweets, newest first.
func (s *InMemoryTweetStore) ListByOwner(_ context.Context, ownerID string) ([]models.Tweet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var tweets []models.Tweet
	for _, tweet := range s.tweets {
		if tweet.OwnerID == ownerID {
			tweets = append(tweets, tweet)
		}
	}
	sort.Slice(tweets, func(i, j int) bool { return tweets[i].CreatedAt.After(tweets[j].CreatedAt) })
	return tweets, nil
}

// Update rewrites a tweet's content.
func (s *InMemoryTweetStore) Update(_ context.Context, tweet models.Tweet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.tweets[tweet.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Content = tweet.Content
	existing.UpdatedAt = tweet.UpdatedAt
	s.tweets[tweet.ID] = existing
	return nil
}

// Delete removes a tweet.
func (s *InMemoryTweetStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tweets[id]; !ok {
		return ErrNotFound
	}
	delete(s.tweets, id)
	return nil
}

// NewInMemoryLikeStore returns a like store joining videos and users.
func NewInMemoryLikeStore(videos *InMemoryVideoStore, users *InMemoryUserStore) *InMemoryLikeStore {
	return &InMemoryLikeStore{videos: videos, users: users, likes: make(map[string]models.Like)}
}

// InMemoryLikeStore implements like persistence in memory.
type InMemoryLikeStore struct {
	mu     sync.RWMutex
	videos *InMemoryVideoStore
	users  *InMemoryUserStore
	likes  map[string]models.Like
}

// Find fetches the like a user placed on a target, if any.
func (s *InMemoryLikeStore) Find(_ context.Context, userID string, target models.LikeTarget, targetID string) (models.Like, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, like := range s.likes {
		if like.LikedBy == userID && like.Target == target && like.TargetID == targetID {
			return like, nil
		}
	}
	return models.Like{}, ErrNotFound
}

// Create stores a like relation.
func (s *InMemoryLikeStore) Create(_ context.Context, like models.Like) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.likes {
		if existing.LikedBy == like.LikedBy && existing.Target == like.Target && existing.TargetID == like.TargetID {
			return ErrConflict
		}
	}
	s.likes[like.ID] = like
	return nil
}

// Delete removes a like by id.
func (s *InMemoryLikeStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.likes[id]; !ok {
		return ErrNotFound
	}
	delete(s.likes, id)
	return nil
}

// LikedVideos lists the user's liked videos with owners joined, newest like
// first.
func (s *InMemoryLikeStore) LikedVideos(ctx context.Context, userID string) ([]models.VideoWithOwner, error) {
	s.mu.RLock()
	var matched []models.Like
	for _, like := range s.likes {
		if like.LikedBy == userID && like.Target == models.LikeVideo {
			matched = append(matched, like)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	var result []models.VideoWithOwner
	for _, like := range matched {
		video, err := s.videos.FindByID(ctx, like.TargetID)
		if err != nil {
			continue
		}
		owner := models.OwnerProfile{}
		if user, err := s.users.FindByID(ctx, video.OwnerID); err == nil {
			owner = models.OwnerProfile{Username: user.Username, Avatar: user.Avatar}
		}
		result = append(result, models.VideoWithOwner{
			ID:          video.ID,
			Title:       video.Title,
			Description: video.Description,
			VideoURL:    video.VideoURL,
			Thumbnail:   video.Thumbnail,
			CreatedAt:   video.CreatedAt,
			Owner:       owner,
		})
	}
	return result, nil
}

// NewInMemorySubscriptionStore returns a subscription store backed by maps.
func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{subs: make(map[string]models.Subscription)}
}

// InMemorySubscriptionStore implements subscription persistence in memory.
type InMemorySubscriptionStore struct {
	mu   sync.RWMutex
	subs map[string]models.Subscription
}

func subKey(subscriberID, channelID string) string {
	return subscriberID + "|" + channelID
}

// CountSubscribers counts subscribers of a channel.
func (s *InMemorySubscriptionStore) CountSubscribers(_ context.Context, channelID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, sub := range s.subs {
		if sub.ChannelID == channelID {
			count++
		}
	}
	return count, nil
}

// CountSubscriptions counts channels a user subscribes to.
func (s *InMemorySubscriptionStore) CountSubscriptions(_ context.Context, subscriberID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, sub := range s.subs {
		if sub.SubscriberID == subscriberID {
			count++
		}
	}
	return count, nil
}

// Exists reports whether the subscription is present.
func (s *InMemorySubscriptionStore) Exists(_ context.Context, subscriberID, channelID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.subs[subKey(subscriberID, channelID)]
	return ok, nil
}

// Create stores a subscription.
func (s *InMemorySubscriptionStore) Create(_ context.Context, sub models.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := subKey(sub.SubscriberID, sub.ChannelID)
	if _, ok := s.subs[key]; ok {
		return ErrConflict
	}
	s.subs[key] = sub
	return nil
}

// Delete removes a subscription.
func (s *InMemorySubscriptionStore) Delete(_ context.Context, subscriberID, channelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := subKey(subscriberID, channelID)
	if _, ok := s.subs[key]; !ok {
		return ErrNotFound
	}
	delete(s.subs, key)
	return nil
}

// NewInMemoryPlaylistStore returns a playlist store backed by maps.
func NewInMemoryPlaylistStore() *InMemoryPlaylistStore {
	return &InMemoryPlaylistStore{playlists: make(map[string]models.Playlist)}
}

// InMemoryPlaylistStore implements playlist persistence in memory.
type InMemoryPlaylistStore struct {
	mu        sync.RWMutex
	playlists map[string]models.Playlist
}

// Create stores a new playlist.
func (s *InMemoryPlaylistStore) Create(_ context.Context, playlist models.Playlist) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.playlists[playlist.ID]; exists {
		return ErrConflict
	}
	s.playlists[playlist.ID] = playlist
	return nil
}

// FindByID fetches a playlist with its member video ids in position order.
func (s *InMemoryPlaylistStore) FindByID(_ context.Context, id string) (models.Playlist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	playlist, ok := s.playlists[id]
	if !ok {
		return models.Playlist{}, ErrNotFound
	}
	return playlist, nil
}

// ListByOwner returns a user's playlists, newest first.
func (s *InMemoryPlaylistStore) ListByOwner(_ context.Context, ownerID string) ([]models.Playlist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var playlists []models.Playlist
	for _, playlist := range s.playlists {
		if playlist.OwnerID == ownerID {
			playlists = append(playlists, playlist)
		}
	}
	sort.Slice(playlists, func(i, j int) bool { return playlists[i].CreatedAt.After(playlists[j].CreatedAt) })
	return playlists, nil
}

// AddVideo appends a video to the playlist, rejecting duplicates.
func (s *InMemoryPlaylistStore) AddVideo(_ context.Context, playlistID, videoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	playlist, ok := s.playlists[playlistID]
	if !ok {
		return ErrNotFound
	}
	for _, existing := range playlist.VideoIDs {
		if existing == videoID {
			return ErrConflict
		}
	}
	playlist.VideoIDs = append(playlist.VideoIDs, videoID)
	s.playlists[playlistID] = playlist
	return nil
}

// RemoveVideo drops a video from the playlist.
func (s *InMemoryPlaylistStore) RemoveVideo(_ context.Context, playlistID, videoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	playlist, ok := s.playlists[playlistID]
	if !ok {
		return ErrNotFound
	}
	for i, existing := range playlist.VideoIDs {
		if existing == videoID {
			playlist.VideoIDs = append(playlist.VideoIDs[:i], playlist.VideoIDs[i+1:]...)
			s.playlists[playlistID] = playlist
			return nil
		}
	}
	return ErrNotFound
}

// NewInMemoryHistoryStore returns a watch history store joining videos and
// users.
func NewInMemoryHistoryStore(videos *InMemoryVideoStore, users *InMemoryUserStore) *InMemoryHistoryStore {
	return &InMemoryHistoryStore{videos: videos, users: users, entries: make(map[string][]historyEntry)}
}

type historyEntry struct {
	videoID   string
	watchedAt time.Time
}

// InMemoryHistoryStore implements watch history persistence in memory.
type InMemoryHistoryStore struct {
	mu      sync.RWMutex
	videos  *InMemoryVideoStore
	users   *InMemoryUserStore
	entries map[string][]historyEntry
}

// Append records a watch.
func (s *InMemoryHistoryStore) Append(_ context.Context, userID, videoID string, watchedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[userID] = append(s.entries[userID], historyEntry{videoID: videoID, watchedAt: watchedAt})
	return nil
}

// List resolves the user's history in append order.
func (s *InMemoryHistoryStore) List(ctx context.Context, userID string) ([]models.WatchEntry, error) {
	s.mu.RLock()
	stored := append([]historyEntry(nil), s.entries[userID]...)
	s.mu.RUnlock()

	var result []models.WatchEntry
	for _, entry := range stored {
		video, err := s.videos.FindByID(ctx, entry.videoID)
		if err != nil {
			continue
		}
		owner := models.OwnerProfile{}
		if user, err := s.users.FindByID(ctx, video.OwnerID); err == nil {
			owner = models.OwnerProfile{Username: user.Username, Avatar: user.Avatar}
		}
		result = append(result, models.WatchEntry{
			Video: models.VideoWithOwner{
				ID:          video.ID,
				Title:       video.Title,
				Description: video.Description,
				VideoURL:    video.VideoURL,
				Thumbnail:   video.Thumbnail,
				CreatedAt:   video.CreatedAt,
				Owner:       owner,
			},
			WatchedAt: entry.watchedAt,
		})
	}
	return result, nil
}
