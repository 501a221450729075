package models

import "time"

// User represents an account on the ClipTube platform. Username and email
// are stored lowercased and are globally unique.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	FullName     string     `json:"fullname"`
	Password     string     `json:"-"`
	Avatar       MediaAsset `json:"avatar"`
	CoverImage   MediaAsset `json:"coverImage"`
	RefreshToken string     `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Sanitized returns a copy safe to hand back to clients: the password hash
// and the stored refresh token are never serialized.
func (u User) Sanitized() User {
	u.Password = ""
	u.RefreshToken = ""
	return u
}

// MediaAsset references an object held by the external media store.
type MediaAsset struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

// Video is an uploaded clip owned by a user.
type Video struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"ownerId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	VideoURL    string     `json:"videoUrl"`
	VideoKey    string     `json:"-"`
	Thumbnail   MediaAsset `json:"thumbnail"`
	Duration    int64      `json:"duration"`
	Views       int64      `json:"views"`
	Published   bool       `json:"published"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Comment belongs to exactly one video and has exactly one owner.
type Comment struct {
	ID        string    `json:"id"`
	VideoID   string    `json:"videoId"`
	OwnerID   string    `json:"ownerId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Tweet is a short free-text post by a user.
type Tweet struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LikeTarget enumerates the entity kinds a like can attach to. A like row
// references exactly one of them.
type LikeTarget string

const (
	LikeVideo   LikeTarget = "video"
	LikeComment LikeTarget = "comment"
	LikeTweet   LikeTarget = "tweet"
)

// Like records that a user liked a single target entity. Absence of the row
// means "not liked"; likes toggle rather than count.
type Like struct {
	ID        string     `json:"id"`
	LikedBy   string     `json:"likedBy"`
	Target    LikeTarget `json:"target"`
	TargetID  string     `json:"targetId"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Subscription points from a subscriber to a channel (both users).
type Subscription struct {
	SubscriberID string    `json:"subscriberId"`
	ChannelID    string    `json:"channelId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Playlist is a collection of videos curated by its owner.
type Playlist struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	VideoIDs    []string  `json:"videoIds"`
	CreatedAt   time.Time `json:"createdAt"`
}

// OwnerProfile is the minimal projection of a user joined onto owned
// content in read models.
type OwnerProfile struct {
	Username string     `json:"username"`
	Avatar   MediaAsset `json:"avatar"`
}

// ChannelProfile is the read model served for a channel page.
type ChannelProfile struct {
	Username         string     `json:"username"`
	SubscribersCount int64      `json:"subscribersCount"`
	SubscribedCount  int64      `json:"subscribedCount"`
	IsSubscribed     bool       `json:"isSubscribed"`
	Avatar           MediaAsset `json:"avatar"`
	CoverImage       MediaAsset `json:"coverImage"`
}

// VideoWithOwner joins a video with its owner's minimal profile.
type VideoWithOwner struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	VideoURL    string       `json:"videoUrl"`
	Thumbnail   MediaAsset   `json:"thumbnail"`
	CreatedAt   time.Time    `json:"createdAt"`
	Owner       OwnerProfile `json:"owner"`
}

// WatchEntry is one resolved step of a user's watch history.
type WatchEntry struct {
	Video     VideoWithOwner `json:"video"`
	WatchedAt time.Time      `json:"watchedAt"`
}

// CommentWithOwner annotates a comment with its author's minimal profile.
type CommentWithOwner struct {
	ID        string       `json:"id"`
	Content   string       `json:"content"`
	CreatedAt time.Time    `json:"createdAt"`
	Owner     OwnerProfile `json:"owner"`
}

// CommentPage is one page of a video's comments. An empty Comments slice on
// a valid video is a normal "no comments yet" result.
type CommentPage struct {
	Comments   []CommentWithOwner `json:"comments"`
	Page       int                `json:"page"`
	PageSize   int                `json:"pageSize"`
	TotalCount int64              `json:"totalCount"`
}
