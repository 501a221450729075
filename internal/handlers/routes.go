package handlers

import (
	"net/http"

	"github.com/cliptube/backend/internal/middleware"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Sessions      SessionFlow
	Feed          Aggregator
	Comments      CommentStore
	Tweets        TweetStore
	Playlists     PlaylistStore
	Videos        VideoStore
	Media         MediaStore
	Verifier      middleware.AccessVerifier
	Users         middleware.UserResolver
	SecureCookies bool
}

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	users := UserHandler{Sessions: deps.Sessions, SecureCookies: deps.SecureCookies}
	channels := ChannelHandler{Feed: deps.Feed, Unauthorized: users.Unauthorized}
	likes := LikeHandler{Feed: deps.Feed, Unauthorized: users.Unauthorized}
	comments := CommentHandler{Feed: deps.Feed, Comments: deps.Comments, Unauthorized: users.Unauthorized}
	tweets := TweetHandler{Tweets: deps.Tweets, Unauthorized: users.Unauthorized}
	playlists := PlaylistHandler{Playlists: deps.Playlists, Unauthorized: users.Unauthorized}
	videos := VideoHandler{Videos: deps.Videos, Media: deps.Media, Feed: deps.Feed, Unauthorized: users.Unauthorized}

	authed := middleware.RequireAuth(deps.Verifier, deps.Users, users.Unauthorized)
	protected := func(h http.HandlerFunc) http.Handler { return authed(h) }

	mux.HandleFunc("GET /healthz", health.Handle)

	mux.HandleFunc("POST /api/v1/users/register", users.Register)
	mux.HandleFunc("POST /api/v1/users/login", users.Login)
	mux.HandleFunc("POST /api/v1/users/refresh-token", users.Refresh)
	mux.Handle("POST /api/v1/users/logout", protected(users.Logout))
	mux.Handle("POST /api/v1/users/change-password", protected(users.ChangePassword))
	mux.Handle("GET /api/v1/users/me", protected(users.Me))
	mux.Handle("PATCH /api/v1/users/account", protected(users.UpdateAccount))
	mux.Handle("PATCH /api/v1/users/avatar", protected(users.UpdateAvatar))
	mux.Handle("PATCH /api/v1/users/cover-image", protected(users.UpdateCoverImage))
	mux.Handle("GET /api/v1/users/watch-history", protected(channels.WatchHistory))

	mux.Handle("GET /api/v1/channels/{username}", protected(channels.Profile))
	mux.Handle("POST /api/v1/channels/{username}/subscribe", protected(channels.ToggleSubscription))

	mux.Handle("POST /api/v1/videos", protected(videos.Publish))
	mux.Handle("GET /api/v1/videos/{id}", protected(videos.Get))
	mux.Handle("GET /api/v1/videos/{id}/comments", protected(comments.List))
	mux.Handle("POST /api/v1/videos/{id}/comments", protected(comments.Add))
	mux.Handle("PATCH /api/v1/comments/{id}", protected(comments.Update))
	mux.Handle("DELETE /api/v1/comments/{id}", protected(comments.Delete))

	mux.Handle("POST /api/v1/likes/toggle/video/{id}", protected(likes.ToggleVideoLike))
	mux.Handle("POST /api/v1/likes/toggle/comment/{id}", protected(likes.ToggleCommentLike))
	mux.Handle("POST /api/v1/likes/toggle/tweet/{id}", protected(likes.ToggleTweetLike))
	mux.Handle("GET /api/v1/likes/videos", protected(likes.LikedVideos))

	mux.Handle("POST /api/v1/tweets", protected(tweets.Create))
	mux.Handle("GET /api/v1/tweets", protected(tweets.ListMine))
	mux.Handle("PATCH /api/v1/tweets/{id}", protected(tweets.Update))
	mux.Handle("DELETE /api/v1/tweets/{id}", protected(tweets.Delete))

	mux.Handle("POST /api/v1/playlists", protected(playlists.Create))
	mux.Handle("GET /api/v1/playlists", protected(playlists.ListMine))
	mux.Handle("GET /api/v1/playlists/{id}", protected(playlists.Get))
	mux.Handle("POST /api/v1/playlists/{id}/videos/{videoId}", protected(playlists.AddVideo))
	mux.Handle("DELETE /api/v1/playlists/{id}/videos/{videoId}", protected(playlists.RemoveVideo))
}
