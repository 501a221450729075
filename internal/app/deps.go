package app

import (
	"context"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/config"
	"github.com/cliptube/backend/internal/db"
	"github.com/cliptube/backend/internal/feed"
	"github.com/cliptube/backend/internal/handlers"
	"github.com/cliptube/backend/internal/repositories"
	"github.com/cliptube/backend/internal/storage"
)

// buildDependencies wires together concrete implementations used by the
// HTTP handlers.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config) (handlers.Dependencies, error) {
	media, err := storage.NewS3MediaStore(ctx, cfg.ObjectStore)
	if err != nil {
		return handlers.Dependencies{}, err
	}

	users := repositories.NewPostgresUserRepository(pool)
	videos := repositories.NewPostgresVideoRepository(pool)
	comments := repositories.NewPostgresCommentRepository(pool)
	tweets := repositories.NewPostgresTweetRepository(pool)
	likes := repositories.NewPostgresLikeRepository(pool)
	subscriptions := repositories.NewPostgresSubscriptionRepository(pool)
	history := repositories.NewPostgresHistoryRepository(pool)
	playlists := repositories.NewPostgresPlaylistRepository(pool)

	tokens := auth.NewTokenIssuer(cfg.Tokens)

	sessions := &auth.Flow{
		Users:  users,
		Media:  media,
		Tokens: tokens,
	}

	engine := &feed.Engine{
		Users:         users,
		Videos:        videos,
		Comments:      comments,
		Tweets:        tweets,
		Likes:         likes,
		Subscriptions: subscriptions,
		History:       history,
	}

	return handlers.Dependencies{
		Sessions:      sessions,
		Feed:          engine,
		Comments:      comments,
		Tweets:        tweets,
		Playlists:     playlists,
		Videos:        videos,
		Media:         media,
		Verifier:      tokens,
		Users:         users,
		SecureCookies: cfg.SecureCookies,
	}, nil
}
