package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cliptube/backend/internal/db"
	"github.com/cliptube/backend/internal/models"
)

// PostgresLikeRepository provides PostgreSQL-backed persistence for likes.
// A like row references exactly one of video, comment or tweet; the schema
// enforces the exclusivity.
type PostgresLikeRepository struct {
	pool db.Pool
}

// NewPostgresLikeRepository constructs a like repository backed by PostgreSQL.
func NewPostgresLikeRepository(pool db.Pool) *PostgresLikeRepository {
	return &PostgresLikeRepository{pool: pool}
}

func likeTargetColumn(target models.LikeTarget) (string, error) {
	switch target {
	case models.LikeVideo:
		return "video_id", nil
	case models.LikeComment:
		return "comment_id", nil
	case models.LikeTweet:
		return "tweet_id", nil
	default:
		return "", fmt.Errorf("unknown like target %q", target)
	}
}

// Find fetches the like a user placed on a specific target, if any.
func (r *PostgresLikeRepository) Find(ctx context.Context, userID string, target models.LikeTarget, targetID string) (models.Like, error) {
	column, err := likeTargetColumn(target)
	if err != nil {
		return models.Like{}, err
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Like{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, liked_by, created_at
        FROM likes
        WHERE liked_by = $1 AND `+column+` = $2
    `, userID, targetID)

	like := models.Like{Target: target, TargetID: targetID}
	if err := row.Scan(&like.ID, &like.LikedBy, &like.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Like{}, ErrNotFound
		}
		return models.Like{}, fmt.Errorf("select like: %w", err)
	}

	return like, nil
}

// Create persists a like relation.
func (r *PostgresLikeRepository) Create(ctx context.Context, like models.Like) error {
	column, err := likeTargetColumn(like.Target)
	if err != nil {
		return err
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO likes (id, liked_by, `+column+`, created_at)
        VALUES ($1, $2, $3, $4)
    `, like.ID, like.LikedBy, like.TargetID, like.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrConflict
			case "23503":
				return ErrNotFound
			}
		}
		return fmt.Errorf("insert like: %w", err)
	}

	return nil
}

// Delete removes a like by id.
func (r *PostgresLikeRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM likes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete like: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// LikedVideos lists the videos a user has liked, newest like first, with the
// video owners' minimal profiles joined on.
func (r *PostgresLikeRepository) LikedVideos(ctx context.Context, userID string) ([]models.VideoWithOwner, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT v.id, v.title, v.description, v.video_url,
               v.thumbnail_url, v.thumbnail_key, v.created_at,
               u.username, u.avatar_url, u.avatar_key
        FROM likes l
        JOIN videos v ON v.id = l.video_id
        JOIN users u ON u.id = v.owner_id
        WHERE l.liked_by = $1 AND l.video_id IS NOT NULL
        ORDER BY l.created_at DESC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("query liked videos: %w", err)
	}
	defer rows.Close()

	var videos []models.VideoWithOwner
	for rows.Next() {
		var v models.VideoWithOwner
		if err := rows.Scan(&v.ID, &v.Title, &v.Description, &v.VideoURL,
			&v.Thumbnail.URL, &v.Thumbnail.Key, &v.CreatedAt,
			&v.Owner.Username, &v.Owner.Avatar.URL, &v.Owner.Avatar.Key); err != nil {
			return nil, fmt.Errorf("scan liked video: %w", err)
		}
		videos = append(videos, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate liked videos: %w", err)
	}

	return videos, nil
}
