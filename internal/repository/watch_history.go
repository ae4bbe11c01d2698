package repository

import (
	"context"
	"fmt"

	"github.com/actuallystonmai/streaming-catalog/internal/domain"
)

// SaveProgress upserts the playback position for a title.
func (r *Repository) SaveProgress(ctx context.Context, p domain.ProgressItem) (*domain.ProgressItem, error) {
	out := domain.ProgressItem{}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO watch_progress
			(user_id, kind, tmdb_id, title, poster_path, season, episode, position_seconds, duration_seconds, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
		ON CONFLICT (user_id, kind, tmdb_id) DO UPDATE SET
			title = EXCLUDED.title,
			poster_path = EXCLUDED.poster_path,
			season = EXCLUDED.season,
			episode = EXCLUDED.episode,
			position_seconds = EXCLUDED.position_seconds,
			duration_seconds = EXCLUDED.duration_seconds,
			updated_at = now()
		RETURNING user_id, kind, tmdb_id, title, poster_path, season, episode, position_seconds, duration_seconds, updated_at`,
		p.UserID, string(p.Kind), p.TMDBID, p.Title, p.PosterPath, p.Season, p.Episode, p.PositionSeconds, p.DurationSeconds,
	).Scan(&out.UserID, &out.Kind, &out.TMDBID, &out.Title, &out.PosterPath, &out.Season, &out.Episode,
		&out.PositionSeconds, &out.DurationSeconds, &out.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("save progress %s:%d for user %s: %w", p.Kind, p.TMDBID, p.UserID, err)
	}
	return &out, nil
}

// GetContinueWatching returns unfinished titles, most recently watched first.
func (r *Repository) GetContinueWatching(ctx context.Context, userID string, limit int) ([]domain.ProgressItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, kind, tmdb_id, title, poster_path, season, episode, position_seconds, duration_seconds, updated_at
		FROM watch_progress
		WHERE user_id = $1
			AND position_seconds > 0
			AND (duration_seconds = 0 OR position_seconds * 100 < duration_seconds * 95)
		ORDER BY updated_at DESC
		LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("get continue watching for user %s: %w", userID, err)
	}
	defer rows.Close()

	items := []domain.ProgressItem{}
	for rows.Next() {
		var item domain.ProgressItem
		if err := rows.Scan(&item.UserID, &item.Kind, &item.TMDBID, &item.Title, &item.PosterPath, &item.Season,
			&item.Episode, &item.PositionSeconds, &item.DurationSeconds, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan progress item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate over progress items: %w", err)
	}
	return items, nil
}
