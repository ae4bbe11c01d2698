package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/actuallystonmai/streaming-catalog/internal/domain"
)

// Add a title to the user's watchlist. Adding the same (kind, id) twice
// returns the existing entry.
func (r *Repository) AddToWatchlist(ctx context.Context, item domain.WatchlistItem) (*domain.WatchlistItem, error) {
	out := domain.WatchlistItem{}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO watchlist (id, user_id, kind, tmdb_id, title, poster_path)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, kind, tmdb_id)
			DO UPDATE SET title = EXCLUDED.title, poster_path = EXCLUDED.poster_path
		RETURNING id, user_id, kind, tmdb_id, title, poster_path, added_at`,
		uuid.NewString(), item.UserID, string(item.Kind), item.TMDBID, item.Title, item.PosterPath,
	).Scan(&out.ID, &out.UserID, &out.Kind, &out.TMDBID, &out.Title, &out.PosterPath, &out.AddedAt)
	if err != nil {
		return nil, fmt.Errorf("insert watchlist item %s:%d for user %s: %w", item.Kind, item.TMDBID, item.UserID, err)
	}
	return &out, nil
}

func (r *Repository) RemoveFromWatchlist(ctx context.Context, userID string, key domain.RecordKey) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM watchlist WHERE user_id = $1 AND kind = $2 AND tmdb_id = $3`,
		userID, string(key.Kind), key.ID,
	)
	if err != nil {
		return fmt.Errorf("delete watchlist item %s for user %s: %w", key, userID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Get the user's watchlist, newest first
func (r *Repository) GetWatchlist(ctx context.Context, userID string) ([]domain.WatchlistItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, kind, tmdb_id, title, poster_path, added_at
		FROM watchlist
		WHERE user_id = $1
		ORDER BY added_at DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query watchlist for user %s: %w", userID, err)
	}
	defer rows.Close()

	items := []domain.WatchlistItem{}
	for rows.Next() {
		var item domain.WatchlistItem
		if err := rows.Scan(&item.ID, &item.UserID, &item.Kind, &item.TMDBID, &item.Title, &item.PosterPath, &item.AddedAt); err != nil {
			return nil, fmt.Errorf("scan watchlist item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate over watchlist: %w", err)
	}
	return items, nil
}

func (r *Repository) InWatchlist(ctx context.Context, userID string, key domain.RecordKey) (bool, error) {
	var id string
	err := r.pool.QueryRow(ctx,
		`SELECT id FROM watchlist WHERE user_id = $1 AND kind = $2 AND tmdb_id = $3`,
		userID, string(key.Kind), key.ID,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query watchlist item %s for user %s: %w", key, userID, err)
	}
	return true, nil
}
