package repository

import (
	"context"
	"fmt"

	"github.com/actuallystonmai/streaming-catalog/internal/domain"
)

func (r *Repository) SaveRating(ctx context.Context, item domain.RatingItem) (*domain.RatingItem, error) {
	out := domain.RatingItem{}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO ratings (user_id, kind, tmdb_id, title, rating, rated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (user_id, kind, tmdb_id) DO UPDATE SET
			title = EXCLUDED.title,
			rating = EXCLUDED.rating,
			rated_at = now()
		RETURNING user_id, kind, tmdb_id, title, rating, rated_at`,
		item.UserID, string(item.Kind), item.TMDBID, item.Title, item.Rating,
	).Scan(&out.UserID, &out.Kind, &out.TMDBID, &out.Title, &out.Rating, &out.RatedAt)
	if err != nil {
		return nil, fmt.Errorf("save rating %s:%d for user %s: %w", item.Kind, item.TMDBID, item.UserID, err)
	}
	return &out, nil
}

func (r *Repository) GetRatings(ctx context.Context, userID string) ([]domain.RatingItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, kind, tmdb_id, title, rating, rated_at
		FROM ratings
		WHERE user_id = $1
		ORDER BY rated_at DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query ratings for user %s: %w", userID, err)
	}
	defer rows.Close()

	items := []domain.RatingItem{}
	for rows.Next() {
		var item domain.RatingItem
		if err := rows.Scan(&item.UserID, &item.Kind, &item.TMDBID, &item.Title, &item.Rating, &item.RatedAt); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate over ratings: %w", err)
	}
	return items, nil
}
