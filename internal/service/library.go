package service

import (
	"context"
	"fmt"

	"github.com/actuallystonmai/streaming-catalog/internal/domain"
)

type ProgressInput struct {
	Kind            domain.Kind
	ID              int64
	Season          int
	Episode         int
	PositionSeconds int
	DurationSeconds int
}

// Add a title to the user's watchlist. Title and poster come from the catalog
// so the list renders without extra provider calls.
func (s *Service) AddToWatchlist(ctx context.Context, userID string, key domain.RecordKey) (*domain.WatchlistItem, error) {
	details, err := s.Details(ctx, key.Kind, key.ID)
	if err != nil {
		return nil, err
	}
	return s.store.AddToWatchlist(ctx, domain.WatchlistItem{
		UserID:     userID,
		Kind:       key.Kind,
		TMDBID:     key.ID,
		Title:      details.Title,
		PosterPath: details.PosterPath,
	})
}

func (s *Service) RemoveFromWatchlist(ctx context.Context, userID string, key domain.RecordKey) error {
	return s.store.RemoveFromWatchlist(ctx, userID, key)
}

func (s *Service) Watchlist(ctx context.Context, userID string) ([]domain.WatchlistItem, error) {
	return s.store.GetWatchlist(ctx, userID)
}

func (s *Service) SaveProgress(ctx context.Context, userID string, in ProgressInput) (*domain.ProgressItem, error) {
	if in.PositionSeconds < 0 || in.DurationSeconds < 0 {
		return nil, fmt.Errorf("%w: position and duration must not be negative", domain.ErrInvalidParameter)
	}
	if in.DurationSeconds > 0 && in.PositionSeconds > in.DurationSeconds {
		return nil, fmt.Errorf("%w: position exceeds duration", domain.ErrInvalidParameter)
	}
	if in.Kind == domain.KindMovie {
		in.Season, in.Episode = 0, 0
	} else if in.Season < 1 || in.Episode < 1 {
		return nil, fmt.Errorf("%w: season and episode are required for shows", domain.ErrInvalidParameter)
	}

	details, err := s.Details(ctx, in.Kind, in.ID)
	if err != nil {
		return nil, err
	}
	return s.store.SaveProgress(ctx, domain.ProgressItem{
		UserID:          userID,
		Kind:            in.Kind,
		TMDBID:          in.ID,
		Title:           details.Title,
		PosterPath:      details.PosterPath,
		Season:          in.Season,
		Episode:         in.Episode,
		PositionSeconds: in.PositionSeconds,
		DurationSeconds: in.DurationSeconds,
	})
}

func (s *Service) ContinueWatching(ctx context.Context, userID string, limit int) ([]domain.ProgressItem, error) {
	if limit <= 0 {
		limit = defaultContinueLimit
	} else if limit > maxContinueLimit {
		limit = maxContinueLimit
	}
	return s.store.GetContinueWatching(ctx, userID, limit)
}

func (s *Service) RateTitle(ctx context.Context, userID string, key domain.RecordKey, rating int) (*domain.RatingItem, error) {
	if rating < 1 || rating > 10 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 10", domain.ErrInvalidParameter)
	}
	details, err := s.Details(ctx, key.Kind, key.ID)
	if err != nil {
		return nil, err
	}
	return s.store.SaveRating(ctx, domain.RatingItem{
		UserID: userID,
		Kind:   key.Kind,
		TMDBID: key.ID,
		Title:  details.Title,
		Rating: rating,
	})
}

func (s *Service) Ratings(ctx context.Context, userID string) ([]domain.RatingItem, error) {
	return s.store.GetRatings(ctx, userID)
}
