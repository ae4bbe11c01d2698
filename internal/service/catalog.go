package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/actuallystonmai/streaming-catalog/internal/cache"
	"github.com/actuallystonmai/streaming-catalog/internal/domain"
	"github.com/actuallystonmai/streaming-catalog/internal/ranking"
	"github.com/actuallystonmai/streaming-catalog/internal/tmdb"
)

type homeRow struct {
	key   string
	title string
	load  func(ctx context.Context) ([]domain.Record, error)
}

func (s *Service) homeRows() []homeRow {
	return []homeRow{
		{"trending_movies", "Trending Movies", func(ctx context.Context) ([]domain.Record, error) {
			return s.catalog.TrendingMovies(ctx, tmdb.Week)
		}},
		{"trending_tv", "Trending TV Shows", func(ctx context.Context) ([]domain.Record, error) {
			return s.catalog.TrendingTVShows(ctx, tmdb.Week)
		}},
		{"popular_movies", "Popular Movies", func(ctx context.Context) ([]domain.Record, error) {
			return s.catalog.PopularMovies(ctx, 1)
		}},
		{"popular_tv", "Popular TV Shows", func(ctx context.Context) ([]domain.Record, error) {
			return s.catalog.PopularTVShows(ctx, 1)
		}},
		{"top_rated_movies", "Top Rated Movies", func(ctx context.Context) ([]domain.Record, error) {
			return s.catalog.TopRatedMovies(ctx, 1)
		}},
		{"top_rated_tv", "Top Rated TV Shows", func(ctx context.Context) ([]domain.Record, error) {
			return s.catalog.TopRatedTVShows(ctx, 1)
		}},
	}
}

// Home builds the landing page rows concurrently. The featured title is the
// highest rated of the trending rows.
func (s *Service) Home(ctx context.Context) (*domain.HomeFeed, error) {
	feed := &domain.HomeFeed{}
	_, err := s.cached(ctx, cache.HomeKey(), s.cacheTTL, feed, func() (any, error) {
		built, err := s.buildHome(ctx)
		if err != nil {
			return nil, err
		}
		*feed = *built
		return built, nil
	})
	if err != nil {
		return nil, err
	}
	return feed, nil
}

func (s *Service) buildHome(ctx context.Context) (*domain.HomeFeed, error) {
	rows := s.homeRows()
	feed := &domain.HomeFeed{Rows: make([]domain.Row, len(rows))}

	g, gctx := errgroup.WithContext(ctx)
	for i, row := range rows {
		i, row := i, row
		g.Go(func() error {
			items, err := row.load(gctx)
			if err != nil {
				return fmt.Errorf("load %s: %w", row.key, err)
			}
			feed.Rows[i] = domain.Row{Key: row.key, Title: row.title, Items: items}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	trending := make([]domain.Record, 0, len(feed.Rows[0].Items)+len(feed.Rows[1].Items))
	trending = append(trending, feed.Rows[0].Items...)
	trending = append(trending, feed.Rows[1].Items...)
	feed.Featured = ranking.Featured(trending)
	feed.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
	return feed, nil
}

func (s *Service) BrowseGenre(ctx context.Context, kind domain.Kind, genreID, page int) ([]domain.Record, error) {
	if genreID <= 0 {
		return nil, fmt.Errorf("%w: genre id must be positive", domain.ErrInvalidParameter)
	}
	if page < 1 || page > maxPage {
		return nil, fmt.Errorf("%w: page must be between 1 and %d", domain.ErrInvalidParameter, maxPage)
	}

	var records []domain.Record
	_, err := s.cached(ctx, cache.GenreKey(kind, genreID, page), s.cacheTTL, &records, func() (any, error) {
		var err error
		switch kind {
		case domain.KindMovie:
			records, err = s.catalog.DiscoverMovies(ctx, genreID, page)
		case domain.KindShow:
			records, err = s.catalog.DiscoverTVShows(ctx, genreID, page)
		default:
			err = fmt.Errorf("%w: unknown kind %q", domain.ErrInvalidParameter, kind)
		}
		return records, err
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Service) Details(ctx context.Context, kind domain.Kind, id int64) (*domain.Details, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: id must be positive", domain.ErrInvalidParameter)
	}

	details := &domain.Details{}
	_, err := s.cached(ctx, cache.DetailsKey(kind, id), s.cacheTTL, details, func() (any, error) {
		d, err := s.catalog.Details(ctx, kind, id)
		if err != nil {
			return nil, err
		}
		*details = *d
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	return details, nil
}

// Stream resolves a playable URL for a title. Shows default to S1E1.
func (s *Service) Stream(ctx context.Context, kind domain.Kind, id int64, season, episode int) (*domain.Stream, error) {
	if kind == domain.KindShow {
		season = max(season, 1)
		episode = max(episode, 1)
	} else {
		season, episode = 0, 0
	}

	stream := &domain.Stream{}
	_, err := s.cached(ctx, cache.StreamKey(kind, id, season, episode), s.streamTTL, stream, func() (any, error) {
		details, err := s.Details(ctx, kind, id)
		if err != nil {
			return nil, err
		}
		resolved, err := s.streams.Resolve(ctx, kind, details.Title, details.Year(), season, episode)
		if errors.Is(err, domain.ErrStreamNotFound) {
			// Drop cached details and streams so the next attempt refetches them.
			if cerr := s.cache.ClearTitle(ctx, kind, id); cerr != nil {
				s.log.WithError(cerr).WithField("title", domain.RecordKey{Kind: kind, ID: id}.String()).Warn("cache clear failed")
			}
		}
		if err != nil {
			return nil, err
		}
		*stream = *resolved
		return resolved, nil
	})
	if err != nil {
		return nil, err
	}
	return stream, nil
}
