// Package search merges movie and show search results from the catalog provider.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/actuallystonmai/streaming-catalog/internal/domain"
	"github.com/actuallystonmai/streaming-catalog/internal/ranking"
)

const MinQueryLength = 2

type MovieSearcher interface {
	SearchMovies(ctx context.Context, query string, page int) ([]domain.Record, error)
}

type ShowSearcher interface {
	SearchTVShows(ctx context.Context, query string, page int) ([]domain.Record, error)
}

type Aggregator struct {
	movies MovieSearcher
	shows  ShowSearcher
}

func NewAggregator(movies MovieSearcher, shows ShowSearcher) *Aggregator {
	return &Aggregator{movies: movies, shows: shows}
}

// ValidateQuery trims the query and rejects it when fewer than MinQueryLength
// characters remain.
func ValidateQuery(query string) (string, error) {
	trimmed := strings.TrimSpace(query)
	if utf8.RuneCountInString(trimmed) < MinQueryLength {
		return "", domain.ErrInvalidQuery
	}
	return trimmed, nil
}

// Search runs the query against one or both providers. For SearchAll both
// calls run concurrently and the first failure cancels the other; the merged
// result is ranked by score.
func (a *Aggregator) Search(ctx context.Context, query string, kind domain.SearchType, page int) ([]domain.Record, error) {
	q, err := ValidateQuery(query)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}

	switch kind {
	case domain.SearchMovies:
		results, err := a.movies.SearchMovies(ctx, q, page)
		if err != nil {
			return nil, providerError("search movies", err)
		}
		return results, nil
	case domain.SearchShows:
		results, err := a.shows.SearchTVShows(ctx, q, page)
		if err != nil {
			return nil, providerError("search tv", err)
		}
		return results, nil
	case domain.SearchAll, "":
		return a.searchAll(ctx, q, page)
	}
	return nil, fmt.Errorf("%w: unknown search type %q", domain.ErrInvalidParameter, kind)
}

func (a *Aggregator) searchAll(ctx context.Context, query string, page int) ([]domain.Record, error) {
	var movies, shows []domain.Record

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		results, err := a.movies.SearchMovies(gctx, query, page)
		if err != nil {
			return providerError("search movies", err)
		}
		movies = results
		return nil
	})
	g.Go(func() error {
		results, err := a.shows.SearchTVShows(gctx, query, page)
		if err != nil {
			return providerError("search tv", err)
		}
		shows = results
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	combined := make([]domain.Record, 0, len(movies)+len(shows))
	combined = append(combined, movies...)
	combined = append(combined, shows...)
	return ranking.Rank(combined), nil
}

func providerError(op string, err error) error {
	if errors.Is(err, domain.ErrProviderUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %v", op, domain.ErrProviderUnavailable, err)
}
