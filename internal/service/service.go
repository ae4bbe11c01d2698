package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/actuallystonmai/streaming-catalog/internal/domain"
	"github.com/actuallystonmai/streaming-catalog/internal/search"
	"github.com/actuallystonmai/streaming-catalog/internal/tmdb"
)

const (
	defaultContinueLimit = 20
	maxContinueLimit     = 50
	maxPage              = 500
)

// Catalog is the metadata provider (TMDB).
type Catalog interface {
	search.MovieSearcher
	search.ShowSearcher
	TrendingMovies(ctx context.Context, window tmdb.TimeWindow) ([]domain.Record, error)
	TrendingTVShows(ctx context.Context, window tmdb.TimeWindow) ([]domain.Record, error)
	PopularMovies(ctx context.Context, page int) ([]domain.Record, error)
	PopularTVShows(ctx context.Context, page int) ([]domain.Record, error)
	TopRatedMovies(ctx context.Context, page int) ([]domain.Record, error)
	TopRatedTVShows(ctx context.Context, page int) ([]domain.Record, error)
	DiscoverMovies(ctx context.Context, genreID, page int) ([]domain.Record, error)
	DiscoverTVShows(ctx context.Context, genreID, page int) ([]domain.Record, error)
	Details(ctx context.Context, kind domain.Kind, id int64) (*domain.Details, error)
}

// StreamResolver is the stream provider (VidKing).
type StreamResolver interface {
	Resolve(ctx context.Context, kind domain.Kind, title string, year, season, episode int) (*domain.Stream, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	ClearTitle(ctx context.Context, kind domain.Kind, id int64) error
}

// Store persists per-user lists.
type Store interface {
	AddToWatchlist(ctx context.Context, item domain.WatchlistItem) (*domain.WatchlistItem, error)
	RemoveFromWatchlist(ctx context.Context, userID string, key domain.RecordKey) error
	GetWatchlist(ctx context.Context, userID string) ([]domain.WatchlistItem, error)
	SaveProgress(ctx context.Context, p domain.ProgressItem) (*domain.ProgressItem, error)
	GetContinueWatching(ctx context.Context, userID string, limit int) ([]domain.ProgressItem, error)
	SaveRating(ctx context.Context, item domain.RatingItem) (*domain.RatingItem, error)
	GetRatings(ctx context.Context, userID string) ([]domain.RatingItem, error)
}

type Options struct {
	CacheTTL       time.Duration
	StreamCacheTTL time.Duration
	Logger         *logrus.Entry
}

type Service struct {
	catalog   Catalog
	search    *search.Aggregator
	streams   StreamResolver
	cache     Cache
	store     Store
	cacheTTL  time.Duration
	streamTTL time.Duration
	log       *logrus.Entry
}

func NewService(catalog Catalog, streams StreamResolver, cache Cache, store Store, opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Service{
		catalog:   catalog,
		search:    search.NewAggregator(catalog, catalog),
		streams:   streams,
		cache:     cache,
		store:     store,
		cacheTTL:  opts.CacheTTL,
		streamTTL: opts.StreamCacheTTL,
		log:       log.WithField("component", "service"),
	}
}

// Search is never cached: identical calls always hit the provider.
func (s *Service) Search(ctx context.Context, query string, kind domain.SearchType, page int) ([]domain.Record, error) {
	return s.search.Search(ctx, query, kind, page)
}

// cached loads key into dst, or runs load and stores its result. Cache errors
// are logged and never fail the request.
func (s *Service) cached(ctx context.Context, key string, ttl time.Duration, dst any, load func() (any, error)) (bool, error) {
	found, err := s.cache.Get(ctx, key, dst)
	if err != nil {
		s.log.WithError(err).WithField("key", key).Warn("cache get failed")
	}
	if found {
		return true, nil
	}

	v, err := load()
	if err != nil {
		return false, err
	}
	if err := s.cache.Set(ctx, key, v, ttl); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("cache set failed")
	}
	return false, nil
}
