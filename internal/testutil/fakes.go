// Package testutil holds in-memory fakes of the catalog's collaborators.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/actuallystonmai/streaming-catalog/internal/cache"
	"github.com/actuallystonmai/streaming-catalog/internal/domain"
	"github.com/actuallystonmai/streaming-catalog/internal/tmdb"
)

// Catalog is a scripted TMDB. Lists are returned as-is; Err, when set, fails
// every call.
type Catalog struct {
	Movies         []domain.Record
	Shows          []domain.Record
	TrendingMovie  []domain.Record
	TrendingShow   []domain.Record
	Titles         map[domain.RecordKey]domain.Details
	Err            error
	MovieSearchErr error
	ShowSearchErr  error

	Calls atomic.Int32
}

func (c *Catalog) call() error {
	c.Calls.Add(1)
	return c.Err
}

func (c *Catalog) SearchMovies(ctx context.Context, query string, page int) ([]domain.Record, error) {
	if err := c.call(); err != nil {
		return nil, err
	}
	if c.MovieSearchErr != nil {
		return nil, c.MovieSearchErr
	}
	return c.Movies, nil
}

func (c *Catalog) SearchTVShows(ctx context.Context, query string, page int) ([]domain.Record, error) {
	if err := c.call(); err != nil {
		return nil, err
	}
	if c.ShowSearchErr != nil {
		return nil, c.ShowSearchErr
	}
	return c.Shows, nil
}

func (c *Catalog) TrendingMovies(ctx context.Context, window tmdb.TimeWindow) ([]domain.Record, error) {
	return c.TrendingMovie, c.call()
}

func (c *Catalog) TrendingTVShows(ctx context.Context, window tmdb.TimeWindow) ([]domain.Record, error) {
	return c.TrendingShow, c.call()
}

func (c *Catalog) PopularMovies(ctx context.Context, page int) ([]domain.Record, error) {
	return c.Movies, c.call()
}

func (c *Catalog) PopularTVShows(ctx context.Context, page int) ([]domain.Record, error) {
	return c.Shows, c.call()
}

func (c *Catalog) TopRatedMovies(ctx context.Context, page int) ([]domain.Record, error) {
	return c.Movies, c.call()
}

func (c *Catalog) TopRatedTVShows(ctx context.Context, page int) ([]domain.Record, error) {
	return c.Shows, c.call()
}

func (c *Catalog) DiscoverMovies(ctx context.Context, genreID, page int) ([]domain.Record, error) {
	return c.Movies, c.call()
}

func (c *Catalog) DiscoverTVShows(ctx context.Context, genreID, page int) ([]domain.Record, error) {
	return c.Shows, c.call()
}

func (c *Catalog) Details(ctx context.Context, kind domain.Kind, id int64) (*domain.Details, error) {
	if err := c.call(); err != nil {
		return nil, err
	}
	d, ok := c.Titles[domain.RecordKey{Kind: kind, ID: id}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &d, nil
}

// Streams resolves every title to "<title>.m3u8" unless Err is set.
type Streams struct {
	Err   error
	Calls atomic.Int32

	mu   sync.Mutex
	Last struct {
		Kind            domain.Kind
		Title           string
		Year            int
		Season, Episode int
	}
}

func (s *Streams) Resolve(ctx context.Context, kind domain.Kind, title string, year, season, episode int) (*domain.Stream, error) {
	s.Calls.Add(1)
	s.mu.Lock()
	s.Last.Kind, s.Last.Title, s.Last.Year, s.Last.Season, s.Last.Episode = kind, title, year, season, episode
	s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	return &domain.Stream{URL: title + ".m3u8", Quality: "auto", Kind: kind, Season: season, Episode: episode}, nil
}

// Cache stores JSON like the redis cache does, so type round-trips are real.
type Cache struct {
	mu     sync.Mutex
	values map[string][]byte
	TTLs   map[string]time.Duration
	GetErr error
	SetErr error
}

func NewCache() *Cache {
	return &Cache{values: map[string][]byte{}, TTLs: map[string]time.Duration{}}
}

func (c *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if c.GetErr != nil {
		return false, c.GetErr
	}
	c.mu.Lock()
	val, ok := c.values[key]
	c.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(val, dst)
}

func (c *Cache) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	if c.SetErr != nil {
		return c.SetErr
	}
	val, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.values[key] = val
	c.TTLs[key] = ttl
	c.mu.Unlock()
	return nil
}

func (c *Cache) ClearTitle(ctx context.Context, kind domain.Kind, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, cache.DetailsKey(kind, id))
	prefix := fmt.Sprintf("catalog:stream:%s:%d:", kind, id)
	for key := range c.values {
		if strings.HasPrefix(key, prefix) {
			delete(c.values, key)
		}
	}
	return nil
}

func (c *Cache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.values[key]
	return ok
}

// Store is an in-memory user list store keyed like the SQL tables.
type Store struct {
	mu        sync.Mutex
	seq       int
	watchlist map[string]map[domain.RecordKey]domain.WatchlistItem
	progress  map[string]map[domain.RecordKey]domain.ProgressItem
	ratings   map[string]map[domain.RecordKey]domain.RatingItem
	Err       error
}

func NewStore() *Store {
	return &Store{
		watchlist: map[string]map[domain.RecordKey]domain.WatchlistItem{},
		progress:  map[string]map[domain.RecordKey]domain.ProgressItem{},
		ratings:   map[string]map[domain.RecordKey]domain.RatingItem{},
	}
}

func (s *Store) now() time.Time {
	s.seq++
	return time.Unix(1_700_000_000+int64(s.seq), 0).UTC()
}

func (s *Store) AddToWatchlist(ctx context.Context, item domain.WatchlistItem) (*domain.WatchlistItem, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watchlist[item.UserID] == nil {
		s.watchlist[item.UserID] = map[domain.RecordKey]domain.WatchlistItem{}
	}
	key := item.TMDBKey()
	if existing, ok := s.watchlist[item.UserID][key]; ok {
		return &existing, nil
	}
	item.ID = fmt.Sprintf("wl-%d", s.seq+1)
	item.AddedAt = s.now()
	s.watchlist[item.UserID][key] = item
	return &item, nil
}

func (s *Store) RemoveFromWatchlist(ctx context.Context, userID string, key domain.RecordKey) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.watchlist[userID][key]; !ok {
		return domain.ErrNotFound
	}
	delete(s.watchlist[userID], key)
	return nil
}

func (s *Store) GetWatchlist(ctx context.Context, userID string) ([]domain.WatchlistItem, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	items := []domain.WatchlistItem{}
	for _, item := range s.watchlist[userID] {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].AddedAt.After(items[j].AddedAt) })
	return items, nil
}

func (s *Store) SaveProgress(ctx context.Context, p domain.ProgressItem) (*domain.ProgressItem, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.progress[p.UserID] == nil {
		s.progress[p.UserID] = map[domain.RecordKey]domain.ProgressItem{}
	}
	p.UpdatedAt = s.now()
	s.progress[p.UserID][domain.RecordKey{Kind: p.Kind, ID: p.TMDBID}] = p
	return &p, nil
}

func (s *Store) GetContinueWatching(ctx context.Context, userID string, limit int) ([]domain.ProgressItem, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	items := []domain.ProgressItem{}
	for _, p := range s.progress[userID] {
		if p.PositionSeconds > 0 && !p.Finished() {
			items = append(items, p)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].UpdatedAt.After(items[j].UpdatedAt) })
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) SaveRating(ctx context.Context, item domain.RatingItem) (*domain.RatingItem, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ratings[item.UserID] == nil {
		s.ratings[item.UserID] = map[domain.RecordKey]domain.RatingItem{}
	}
	item.RatedAt = s.now()
	s.ratings[item.UserID][domain.RecordKey{Kind: item.Kind, ID: item.TMDBID}] = item
	return &item, nil
}

func (s *Store) GetRatings(ctx context.Context, userID string) ([]domain.RatingItem, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	items := []domain.RatingItem{}
	for _, item := range s.ratings[userID] {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].RatedAt.After(items[j].RatedAt) })
	return items, nil
}
