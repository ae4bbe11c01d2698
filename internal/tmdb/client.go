// Package tmdb is a small client for The Movie Database v3 REST API.
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/actuallystonmai/streaming-catalog/internal/config"
	"github.com/actuallystonmai/streaming-catalog/internal/domain"
	"github.com/actuallystonmai/streaming-catalog/internal/metrics"
)

const (
	PosterSize   = "w500"
	BackdropSize = "w1280"
)

// APIError is a non-2xx response from TMDB.
type APIError struct {
	Endpoint   string
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("TMDB API error: %s returned %d %s", e.Endpoint, e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return domain.ErrNotFound
	}
	return domain.ErrProviderUnavailable
}

type Client struct {
	apiKey       string
	baseURL      string
	imageBaseURL string
	language     string
	httpClient   *http.Client
}

func NewClient(cfg config.TMDB, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		apiKey:       cfg.APIKey,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		imageBaseURL: strings.TrimRight(cfg.ImageBaseURL, "/"),
		language:     cfg.Language,
		httpClient:   httpClient,
	}
}

func (c *Client) get(ctx context.Context, op, endpoint string, params map[string]string, out any) (err error) {
	defer metrics.ObserveProvider("tmdb", op, time.Now(), &err)

	q := url.Values{}
	q.Set("api_key", c.apiKey)
	if c.language != "" {
		q.Set("language", c.language)
	}
	for k, v := range params {
		if v != "" {
			q.Set(k, v)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build TMDB request %s: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: TMDB request %s: %v", domain.ErrProviderUnavailable, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode TMDB response %s: %v", domain.ErrProviderUnavailable, endpoint, err)
	}
	return nil
}

type movieResult struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title"`
	Overview         string  `json:"overview"`
	PosterPath       string  `json:"poster_path"`
	BackdropPath     string  `json:"backdrop_path"`
	ReleaseDate      string  `json:"release_date"`
	GenreIDs         []int   `json:"genre_ids"`
	OriginalLanguage string  `json:"original_language"`
	Popularity       float64 `json:"popularity"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	Adult            bool    `json:"adult"`
}

type showResult struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	OriginalName     string  `json:"original_name"`
	Overview         string  `json:"overview"`
	PosterPath       string  `json:"poster_path"`
	BackdropPath     string  `json:"backdrop_path"`
	FirstAirDate     string  `json:"first_air_date"`
	GenreIDs         []int   `json:"genre_ids"`
	OriginalLanguage string  `json:"original_language"`
	Popularity       float64 `json:"popularity"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	Adult            bool    `json:"adult"`
}

type page[T any] struct {
	Page         int `json:"page"`
	TotalPages   int `json:"total_pages"`
	TotalResults int `json:"total_results"`
	Results      []T `json:"results"`
}

func (c *Client) movie(m movieResult) domain.Record {
	return domain.Record{
		Kind:             domain.KindMovie,
		ID:               m.ID,
		Title:            m.Title,
		OriginalTitle:    m.OriginalTitle,
		Overview:         m.Overview,
		PosterPath:       m.PosterPath,
		BackdropPath:     m.BackdropPath,
		PosterURL:        c.ImageURL(m.PosterPath, ""),
		BackdropURL:      c.BackdropURL(m.BackdropPath, ""),
		ReleaseDate:      m.ReleaseDate,
		GenreIDs:         m.GenreIDs,
		OriginalLanguage: m.OriginalLanguage,
		Popularity:       m.Popularity,
		VoteAverage:      m.VoteAverage,
		VoteCount:        m.VoteCount,
		Adult:            m.Adult,
	}
}

func (c *Client) show(s showResult) domain.Record {
	return domain.Record{
		Kind:             domain.KindShow,
		ID:               s.ID,
		Title:            s.Name,
		OriginalTitle:    s.OriginalName,
		Overview:         s.Overview,
		PosterPath:       s.PosterPath,
		BackdropPath:     s.BackdropPath,
		PosterURL:        c.ImageURL(s.PosterPath, ""),
		BackdropURL:      c.BackdropURL(s.BackdropPath, ""),
		ReleaseDate:      s.FirstAirDate,
		GenreIDs:         s.GenreIDs,
		OriginalLanguage: s.OriginalLanguage,
		Popularity:       s.Popularity,
		VoteAverage:      s.VoteAverage,
		VoteCount:        s.VoteCount,
		Adult:            s.Adult,
	}
}

func (c *Client) movies(ctx context.Context, op, endpoint string, params map[string]string) ([]domain.Record, error) {
	var resp page[movieResult]
	if err := c.get(ctx, op, endpoint, params, &resp); err != nil {
		return nil, err
	}
	records := make([]domain.Record, 0, len(resp.Results))
	for _, m := range resp.Results {
		records = append(records, c.movie(m))
	}
	return records, nil
}

func (c *Client) shows(ctx context.Context, op, endpoint string, params map[string]string) ([]domain.Record, error) {
	var resp page[showResult]
	if err := c.get(ctx, op, endpoint, params, &resp); err != nil {
		return nil, err
	}
	records := make([]domain.Record, 0, len(resp.Results))
	for _, s := range resp.Results {
		records = append(records, c.show(s))
	}
	return records, nil
}

func pageParam(p int) string {
	if p < 1 {
		p = 1
	}
	return strconv.Itoa(p)
}

func (c *Client) SearchMovies(ctx context.Context, query string, p int) ([]domain.Record, error) {
	return c.movies(ctx, "search_movie", "/search/movie", map[string]string{"query": query, "page": pageParam(p)})
}

func (c *Client) SearchTVShows(ctx context.Context, query string, p int) ([]domain.Record, error) {
	return c.shows(ctx, "search_tv", "/search/tv", map[string]string{"query": query, "page": pageParam(p)})
}

// TimeWindow is the trending window, "day" or "week".
type TimeWindow string

const (
	Day  TimeWindow = "day"
	Week TimeWindow = "week"
)

func (w TimeWindow) orDefault() TimeWindow {
	if w == Day {
		return Day
	}
	return Week
}

func (c *Client) TrendingMovies(ctx context.Context, window TimeWindow) ([]domain.Record, error) {
	return c.movies(ctx, "trending_movie", "/trending/movie/"+string(window.orDefault()), nil)
}

func (c *Client) TrendingTVShows(ctx context.Context, window TimeWindow) ([]domain.Record, error) {
	return c.shows(ctx, "trending_tv", "/trending/tv/"+string(window.orDefault()), nil)
}

func (c *Client) PopularMovies(ctx context.Context, p int) ([]domain.Record, error) {
	return c.movies(ctx, "popular_movie", "/movie/popular", map[string]string{"page": pageParam(p)})
}

func (c *Client) PopularTVShows(ctx context.Context, p int) ([]domain.Record, error) {
	return c.shows(ctx, "popular_tv", "/tv/popular", map[string]string{"page": pageParam(p)})
}

func (c *Client) TopRatedMovies(ctx context.Context, p int) ([]domain.Record, error) {
	return c.movies(ctx, "top_rated_movie", "/movie/top_rated", map[string]string{"page": pageParam(p)})
}

func (c *Client) TopRatedTVShows(ctx context.Context, p int) ([]domain.Record, error) {
	return c.shows(ctx, "top_rated_tv", "/tv/top_rated", map[string]string{"page": pageParam(p)})
}

func (c *Client) DiscoverMovies(ctx context.Context, genreID, p int) ([]domain.Record, error) {
	return c.movies(ctx, "discover_movie", "/discover/movie", map[string]string{
		"with_genres": strconv.Itoa(genreID),
		"page":        pageParam(p),
	})
}

func (c *Client) DiscoverTVShows(ctx context.Context, genreID, p int) ([]domain.Record, error) {
	return c.shows(ctx, "discover_tv", "/discover/tv", map[string]string{
		"with_genres": strconv.Itoa(genreID),
		"page":        pageParam(p),
	})
}

// ImageURL builds a poster URL. An empty path yields an empty URL so the
// client can fall back to its own placeholder.
func (c *Client) ImageURL(path, size string) string {
	if path == "" {
		return ""
	}
	if size == "" {
		size = PosterSize
	}
	return c.imageBaseURL + "/" + size + path
}

func (c *Client) BackdropURL(path, size string) string {
	if size == "" {
		size = BackdropSize
	}
	return c.ImageURL(path, size)
}
