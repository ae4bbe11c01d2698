// Package vidking resolves playable stream URLs from VidKing.
package vidking

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

// ContentType is VidKing's own content discriminator.
type ContentType string

const (
	TypeMovie  ContentType = "movie"
	TypeSeries ContentType = "series"
)

func typeFor(kind domain.Kind) ContentType {
	if kind == domain.KindShow {
		return TypeSeries
	}
	return TypeMovie
}

type APIError struct {
	Endpoint   string
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("VidKing %s error: %d", e.Endpoint, e.StatusCode)
}

func (e *APIError) Unwrap() error {
	return domain.ErrProviderUnavailable
}

type SearchResult struct {
	ID     string      `json:"id"`
	Title  string      `json:"title"`
	Year   int         `json:"year"`
	Type   ContentType `json:"type"`
	Poster string      `json:"poster,omitempty"`
	IMDbID string      `json:"imdbId,omitempty"`
}

type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

func NewClient(cfg config.VidKing, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		httpClient: httpClient,
	}
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) (err error) {
	defer metrics.ObserveProvider("vidking", strings.TrimPrefix(endpoint, "/api/"), time.Now(), &err)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build VidKing request %s: %w", endpoint, err)
	}
	req.Header.Set("Referer", c.baseURL)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: VidKing request %s: %v", domain.ErrProviderUnavailable, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode VidKing response %s: %v", domain.ErrProviderUnavailable, endpoint, err)
	}
	return nil
}

// SearchContent looks a title up in VidKing's catalog. typ may be empty.
func (c *Client) SearchContent(ctx context.Context, query string, typ ContentType) ([]SearchResult, error) {
	params := url.Values{}
	params.Set("q", query)
	if typ != "" {
		params.Set("type", string(typ))
	}

	var resp struct {
		Results []SearchResult `json:"results"`
	}
	if err := c.get(ctx, "/api/search", params, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// StreamURL resolves a VidKing content id to a stream. Season and episode are
// only sent for series and only when both are set.
func (c *Client) StreamURL(ctx context.Context, contentID string, typ ContentType, season, episode int) (*domain.Stream, error) {
	params := url.Values{}
	params.Set("id", contentID)
	params.Set("type", string(typ))
	if typ == TypeSeries && season > 0 && episode > 0 {
		params.Set("season", strconv.Itoa(season))
		params.Set("episode", strconv.Itoa(episode))
	}

	var resp struct {
		Stream *struct {
			URL     string `json:"url"`
			Quality string `json:"quality"`
		} `json:"stream"`
	}
	if err := c.get(ctx, "/api/stream", params, &resp); err != nil {
		return nil, err
	}
	if resp.Stream == nil || resp.Stream.URL == "" {
		return nil, domain.ErrStreamNotFound
	}

	stream := &domain.Stream{
		URL:      resp.Stream.URL,
		EmbedURL: c.EmbedURL(resp.Stream.URL),
		Quality:  resp.Stream.Quality,
		Kind:     domain.KindMovie,
	}
	if stream.Quality == "" {
		stream.Quality = "auto"
	}
	if typ == TypeSeries {
		stream.Kind = domain.KindShow
		stream.Season = season
		stream.Episode = episode
	}
	return stream, nil
}

// MovieStream searches by title (and year when known) and resolves the best match.
func (c *Client) MovieStream(ctx context.Context, title string, year int) (*domain.Stream, error) {
	query := title
	if year > 0 {
		query = fmt.Sprintf("%s %d", title, year)
	}
	return c.resolve(ctx, query, TypeMovie, 0, 0)
}

// ShowStream resolves an episode; season and episode default to 1.
func (c *Client) ShowStream(ctx context.Context, title string, season, episode int) (*domain.Stream, error) {
	if season < 1 {
		season = 1
	}
	if episode < 1 {
		episode = 1
	}
	return c.resolve(ctx, title, TypeSeries, season, episode)
}

// Resolve picks the movie or show path for a catalog kind.
func (c *Client) Resolve(ctx context.Context, kind domain.Kind, title string, year, season, episode int) (*domain.Stream, error) {
	if typeFor(kind) == TypeSeries {
		return c.ShowStream(ctx, title, season, episode)
	}
	return c.MovieStream(ctx, title, year)
}

func (c *Client) resolve(ctx context.Context, query string, typ ContentType, season, episode int) (*domain.Stream, error) {
	results, err := c.SearchContent(ctx, query, typ)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, domain.ErrStreamNotFound
	}
	return c.StreamURL(ctx, results[0].ID, typ, season, episode)
}

func (c *Client) EmbedURL(streamURL string) string {
	return c.baseURL + "/embed/" + streamURL
}
