package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actuallystonmai/streaming-catalog/internal/auth"
	"github.com/actuallystonmai/streaming-catalog/internal/domain"
	"github.com/actuallystonmai/streaming-catalog/internal/service"
	"github.com/actuallystonmai/streaming-catalog/internal/testutil"
)

type fixture struct {
	catalog *testutil.Catalog
	streams *testutil.Streams
	store   *testutil.Store
	mux     http.Handler
}

func newFixture() *fixture {
	f := &fixture{
		catalog: &testutil.Catalog{
			Movies: []domain.Record{
				{Kind: domain.KindMovie, ID: 268, Title: "Batman", Popularity: 50, VoteAverage: 8.0},
			},
			Shows: []domain.Record{
				{Kind: domain.KindShow, ID: 2098, Title: "Batman: TAS", Popularity: 80, VoteAverage: 6.0},
			},
			Titles: map[domain.RecordKey]domain.Details{
				{Kind: domain.KindMovie, ID: 27205}: {Kind: domain.KindMovie, ID: 27205, Title: "Inception", ReleaseDate: "2010-07-15"},
				{Kind: domain.KindShow, ID: 1399}:   {Kind: domain.KindShow, ID: 1399, Title: "Game of Thrones"},
			},
		},
		streams: &testutil.Streams{},
		store:   testutil.NewStore(),
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	svc := service.NewService(f.catalog, f.streams, testutil.NewCache(), f.store, service.Options{
		CacheTTL:       time.Minute,
		StreamCacheTTL: time.Minute,
		Logger:         logrus.NewEntry(logger),
	})
	h := NewHandler(svc, logrus.NewEntry(logger))

	r := chi.NewRouter()
	r.Get("/api/search", h.Search)
	r.Get("/api/home", h.Home)
	r.Get("/api/genres/{genreID}/{kind}", h.BrowseGenre)
	r.Get("/api/titles/{kind}/{id}", h.Title)
	r.Get("/api/titles/{kind}/{id}/stream", h.Stream)
	r.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				if user := req.Header.Get("X-Test-User"); user != "" {
					req = req.WithContext(auth.WithUserID(req.Context(), user))
				}
				next.ServeHTTP(w, req)
			})
		})
		r.Get("/api/user/watchlist", h.Watchlist)
		r.Post("/api/user/watchlist", h.AddToWatchlist)
		r.Delete("/api/user/watchlist/{kind}/{id}", h.RemoveFromWatchlist)
		r.Get("/api/user/continue-watching", h.ContinueWatching)
		r.Put("/api/user/progress", h.SaveProgress)
		r.Get("/api/user/ratings", h.Ratings)
		r.Put("/api/user/ratings", h.RateTitle)
	})
	f.mux = r
	return f
}

func (f *fixture) do(t *testing.T, method, target, user, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestSearch(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodGet, "/api/search?q=batman", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "batman", body.Query)
	assert.Equal(t, "all", body.Type)
	assert.Equal(t, 1, body.Page)
	assert.Equal(t, 2, body.TotalResults)
	require.Len(t, body.Results, 2)
	assert.Equal(t, domain.KindShow, body.Results[0].Kind)
	assert.Equal(t, domain.KindMovie, body.Results[1].Kind)
}

func TestSearchEchoesTypeAndPage(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodGet, "/api/search?q=batman&type=tv&page=3", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "tv", body.Type)
	assert.Equal(t, 3, body.Page)
	require.Len(t, body.Results, 1)
	assert.Equal(t, int64(2098), body.Results[0].ID)
}

func TestSearchValidation(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"short query", "/api/search?q=a"},
		{"missing query", "/api/search"},
		{"unknown type", "/api/search?q=batman&type=anime"},
		{"zero page", "/api/search?q=batman&page=0"},
		{"page too large", "/api/search?q=batman&page=501"},
		{"non numeric page", "/api/search?q=batman&page=two"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			rec := f.do(t, http.MethodGet, tt.target, "", "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, decodeError(t, rec))
			assert.Zero(t, f.catalog.Calls.Load(), "no provider call expected")
		})
	}
}

func TestSearchProviderFailure(t *testing.T) {
	f := newFixture()
	f.catalog.ShowSearchErr = errors.New("tmdb: 503 upstream secret detail")

	rec := f.do(t, http.MethodGet, "/api/search?q=batman", "", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	msg := decodeError(t, rec)
	assert.NotContains(t, msg, "secret")
}

func TestHomeProviderFailureIsBadGateway(t *testing.T) {
	f := newFixture()
	f.catalog.Err = domain.ErrProviderUnavailable

	rec := f.do(t, http.MethodGet, "/api/home", "", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestBrowseGenre(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodGet, "/api/genres/28/movie?page=2", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body PageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Page)
	assert.Len(t, body.Results, 1)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/genres/abc/movie", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/genres/28/anime", "", "").Code)
}

func TestTitle(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodGet, "/api/titles/tv/1399", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var details domain.Details
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &details))
	assert.Equal(t, "Game of Thrones", details.Title)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/titles/movie/1399", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/titles/movie/-1", "", "").Code)
}

func TestStream(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodGet, "/api/titles/tv/1399/stream?season=2&episode=5", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stream domain.Stream
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stream))
	assert.Equal(t, 2, stream.Season)
	assert.Equal(t, 5, stream.Episode)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/titles/tv/1399/stream?season=0", "", "").Code)

	f.streams.Err = domain.ErrStreamNotFound
	rec = f.do(t, http.MethodGet, "/api/titles/movie/27205/stream", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, domain.ErrStreamNotFound.Error(), decodeError(t, rec))
}

func TestUserRoutesRequireUser(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodGet, "/api/user/watchlist", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWatchlistFlow(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodPost, "/api/user/watchlist", "u1", `{"kind":"movie","id":27205}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/user/watchlist", "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list ListResponse[domain.WatchlistItem]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "Inception", list.Items[0].Title)
	assert.NotContains(t, rec.Body.String(), "u1", "user id must not be serialised")

	assert.Equal(t, http.StatusNoContent, f.do(t, http.MethodDelete, "/api/user/watchlist/movie/27205", "u1", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodDelete, "/api/user/watchlist/movie/27205", "u1", "").Code)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/user/watchlist", "u1", `{"kind":"book","id":1}`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/user/watchlist", "u1", `not json`).Code)
}

func TestEmptyListsEncodeAsArrays(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodGet, "/api/user/ratings", "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[],"total":0}`, rec.Body.String())
}

func TestProgressAndRatings(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodPut, "/api/user/progress", "u1",
		`{"kind":"tv","id":1399,"season":1,"episode":2,"position_seconds":300,"duration_seconds":3000}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/user/continue-watching?limit=5", "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var progress ListResponse[domain.ProgressItem]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &progress))
	require.Len(t, progress.Items, 1)
	assert.Equal(t, 2, progress.Items[0].Episode)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/user/continue-watching?limit=500", "u1", "").Code)

	rec = f.do(t, http.MethodPut, "/api/user/ratings", "u1", `{"kind":"tv","id":1399,"rating":11}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPut, "/api/user/ratings", "u1", `{"kind":"tv","id":1399,"rating":9}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var rating domain.RatingItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rating))
	assert.Equal(t, 9, rating.Rating)
	assert.Equal(t, "Game of Thrones", rating.Title)
}

func TestAuthError(t *testing.T) {
	rec := httptest.NewRecorder()
	AuthError(rec, auth.ErrInvalidToken)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid or expired token"}`, rec.Body.String())
}
