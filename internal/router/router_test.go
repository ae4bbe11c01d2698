package router

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actuallystonmai/streaming-catalog/internal/auth"
	"github.com/actuallystonmai/streaming-catalog/internal/domain"
	"github.com/actuallystonmai/streaming-catalog/internal/handler"
	"github.com/actuallystonmai/streaming-catalog/internal/service"
	"github.com/actuallystonmai/streaming-catalog/internal/testutil"
)

type pinger struct{ err error }

func (p pinger) Ping(ctx context.Context) error { return p.err }

func newRouter(t *testing.T, verifier *auth.Verifier, health map[string]Pinger) http.Handler {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	log := logrus.NewEntry(logger)

	catalog := &testutil.Catalog{
		Movies: []domain.Record{{Kind: domain.KindMovie, ID: 268, Title: "Batman", Popularity: 50, VoteAverage: 8}},
		Titles: map[domain.RecordKey]domain.Details{
			{Kind: domain.KindMovie, ID: 27205}: {Kind: domain.KindMovie, ID: 27205, Title: "Inception"},
		},
	}
	svc := service.NewService(catalog, &testutil.Streams{}, testutil.NewCache(), testutil.NewStore(), service.Options{
		CacheTTL: time.Minute,
		Logger:   log,
	})
	return Setup(handler.NewHandler(svc, log), Options{Logger: log, Verifier: verifier, Health: health})
}

func serve(h http.Handler, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h := newRouter(t, nil, map[string]Pinger{"postgres": pinger{}, "redis": pinger{}})

	rec := serve(h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","checks":{"postgres":"ok","redis":"ok"}}`, rec.Body.String())
}

func TestHealthDegraded(t *testing.T) {
	h := newRouter(t, nil, map[string]Pinger{"redis": pinger{err: errors.New("refused")}})

	rec := serve(h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"degraded","checks":{"redis":"down"}}`, rec.Body.String())
}

func TestSearchRoute(t *testing.T) {
	h := newRouter(t, nil, nil)

	rec := serve(h, http.MethodGet, "/api/search?q=batman&type=movie", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalResults":1`)
	assert.NotEmpty(t, rec.Header().Get("Content-Type"))
}

func TestUnknownRoute(t *testing.T) {
	h := newRouter(t, nil, nil)

	rec := serve(h, http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Route not found"}`, rec.Body.String())
}

func TestUserRoutesDisabledWithoutVerifier(t *testing.T) {
	h := newRouter(t, nil, nil)

	rec := serve(h, http.MethodGet, "/api/user/watchlist", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUserRoutesRequireToken(t *testing.T) {
	verifier := auth.NewVerifier("test-secret")
	h := newRouter(t, verifier, nil)

	rec := serve(h, http.MethodGet, "/api/user/watchlist", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Missing bearer token"}`, rec.Body.String())

	rec = serve(h, http.MethodGet, "/api/user/watchlist", "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := verifier.Sign("user-1", time.Hour)
	require.NoError(t, err)
	rec = serve(h, http.MethodGet, "/api/user/watchlist", token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[],"total":0}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	h := newRouter(t, nil, nil)
	serve(h, http.MethodGet, "/api/search?q=batman", "")

	rec := serve(h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/search")
}
