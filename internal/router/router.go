package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/actuallystonmai/streaming-catalog/internal/auth"
	"github.com/actuallystonmai/streaming-catalog/internal/handler"
	"github.com/actuallystonmai/streaming-catalog/internal/metrics"
	"github.com/actuallystonmai/streaming-catalog/internal/telemetry"
)

const requestTimeout = 30 * time.Second

// Pinger is a dependency checked by /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Logger *logrus.Entry
	// Verifier guards /api/user. When nil the user routes are not mounted.
	Verifier *auth.Verifier
	Health   map[string]Pinger
}

func Setup(h *handler.Handler, opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	log = log.WithField("component", "http")

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(metrics.Middleware)
	r.Use(telemetry.Recoverer(log))
	r.Use(middleware.Timeout(requestTimeout))

	// Routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/search", h.Search)
		r.Get("/home", h.Home)
		r.Get("/genres/{genreID}/{kind}", h.BrowseGenre)
		r.Get("/titles/{kind}/{id}", h.Title)
		r.Get("/titles/{kind}/{id}/stream", h.Stream)

		if opts.Verifier == nil {
			log.Warn("no jwt secret configured, user routes disabled")
			return
		}
		r.Route("/user", func(r chi.Router) {
			r.Use(opts.Verifier.Middleware(handler.AuthError))
			r.Get("/watchlist", h.Watchlist)
			r.Post("/watchlist", h.AddToWatchlist)
			r.Delete("/watchlist/{kind}/{id}", h.RemoveFromWatchlist)
			r.Get("/continue-watching", h.ContinueWatching)
			r.Put("/progress", h.SaveProgress)
			r.Get("/ratings", h.Ratings)
			r.Put("/ratings", h.RateTitle)
		})
	})
	r.Get("/health", healthCheck(opts.Health))
	r.Handle("/metrics", metrics.Handler())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
	})

	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// healthCheck reports 503 when any dependency fails its ping.
func healthCheck(deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		if len(deps) > 0 {
			resp.Checks = make(map[string]string, len(deps))
		}
		for name, dep := range deps {
			if err := dep.Ping(ctx); err != nil {
				resp.Checks[name] = "down"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		writeJSON(w, status, resp)
	}
}

// requestLogger writes one access log line per request.
func requestLogger(log *logrus.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				entry := log.WithFields(logrus.Fields{
					"method":      r.Method,
					"path":        r.URL.Path,
					"status":      status,
					"bytes":       ww.BytesWritten(),
					"duration_ms": time.Since(start).Milliseconds(),
					"request_id":  middleware.GetReqID(r.Context()),
				})
				if status >= http.StatusInternalServerError {
					entry.Warn("request")
					return
				}
				entry.Info("request")
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
