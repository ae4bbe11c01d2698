package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/actuallystonmai/streaming-catalog/internal/auth"
	"github.com/actuallystonmai/streaming-catalog/internal/cache"
	"github.com/actuallystonmai/streaming-catalog/internal/config"
	"github.com/actuallystonmai/streaming-catalog/internal/handler"
	"github.com/actuallystonmai/streaming-catalog/internal/repository"
	"github.com/actuallystonmai/streaming-catalog/internal/router"
	"github.com/actuallystonmai/streaming-catalog/internal/service"
	"github.com/actuallystonmai/streaming-catalog/internal/telemetry"
	"github.com/actuallystonmai/streaming-catalog/internal/tmdb"
	"github.com/actuallystonmai/streaming-catalog/internal/vidking"
	"github.com/actuallystonmai/streaming-catalog/seeds"
)

var version = "dev"

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	log := logrus.NewEntry(logger).WithField("service", "streaming-catalog")

	// Load configuration
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	} else {
		log.WithField("level", cfg.LogLevel).Warn("unknown log level, using info")
	}

	// ------------ Sentry ---------------
	enabled, err := telemetry.InitSentry(cfg.SentryDSN, cfg.Env, version)
	if err != nil {
		log.WithError(err).Fatal("failed to init sentry")
	}
	if enabled {
		defer telemetry.Flush()
		log.Info("sentry enabled")
	}

	ctx := context.Background()

	// ------------ PostgreSQL ---------------
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to parse database config")
	}
	poolConfig.MaxConns = int32(cfg.DBPoolSize)
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer pool.Close()

	if err := waitForDB(ctx, pool, log); err != nil {
		log.WithError(err).Fatal("database not ready")
	}
	log.Info("connected to PostgreSQL")

	// ------------ Run Migrations ---------------
	// for migrate-down using CLI command
	if len(os.Args) > 1 && os.Args[1] == "migrate-down" {
		if err := runMigration(ctx, pool, "migrations/create_tables.down.sql"); err != nil {
			log.WithError(err).Fatal("failed to migrate down")
		}
		log.Info("migrations dropped")
		return
	}

	if err := runMigration(ctx, pool, "migrations/create_tables.up.sql"); err != nil {
		log.WithError(err).Fatal("failed to migrate up")
	}
	log.Info("migrations applied")

	repo := repository.NewRepository(pool)

	// ------------ Setup Seed Data ---------------
	if cfg.SeedDemoData {
		if err := checkSeed(ctx, repo, log); err != nil {
			log.WithError(err).Fatal("failed to seed demo data")
		}
	}

	// ------------ Redis ---------------
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.WithError(err).Fatal("failed to parse redis url")
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	redisCache := cache.NewCache(rdb)
	if err := redisCache.Ping(ctx); err != nil {
		// The service degrades to uncached provider calls.
		log.WithError(err).Warn("redis unavailable, continuing without cache")
	} else {
		log.Info("connected to Redis")
	}

	// ------------ Providers ---------------
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	catalog := tmdb.NewClient(cfg.TMDB, httpClient)
	streams := vidking.NewClient(cfg.VidKing, httpClient)

	svc := service.NewService(catalog, streams, redisCache, repo, service.Options{
		CacheTTL:       cfg.CacheTTL,
		StreamCacheTTL: cfg.StreamCacheTTL,
		Logger:         log,
	})

	var verifier *auth.Verifier
	if cfg.JWTSecret != "" {
		verifier = auth.NewVerifier(cfg.JWTSecret)
		if cfg.SeedDemoData && cfg.Env == "development" {
			if token, err := verifier.Sign(seeds.DemoUsers[0], 24*time.Hour); err == nil {
				log.WithField("user", seeds.DemoUsers[0]).WithField("token", token).Info("demo token")
			}
		}
	}

	// ---------------- Server --------------------
	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: router.Setup(handler.NewHandler(svc, log), router.Options{
			Logger:   log,
			Verifier: verifier,
			Health: map[string]router.Pinger{
				"postgres": repo,
				"redis":    redisCache,
			},
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}

func waitForDB(ctx context.Context, pool *pgxpool.Pool, log *logrus.Entry) error {
	for i := 0; i < 30; i++ {
		if err := pool.Ping(ctx); err == nil {
			return nil
		}
		log.Infof("waiting for database... (%d/30)", i+1)
		time.Sleep(1 * time.Second)
	}
	return fmt.Errorf("database connection timeout after 30s")
}

func runMigration(ctx context.Context, pool *pgxpool.Pool, path string) error {
	sql, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read migration file: %w", err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("execute migration: %w", err)
	}
	return nil
}

func checkSeed(ctx context.Context, repo *repository.Repository, log *logrus.Entry) error {
	seeded, err := seeds.Seeded(ctx, repo)
	if err != nil {
		return fmt.Errorf("check seed: %w", err)
	}
	if seeded {
		log.Info("database already seeded, skipping")
		return nil
	}
	return seeds.Setup(ctx, repo, log)
}
