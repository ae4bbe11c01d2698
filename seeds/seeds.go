// Package seeds fills the user tables with demo data for local development.
package seeds

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/actuallystonmai/streaming-catalog/internal/domain"
	"github.com/actuallystonmai/streaming-catalog/internal/repository"
)

// DemoUsers are the subjects seeded data belongs to. Sign a token for one of
// them to browse the user endpoints locally.
var DemoUsers = []string{"demo-1", "demo-2", "demo-3", "demo-4", "demo-5"}

type title struct {
	kind    domain.Kind
	id      int64
	name    string
	poster  string
	minutes int
}

var titles = []title{
	{domain.KindMovie, 27205, "Inception", "/oYuLEt3zVCKq57qu2F8dT7NIa6f.jpg", 148},
	{domain.KindMovie, 155, "The Dark Knight", "/qJ2tW6WMUDux911r6m7haRef0WH.jpg", 152},
	{domain.KindMovie, 603, "The Matrix", "/f89U3ADr1oiB1s9GkdPOEpXUk5H.jpg", 136},
	{domain.KindMovie, 157336, "Interstellar", "/gEU2QniE6E77NI6lCU6MxlNBvIx.jpg", 169},
	{domain.KindMovie, 438631, "Dune", "/d5NXSklXo0qyIYkgV94XAgMIckC.jpg", 155},
	{domain.KindMovie, 496243, "Parasite", "/7IiTTgloJzvGI1TAYymCfbfl3vT.jpg", 133},
	{domain.KindShow, 1399, "Game of Thrones", "/1XS1oqL89opfnbLl8WnZY1O1uJx.jpg", 60},
	{domain.KindShow, 1396, "Breaking Bad", "/ggFHVNu6YYI5L9pCfOacjizRGt.jpg", 47},
	{domain.KindShow, 66732, "Stranger Things", "/49WJfeN0moxb9IPfGn8AIqMGskD.jpg", 51},
	{domain.KindShow, 2098, "Batman: The Animated Series", "/lBomQFW1vlm1yUYMNSbFZ45R4Ox.jpg", 22},
	{domain.KindShow, 94605, "Arcane", "/fqldf2t8ztc9aiwn3k6mlX3tvRT.jpg", 40},
	{domain.KindShow, 100088, "The Last of Us", "/uKvVjHNqB5VmOrdxqAt2F7J78ED.jpg", 55},
}

// Seeded reports whether the first demo user already has a watchlist entry.
func Seeded(ctx context.Context, repo *repository.Repository) (bool, error) {
	first := titles[0]
	return repo.InWatchlist(ctx, DemoUsers[0], domain.RecordKey{Kind: first.kind, ID: first.id})
}

func Setup(ctx context.Context, repo *repository.Repository, log *logrus.Entry) error {
	rng := rand.New(rand.NewSource(42))
	log = log.WithField("component", "seed")

	for i, user := range DemoUsers {
		// Every user gets the first title so Seeded has something to find.
		picks := append([]int{0}, rng.Perm(len(titles))[:4+i%3]...)

		log.WithField("user", user).Info("inserting watchlist")
		if err := seedWatchlist(ctx, repo, user, picks); err != nil {
			return fmt.Errorf("seed watchlist: %w", err)
		}

		log.WithField("user", user).Info("inserting watch progress")
		if err := seedProgress(ctx, repo, rng, user, rng.Perm(len(titles))[:5]); err != nil {
			return fmt.Errorf("seed watch progress: %w", err)
		}

		log.WithField("user", user).Info("inserting ratings")
		if err := seedRatings(ctx, repo, rng, user, rng.Perm(len(titles))[:6]); err != nil {
			return fmt.Errorf("seed ratings: %w", err)
		}
	}

	log.Info("seeding complete")
	return nil
}

func seedWatchlist(ctx context.Context, repo *repository.Repository, user string, picks []int) error {
	for _, i := range picks {
		t := titles[i]
		_, err := repo.AddToWatchlist(ctx, domain.WatchlistItem{
			UserID:     user,
			Kind:       t.kind,
			TMDBID:     t.id,
			Title:      t.name,
			PosterPath: t.poster,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func seedProgress(ctx context.Context, repo *repository.Repository, rng *rand.Rand, user string, picks []int) error {
	for _, i := range picks {
		t := titles[i]
		duration := t.minutes * 60
		p := domain.ProgressItem{
			UserID:          user,
			Kind:            t.kind,
			TMDBID:          t.id,
			Title:           t.name,
			PosterPath:      t.poster,
			PositionSeconds: int(float64(duration) * watchedFraction(rng)),
			DurationSeconds: duration,
		}
		if t.kind == domain.KindShow {
			p.Season = rng.Intn(3) + 1
			p.Episode = rng.Intn(8) + 1
		}
		if _, err := repo.SaveProgress(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func seedRatings(ctx context.Context, repo *repository.Repository, rng *rand.Rand, user string, picks []int) error {
	for _, i := range picks {
		t := titles[i]
		_, err := repo.SaveRating(ctx, domain.RatingItem{
			UserID: user,
			Kind:   t.kind,
			TMDBID: t.id,
			Title:  t.name,
			Rating: skewedRating(rng),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// watchedFraction is skewed toward the start of a title. A few land past the
// finished threshold and stay out of continue-watching.
func watchedFraction(rng *rand.Rand) float64 {
	u := rng.Float64()
	return math.Round(math.Pow(u, 1.5)*100) / 100
}

// skewedRating leans toward the upper half of 1..10.
func skewedRating(rng *rand.Rand) int {
	r := int(math.Ceil(math.Sqrt(rng.Float64()) * 10))
	return max(1, min(r, 10))
}
