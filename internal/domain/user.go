package domain

import "time"

type WatchlistItem struct {
	ID         string    `json:"id"`
	UserID     string    `json:"-"`
	Kind       Kind      `json:"kind"`
	TMDBID     int64     `json:"tmdb_id"`
	Title      string    `json:"title"`
	PosterPath string    `json:"poster_path"`
	AddedAt    time.Time `json:"added_at"`
}

type RatingItem struct {
	UserID  string    `json:"-"`
	Kind    Kind      `json:"kind"`
	TMDBID  int64     `json:"tmdb_id"`
	Title   string    `json:"title"`
	Rating  int       `json:"rating"`
	RatedAt time.Time `json:"rated_at"`
}

func (w WatchlistItem) TMDBKey() RecordKey {
	return RecordKey{Kind: w.Kind, ID: w.TMDBID}
}
