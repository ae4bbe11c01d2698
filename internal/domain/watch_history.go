package domain

import "time"

// ProgressItem is the last known playback position for a title.
type ProgressItem struct {
	UserID          string    `json:"-"`
	Kind            Kind      `json:"kind"`
	TMDBID          int64     `json:"tmdb_id"`
	Title           string    `json:"title"`
	PosterPath      string    `json:"poster_path"`
	Season          int       `json:"season,omitempty"`
	Episode         int       `json:"episode,omitempty"`
	PositionSeconds int       `json:"position_seconds"`
	DurationSeconds int       `json:"duration_seconds"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Finished reports whether playback reached the credits (95% of duration).
func (p ProgressItem) Finished() bool {
	if p.DurationSeconds <= 0 {
		return false
	}
	return p.PositionSeconds*100 >= p.DurationSeconds*95
}
