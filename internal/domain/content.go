package domain

import (
	"fmt"
	"strings"
)

// Kind discriminates movie records from show records. It is set when a record
// is fetched and never inferred from the payload shape.
type Kind string

const (
	KindMovie Kind = "movie"
	KindShow  Kind = "show"
)

// ParseKind accepts the public spellings used in URLs ("movie", "tv", "show").
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "movie", "movies":
		return KindMovie, nil
	case "tv", "show", "shows":
		return KindShow, nil
	}
	return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidParameter, s)
}

// PathSegment is the kind as it appears in TMDB endpoint paths.
func (k Kind) PathSegment() string {
	if k == KindShow {
		return "tv"
	}
	return "movie"
}

// RecordKey identifies a record across kinds. IDs are only unique within a kind.
type RecordKey struct {
	Kind Kind  `json:"kind"`
	ID   int64 `json:"id"`
}

func (k RecordKey) String() string {
	return fmt.Sprintf("%s:%d", k.Kind, k.ID)
}

type Record struct {
	Kind             Kind    `json:"kind"`
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title,omitempty"`
	Overview         string  `json:"overview"`
	PosterPath       string  `json:"poster_path"`
	BackdropPath     string  `json:"backdrop_path"`
	PosterURL        string  `json:"poster_url,omitempty"`
	BackdropURL      string  `json:"backdrop_url,omitempty"`
	ReleaseDate      string  `json:"release_date"`
	GenreIDs         []int   `json:"genre_ids"`
	OriginalLanguage string  `json:"original_language"`
	Popularity       float64 `json:"popularity"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	Adult            bool    `json:"adult,omitempty"`
}

func (r Record) Key() RecordKey {
	return RecordKey{Kind: r.Kind, ID: r.ID}
}

// Year parses the leading year of ReleaseDate, or 0 when it is missing.
func (r Record) Year() int {
	return yearOf(r.ReleaseDate)
}

func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	year := 0
	for _, c := range date[:4] {
		if c < '0' || c > '9' {
			return 0
		}
		year = year*10 + int(c-'0')
	}
	return year
}
