package domain

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Video struct {
	ID          string `json:"id"`
	Key         string `json:"key"`
	Name        string `json:"name"`
	Site        string `json:"site"`
	Type        string `json:"type"`
	Official    bool   `json:"official"`
	PublishedAt string `json:"published_at"`
	Size        int    `json:"size"`
}

type Details struct {
	Kind         Kind    `json:"kind"`
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	Tagline      string  `json:"tagline,omitempty"`
	Status       string  `json:"status"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	PosterURL    string  `json:"poster_url,omitempty"`
	BackdropURL  string  `json:"backdrop_url,omitempty"`
	ReleaseDate  string  `json:"release_date"`
	VoteAverage  float64 `json:"vote_average"`
	Genres       []Genre `json:"genres"`
	// Runtime is minutes; for shows it is the first listed episode runtime.
	Runtime int     `json:"runtime,omitempty"`
	Videos  []Video `json:"videos,omitempty"`
}

func (d Details) Year() int {
	return yearOf(d.ReleaseDate)
}

type Stream struct {
	URL      string `json:"url"`
	EmbedURL string `json:"embed_url"`
	Quality  string `json:"quality"`
	Kind     Kind   `json:"kind"`
	Season   int    `json:"season,omitempty"`
	Episode  int    `json:"episode,omitempty"`
}

type Row struct {
	Key   string   `json:"key"`
	Title string   `json:"title"`
	Items []Record `json:"items"`
}

type HomeFeed struct {
	Featured    *Record `json:"featured,omitempty"`
	Rows        []Row   `json:"rows"`
	GeneratedAt string  `json:"generated_at"`
}

// SearchType selects which providers a search consults.
type SearchType string

const (
	SearchMovies SearchType = "movie"
	SearchShows  SearchType = "show"
	SearchAll    SearchType = "all"
)
