package tmdb

import (
	"context"
	"fmt"
	"strconv"

	"github.com/actuallystonmai/streaming-catalog/internal/domain"
)

type detailResponse struct {
	ID             int64          `json:"id"`
	Title          string         `json:"title"`
	Name           string         `json:"name"`
	Overview       string         `json:"overview"`
	Tagline        string         `json:"tagline"`
	Status         string         `json:"status"`
	PosterPath     string         `json:"poster_path"`
	BackdropPath   string         `json:"backdrop_path"`
	ReleaseDate    string         `json:"release_date"`
	FirstAirDate   string         `json:"first_air_date"`
	VoteAverage    float64        `json:"vote_average"`
	Genres         []domain.Genre `json:"genres"`
	Runtime        int            `json:"runtime"`
	EpisodeRunTime []int          `json:"episode_run_time"`
	Videos         struct {
		Results []struct {
			ID          string `json:"id"`
			Key         string `json:"key"`
			Name        string `json:"name"`
			Site        string `json:"site"`
			Type        string `json:"type"`
			Official    bool   `json:"official"`
			PublishedAt string `json:"published_at"`
			Size        int    `json:"size"`
		} `json:"results"`
	} `json:"videos"`
}

func (c *Client) MovieDetails(ctx context.Context, id int64) (*domain.Details, error) {
	return c.details(ctx, domain.KindMovie, id)
}

func (c *Client) TVShowDetails(ctx context.Context, id int64) (*domain.Details, error) {
	return c.details(ctx, domain.KindShow, id)
}

// Details dispatches on kind to the movie or tv details endpoint.
func (c *Client) Details(ctx context.Context, kind domain.Kind, id int64) (*domain.Details, error) {
	switch kind {
	case domain.KindMovie, domain.KindShow:
		return c.details(ctx, kind, id)
	}
	return nil, fmt.Errorf("%w: unknown kind %q", domain.ErrInvalidParameter, kind)
}

func (c *Client) details(ctx context.Context, kind domain.Kind, id int64) (*domain.Details, error) {
	segment := kind.PathSegment()
	var resp detailResponse
	err := c.get(ctx, "details_"+segment, "/"+segment+"/"+strconv.FormatInt(id, 10),
		map[string]string{"append_to_response": "videos"}, &resp)
	if err != nil {
		return nil, err
	}

	d := &domain.Details{
		Kind:         kind,
		ID:           resp.ID,
		Title:        resp.Title,
		Overview:     resp.Overview,
		Tagline:      resp.Tagline,
		Status:       resp.Status,
		PosterPath:   resp.PosterPath,
		BackdropPath: resp.BackdropPath,
		PosterURL:    c.ImageURL(resp.PosterPath, ""),
		BackdropURL:  c.BackdropURL(resp.BackdropPath, ""),
		ReleaseDate:  resp.ReleaseDate,
		VoteAverage:  resp.VoteAverage,
		Genres:       resp.Genres,
		Runtime:      resp.Runtime,
	}
	if kind == domain.KindShow {
		d.Title = resp.Name
		d.ReleaseDate = resp.FirstAirDate
		if d.Runtime == 0 && len(resp.EpisodeRunTime) > 0 {
			d.Runtime = resp.EpisodeRunTime[0]
		}
	}
	for _, v := range resp.Videos.Results {
		d.Videos = append(d.Videos, domain.Video{
			ID:          v.ID,
			Key:         v.Key,
			Name:        v.Name,
			Site:        v.Site,
			Type:        v.Type,
			Official:    v.Official,
			PublishedAt: v.PublishedAt,
			Size:        v.Size,
		})
	}
	return d, nil
}
