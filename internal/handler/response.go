package handler

import "github.com/actuallystonmai/streaming-catalog/internal/domain"

type SearchResponse struct {
	Results      []domain.Record `json:"results"`
	Query        string          `json:"query"`
	Type         string          `json:"type"`
	Page         int             `json:"page"`
	TotalResults int             `json:"totalResults"`
}

type PageResponse struct {
	Results      []domain.Record `json:"results"`
	Page         int             `json:"page"`
	TotalResults int             `json:"totalResults"`
}

type ListResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

func newList[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, Total: len(items)}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type titleRequest struct {
	Kind string `json:"kind"`
	ID   int64  `json:"id"`
}

type progressRequest struct {
	Kind            string `json:"kind"`
	ID              int64  `json:"id"`
	Season          int    `json:"season"`
	Episode         int    `json:"episode"`
	PositionSeconds int    `json:"position_seconds"`
	DurationSeconds int    `json:"duration_seconds"`
}

type ratingRequest struct {
	Kind   string `json:"kind"`
	ID     int64  `json:"id"`
	Rating int    `json:"rating"`
}
