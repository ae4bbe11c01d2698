package handler

import (
	"net/http"

	"github.com/actuallystonmai/streaming-catalog/internal/domain"
)

// searchTypes maps the public type parameter to the provider selection.
// An absent parameter means all.
var searchTypes = map[string]domain.SearchType{
	"":      domain.SearchAll,
	"all":   domain.SearchAll,
	"movie": domain.SearchMovies,
	"tv":    domain.SearchShows,
}

// GET /api/search?q=&type=&page=
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	typeParam := r.URL.Query().Get("type")
	kind, ok := searchTypes[typeParam]
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid type parameter")
		return
	}
	if typeParam == "" {
		typeParam = "all"
	}

	page, err := parsePage(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	results, err := h.service.Search(r.Context(), query, kind, page)
	if err != nil {
		h.fail(w, r, err, http.StatusInternalServerError)
		return
	}
	if results == nil {
		results = []domain.Record{}
	}

	writeJSON(w, http.StatusOK, SearchResponse{
		Results:      results,
		Query:        query,
		Type:         typeParam,
		Page:         page,
		TotalResults: len(results),
	})
}
