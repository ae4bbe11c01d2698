package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/actuallystonmai/streaming-catalog/internal/domain"
)

// GET /api/home
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	feed, err := h.service.Home(r.Context())
	if err != nil {
		h.fail(w, r, err, http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, feed)
}

// GET /api/genres/{genreID}/{kind}?page=
func (h *Handler) BrowseGenre(w http.ResponseWriter, r *http.Request) {
	genreID, err := strconv.Atoi(chi.URLParam(r, "genreID"))
	if err != nil || genreID <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid genre parameter")
		return
	}
	kind, err := parseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	page, err := parsePage(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	results, err := h.service.BrowseGenre(r.Context(), kind, genreID, page)
	if err != nil {
		h.fail(w, r, err, http.StatusBadGateway)
		return
	}
	if results == nil {
		results = []domain.Record{}
	}
	writeJSON(w, http.StatusOK, PageResponse{Results: results, Page: page, TotalResults: len(results)})
}

// GET /api/titles/{kind}/{id}
func (h *Handler) Title(w http.ResponseWriter, r *http.Request) {
	key, ok := titleKey(w, r)
	if !ok {
		return
	}

	details, err := h.service.Details(r.Context(), key.Kind, key.ID)
	if err != nil {
		h.fail(w, r, err, http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// GET /api/titles/{kind}/{id}/stream?season=&episode=
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	key, ok := titleKey(w, r)
	if !ok {
		return
	}
	season, err := parseIntParam(r, "season", 0, 1, 1000)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	episode, err := parseIntParam(r, "episode", 0, 1, 10000)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	stream, err := h.service.Stream(r.Context(), key.Kind, key.ID, season, episode)
	if err != nil {
		h.fail(w, r, err, http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, stream)
}

// titleKey reads {kind} and {id}, writing a 400 when either is invalid.
func titleKey(w http.ResponseWriter, r *http.Request) (domain.RecordKey, bool) {
	kind, err := parseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return domain.RecordKey{}, false
	}
	id, err := parseID(chi.URLParam(r, "id"), "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return domain.RecordKey{}, false
	}
	return domain.RecordKey{Kind: kind, ID: id}, true
}
