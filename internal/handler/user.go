package handler

import (
	"net/http"

	"github.com/actuallystonmai/streaming-catalog/internal/domain"
	"github.com/actuallystonmai/streaming-catalog/internal/service"
)

// GET /api/user/watchlist
func (h *Handler) Watchlist(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	items, err := h.service.Watchlist(r.Context(), user)
	if err != nil {
		h.fail(w, r, err, http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, newList(items))
}

// POST /api/user/watchlist {"kind": "movie", "id": 27205}
func (h *Handler) AddToWatchlist(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	var req titleRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	key, err := bodyKey(req.Kind, req.ID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.service.AddToWatchlist(r.Context(), user, key)
	if err != nil {
		h.fail(w, r, err, http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// DELETE /api/user/watchlist/{kind}/{id}
func (h *Handler) RemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	key, ok := titleKey(w, r)
	if !ok {
		return
	}
	if err := h.service.RemoveFromWatchlist(r.Context(), user, key); err != nil {
		h.fail(w, r, err, http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/user/continue-watching?limit=
func (h *Handler) ContinueWatching(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	limit, err := parseIntParam(r, "limit", 0, 1, 50)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := h.service.ContinueWatching(r.Context(), user, limit)
	if err != nil {
		h.fail(w, r, err, http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, newList(items))
}

// PUT /api/user/progress
func (h *Handler) SaveProgress(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	var req progressRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	key, err := bodyKey(req.Kind, req.ID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.service.SaveProgress(r.Context(), user, service.ProgressInput{
		Kind:            key.Kind,
		ID:              key.ID,
		Season:          req.Season,
		Episode:         req.Episode,
		PositionSeconds: req.PositionSeconds,
		DurationSeconds: req.DurationSeconds,
	})
	if err != nil {
		h.fail(w, r, err, http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// GET /api/user/ratings
func (h *Handler) Ratings(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	items, err := h.service.Ratings(r.Context(), user)
	if err != nil {
		h.fail(w, r, err, http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, newList(items))
}

// PUT /api/user/ratings {"kind": "tv", "id": 1399, "rating": 9}
func (h *Handler) RateTitle(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	var req ratingRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	key, err := bodyKey(req.Kind, req.ID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.service.RateTitle(r.Context(), user, key, req.Rating)
	if err != nil {
		h.fail(w, r, err, http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	user, ok := userID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing bearer token")
	}
	return user, ok
}

func bodyKey(kind string, id int64) (domain.RecordKey, error) {
	k, err := parseKind(kind)
	if err != nil {
		return domain.RecordKey{}, err
	}
	if id <= 0 {
		return domain.RecordKey{}, &paramError{name: "id"}
	}
	return domain.RecordKey{Kind: k, ID: id}, nil
}
