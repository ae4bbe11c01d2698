package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/actuallystonmai/streaming-catalog/internal/auth"
	"github.com/actuallystonmai/streaming-catalog/internal/domain"
	"github.com/actuallystonmai/streaming-catalog/internal/service"
	"github.com/actuallystonmai/streaming-catalog/internal/telemetry"
)

const maxPage = 500

type Handler struct {
	service *service.Service
	log     *logrus.Entry
}

func NewHandler(svc *service.Service, log *logrus.Entry) *Handler {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Handler{service: svc, log: log.WithField("component", "handler")}
}

// write JSON response
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writes JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// AuthError is the rejection writer for the auth middleware.
func AuthError(w http.ResponseWriter, err error) {
	if errors.Is(err, auth.ErrMissingToken) {
		writeError(w, http.StatusUnauthorized, "Missing bearer token")
		return
	}
	writeError(w, http.StatusUnauthorized, "Invalid or expired token")
}

// fail maps a service error to a status code. providerStatus is the code
// used when an upstream provider failed.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, providerStatus int) {
	switch {
	case errors.Is(err, domain.ErrInvalidQuery), errors.Is(err, domain.ErrInvalidParameter):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, domain.ErrStreamNotFound):
		writeError(w, http.StatusNotFound, domain.ErrStreamNotFound.Error())
		return
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Title not found")
		return
	}

	status := http.StatusInternalServerError
	message := "An unexpected error occurred"
	switch {
	case errors.Is(err, domain.ErrProviderUnavailable):
		status = providerStatus
		message = "Catalog provider is temporarily unavailable"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		status = http.StatusServiceUnavailable
		message = "Request timed out, please try again"
	}

	h.log.WithError(err).WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"status": status,
	}).Error("request failed")
	telemetry.CaptureError(r, err, map[string]string{"status": strconv.Itoa(status)})
	writeError(w, status, message)
}

// parsePage reads an optional page query parameter in 1..500.
func parsePage(r *http.Request) (int, error) {
	return parseIntParam(r, "page", 1, 1, maxPage)
}

func parseIntParam(r *http.Request, name string, fallback, lo, hi int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || v > hi {
		return 0, &paramError{name: name}
	}
	return v, nil
}

type paramError struct {
	name string
}

func (e *paramError) Error() string {
	return "Invalid " + e.name + " parameter"
}

func (e *paramError) Unwrap() error {
	return domain.ErrInvalidParameter
}

func parseKind(raw string) (domain.Kind, error) {
	kind, err := domain.ParseKind(raw)
	if err != nil {
		return "", &paramError{name: "kind"}
	}
	return kind, nil
}

func parseID(raw, name string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &paramError{name: name}
	}
	return id, nil
}

// userID is set by the auth middleware; its absence is a routing bug.
func userID(r *http.Request) (string, bool) {
	return auth.UserID(r.Context())
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &paramError{name: "request body"}
	}
	return nil
}
