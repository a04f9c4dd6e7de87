// Package v1handler implements the v1 HTTP handlers of the biomarker
// analytics API. Handlers decode requests, delegate to the analytics engine
// and translate semantic error kinds into HTTP status codes; the error
// message is surfaced verbatim in the response body.
package v1handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"biomarker/internal/analytics"
	"biomarker/pkg/domain"
	"biomarker/pkg/logger"
	"biomarker/pkg/serrors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Deps bundles the dependencies handlers need.
type Deps struct {
	// Engine is the analytics core all operations delegate to.
	Engine analytics.Analytics
}

// Handler serves the v1 API routes.
type Handler struct {
	deps Deps
}

// New constructs a Handler with the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{deps: deps}
}

// Register mounts all v1 routes on the provided mux. The auth middleware is
// applied to mutating operations only; reads stay open.
func (h *Handler) Register(mux *http.ServeMux, auth func(http.Handler) http.Handler) {
	protected := func(fn http.HandlerFunc) http.Handler { return auth(fn) }

	mux.HandleFunc("GET /v1/users", h.ListUsers)
	mux.HandleFunc("GET /v1/users/{userId}/profile", h.Profile)

	mux.HandleFunc("GET /v1/users/{userId}/bioage", h.BioAge)
	mux.Handle("POST /v1/users/{userId}/bioage/calculate", protected(h.RecomputeBioAge))
	mux.HandleFunc("GET /v1/users/{userId}/bioage/history", h.BioAgeHistory)

	mux.HandleFunc("GET /v1/users/{userId}/ranges", h.CompareRanges)
	mux.HandleFunc("GET /v1/users/{userId}/trends/{biomarkerId}", h.Trend)

	mux.Handle("POST /v1/users/{userId}/sessions", protected(h.AddSession))
	mux.HandleFunc("GET /v1/users/{userId}/sessions/{sessionId}", h.Session)

	mux.HandleFunc("GET /v1/biomarkers", h.Biomarkers)
	mux.HandleFunc("GET /v1/biomarkers/{biomarkerId}/ranges", h.Ranges)
}

// errorResponse is the uniform error body of the v1 API.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON serializes the payload with the given status code.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// statusOf maps a semantic error kind to an HTTP status code.
func statusOf(err error) int {
	switch {
	case errors.Is(err, serrors.ErrUserNotFound),
		errors.Is(err, serrors.ErrBiomarkerNotFound),
		errors.Is(err, serrors.ErrSessionNotFound),
		errors.Is(err, serrors.ErrNoResults),
		errors.Is(err, serrors.ErrNoData):
		return http.StatusNotFound
	case errors.Is(err, serrors.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, serrors.ErrEmptyMeasurementSet),
		errors.Is(err, serrors.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, serrors.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders an engine error. Semantic errors surface their message
// verbatim; anything else is logged and hidden behind a generic 500 body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		logger.Error(r.Context(), "internal error handling request", zap.Error(err))
		writeJSON(w, status, errorResponse{Error: "internal error"})

		return
	}

	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// userIDFromPath parses the {userId} path segment.
func userIDFromPath(r *http.Request) (domain.UserID, error) {
	id, err := uuid.Parse(r.PathValue("userId"))
	if err != nil {
		return domain.UserID{}, serrors.With(serrors.ErrBadRequest, "invalid user id")
	}

	return domain.UserID(id), nil
}
