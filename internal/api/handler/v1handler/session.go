package v1handler

import (
	"encoding/json"
	"net/http"
	"time"

	"biomarker/internal/analytics"
	"biomarker/pkg/domain"
	"biomarker/pkg/serrors"

	"github.com/google/uuid"
)

// addSessionRequest is the ingestion payload. SessionDate accepts a plain
// calendar date (2006-01-02) or a full RFC 3339 timestamp.
type addSessionRequest struct {
	SessionDate   string                       `json:"sessionDate"`
	FastingStatus bool                         `json:"fastingStatus"`
	Measurements  []analytics.MeasurementInput `json:"measurements"`
}

func parseSessionDate(v string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, serrors.With(serrors.ErrBadRequest, "invalid session date %q", v)
	}

	return t, nil
}

// AddSession ingests one measurement session and reports the identifiers
// assigned to it.
func (h *Handler) AddSession(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromPath(r)
	if err != nil {
		writeError(w, r, err)

		return
	}

	var req addSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, serrors.With(serrors.ErrBadRequest, "invalid request body"))

		return
	}

	sessionDate, err := parseSessionDate(req.SessionDate)
	if err != nil {
		writeError(w, r, err)

		return
	}

	result, err := h.deps.Engine.AddSession(r.Context(), userID, sessionDate, req.FastingStatus, req.Measurements)
	if err != nil {
		writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// Session returns one session with its measurements.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromPath(r)
	if err != nil {
		writeError(w, r, err)

		return
	}

	sessionID, err := uuid.Parse(r.PathValue("sessionId"))
	if err != nil {
		writeError(w, r, serrors.With(serrors.ErrBadRequest, "invalid session id"))

		return
	}

	session, err := h.deps.Engine.Session(r.Context(), userID, domain.SessionID(sessionID))
	if err != nil {
		writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, session)
}
