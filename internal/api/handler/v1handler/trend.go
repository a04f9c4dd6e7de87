package v1handler

import (
	"net/http"
	"strconv"

	"biomarker/pkg/domain"
	"biomarker/pkg/serrors"
)

// DefaultTrendPoints is the series length when the request does not name one.
const DefaultTrendPoints = 6

type trendSeries struct {
	BiomarkerID domain.BiomarkerID  `json:"biomarkerId"`
	Points      []domain.TrendPoint `json:"points"`
}

// Trend returns a time series of one biomarker's values for the user, exactly
// "points" entries long, oldest first.
func (h *Handler) Trend(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromPath(r)
	if err != nil {
		writeError(w, r, err)

		return
	}

	biomarkerID, err := strconv.ParseInt(r.PathValue("biomarkerId"), 10, 64)
	if err != nil {
		writeError(w, r, serrors.With(serrors.ErrBadRequest, "invalid biomarker id"))

		return
	}

	points := DefaultTrendPoints
	if v := r.URL.Query().Get("points"); v != "" {
		points, err = strconv.Atoi(v)
		if err != nil {
			writeError(w, r, serrors.With(serrors.ErrBadRequest, "invalid point count"))

			return
		}
	}

	series, err := h.deps.Engine.Trend(r.Context(), userID, domain.BiomarkerID(biomarkerID), points)
	if err != nil {
		writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, trendSeries{
		BiomarkerID: domain.BiomarkerID(biomarkerID),
		Points:      series,
	})
}
