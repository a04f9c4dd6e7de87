package v1handler

import (
	"net/http"

	"biomarker/pkg/domain"
)

// bioAgeList carries the latest result per model.
type bioAgeList struct {
	Results []domain.BioAgeResult `json:"results"`
}

// bioAgeHistory carries the full append-only history, oldest first.
type bioAgeHistory struct {
	History []domain.BioAgeResult `json:"history"`
}

// BioAge returns the current biological-age result per model.
func (h *Handler) BioAge(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromPath(r)
	if err != nil {
		writeError(w, r, err)

		return
	}

	results, err := h.deps.Engine.BioAge(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, bioAgeList{Results: results})
}

// RecomputeBioAge computes a fresh result under the model named by the
// "model" query parameter (the configured default when absent) and appends
// it to the user's history.
func (h *Handler) RecomputeBioAge(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromPath(r)
	if err != nil {
		writeError(w, r, err)

		return
	}

	result, err := h.deps.Engine.RecomputeBioAge(r.Context(), userID, r.URL.Query().Get("model"))
	if err != nil {
		writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// BioAgeHistory returns the user's full history. An empty history is a valid
// empty list, not an error.
func (h *Handler) BioAgeHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromPath(r)
	if err != nil {
		writeError(w, r, err)

		return
	}

	history, err := h.deps.Engine.BioAgeHistory(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)

		return
	}
	if history == nil {
		history = []domain.BioAgeResult{}
	}

	writeJSON(w, http.StatusOK, bioAgeHistory{History: history})
}
