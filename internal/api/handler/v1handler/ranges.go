package v1handler

import (
	"net/http"
	"strconv"

	"biomarker/pkg/domain"
	"biomarker/pkg/serrors"
)

// DefaultRangeType is used when a ranges request does not name a type.
const DefaultRangeType = domain.RangeTypeBoth

type classificationList struct {
	Classifications []domain.Classification `json:"classifications"`
}

type biomarkerList struct {
	Biomarkers []domain.Biomarker `json:"biomarkers"`
}

type rangeList struct {
	Ranges []domain.ReferenceRange `json:"ranges"`
}

// CompareRanges classifies the user's current measurements against the range
// type named by the "type" query parameter: clinical, longevity or both.
func (h *Handler) CompareRanges(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromPath(r)
	if err != nil {
		writeError(w, r, err)

		return
	}

	rangeType := DefaultRangeType
	if v := r.URL.Query().Get("type"); v != "" {
		rangeType = domain.RangeType(v)
	}

	classifications, err := h.deps.Engine.CompareRanges(r.Context(), userID, rangeType)
	if err != nil {
		writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, classificationList{Classifications: classifications})
}

// Biomarkers returns the biomarker catalog.
func (h *Handler) Biomarkers(w http.ResponseWriter, r *http.Request) {
	biomarkers, err := h.deps.Engine.Biomarkers(r.Context())
	if err != nil {
		writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, biomarkerList{Biomarkers: biomarkers})
}

// Ranges returns every reference range configured for one biomarker.
func (h *Handler) Ranges(w http.ResponseWriter, r *http.Request) {
	biomarkerID, err := strconv.ParseInt(r.PathValue("biomarkerId"), 10, 64)
	if err != nil {
		writeError(w, r, serrors.With(serrors.ErrBadRequest, "invalid biomarker id"))

		return
	}

	ranges, err := h.deps.Engine.Ranges(r.Context(), domain.BiomarkerID(biomarkerID))
	if err != nil {
		writeError(w, r, err)

		return
	}
	if ranges == nil {
		ranges = []domain.ReferenceRange{}
	}

	writeJSON(w, http.StatusOK, rangeList{Ranges: ranges})
}
