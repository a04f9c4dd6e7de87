package domain

import "time"

// BioAgeResult is one biological-age computation for a user under a named
// model. A user has an append-only history of these, ordered by ComputedAt;
// the latest entry per model is the current result. Entries are never
// mutated or deleted.
type BioAgeResult struct {
	// UserID is the identifier of the user the result belongs to.
	UserID UserID `json:"userId"`
	// Model is the name of the model that produced the estimate.
	Model string `json:"modelName"`

	// BioAgeYears is the estimated biological age in years.
	BioAgeYears float64 `json:"bioAgeYears"`
	// AgeGap is the biological age minus the chronological age at computation time.
	AgeGap float64 `json:"ageGap"`

	// ComputedAt is the instant the computation ran.
	ComputedAt time.Time `json:"computedAt"`
}

// TrendPoint is one entry of a biomarker time series, ordered oldest first
// when returned in a sequence.
type TrendPoint struct {
	// Date is the calendar date of the point.
	Date time.Time `json:"date"`
	// Value is the biomarker value at that date.
	Value float64 `json:"value"`
}
