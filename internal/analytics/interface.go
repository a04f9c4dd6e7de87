package analytics

import (
	"context"
	"time"

	"biomarker/pkg/domain"
)

// UserSummary is one row of a user listing: the user, the chronological age
// derived at call time and the number of sessions on record.
type UserSummary struct {
	User         domain.User `json:"user"`
	Age          int         `json:"age"`
	SessionCount int         `json:"sessionCount"`
}

// Profile bundles a user with their derived age and the latest measurement
// per biomarker across all sessions.
type Profile struct {
	User         domain.User          `json:"user"`
	Age          int                  `json:"age"`
	Measurements []domain.Measurement `json:"biomarkers"`
}

// MeasurementInput is one biomarker value submitted for ingestion.
type MeasurementInput struct {
	BiomarkerID domain.BiomarkerID `json:"biomarkerId"`
	Value       float64            `json:"value"`
}

// IngestResult reports the identifiers assigned during session ingestion.
// MeasurementIDs preserve the caller's submission order.
type IngestResult struct {
	SessionID      domain.SessionID       `json:"sessionId"`
	MeasurementIDs []domain.MeasurementID `json:"measurementIds"`
}

// Analytics is the engine contract exposed to the API façade. All operations
// are synchronous computations over the injected stores: they classify
// measurements against reference ranges, compute and track biological age,
// and synthesize biomarker trends.
type Analytics interface {
	ListUsers(ctx context.Context) ([]UserSummary, error)
	Profile(ctx context.Context, userID domain.UserID) (*Profile, error)

	BioAge(ctx context.Context, userID domain.UserID) ([]domain.BioAgeResult, error)
	RecomputeBioAge(ctx context.Context, userID domain.UserID, model string) (*domain.BioAgeResult, error)
	BioAgeHistory(ctx context.Context, userID domain.UserID) ([]domain.BioAgeResult, error)

	CompareRanges(ctx context.Context,
		userID domain.UserID,
		rangeType domain.RangeType) ([]domain.Classification, error)
	Trend(ctx context.Context,
		userID domain.UserID,
		biomarkerID domain.BiomarkerID,
		points int) ([]domain.TrendPoint, error)

	Session(ctx context.Context, userID domain.UserID, sessionID domain.SessionID) (*domain.Session, error)
	Biomarkers(ctx context.Context) ([]domain.Biomarker, error)
	Ranges(ctx context.Context, biomarkerID domain.BiomarkerID) ([]domain.ReferenceRange, error)

	AddSession(ctx context.Context,
		userID domain.UserID,
		sessionDate time.Time,
		fasting bool,
		measurements []MeasurementInput) (*IngestResult, error)
}
