// Package analytics implements the biomarker analytics core: range
// classification, biological-age computation and trend synthesis over a
// user's measurement history. The engine is stateless per call and works
// exclusively through the storage contracts injected at construction.
package analytics

import (
	"context"
	"fmt"
	"time"

	"biomarker/internal/config"
	"biomarker/pkg/domain"
	"biomarker/pkg/serrors"
	"biomarker/pkg/storage"

	"github.com/google/uuid"
)

// Options configure the engine: which model recomputes run under by default
// and how ingestion-triggered background recomputes are enqueued.
type Options struct {
	// DefaultModel is the model name used when a recompute request does not
	// name one, and the model background recomputes run under.
	DefaultModel string
	// TrendStepMonths is the spacing of synthesized trend points when a user's
	// history is shorter than the requested point count.
	TrendStepMonths int
	// RecomputeMaxAttempts is the maximum number of attempts the background
	// worker should make for one recompute job before marking it failed.
	RecomputeMaxAttempts int
	// RecomputeUniquePeriod is the window within which ingestion-triggered
	// recompute jobs for the same user and model are collapsed into one.
	RecomputeUniquePeriod time.Duration

	// Now overrides the engine clock; nil means time.Now. Used by tests.
	Now func() time.Time
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		DefaultModel:          cfg.Analytics.DefaultModel,
		TrendStepMonths:       cfg.Analytics.TrendStepMonths,
		RecomputeMaxAttempts:  cfg.Analytics.RecomputeMaxAttempts,
		RecomputeUniquePeriod: cfg.Analytics.RecomputeUniquePeriod,
	}
}

// analytics is the concrete implementation of the Analytics interface.
// It coordinates the catalog and subject stores and enqueues background work.
type analytics struct {
	options Options
	storage storage.Storage
}

// New creates a new Analytics engine backed by the provided storage and
// configured with the given options.
func New(storage storage.Storage, options Options) Analytics {
	if options.DefaultModel == "" {
		options.DefaultModel = DefaultModel
	}
	if options.TrendStepMonths <= 0 {
		options.TrendStepMonths = 2
	}
	if options.Now == nil {
		options.Now = time.Now
	}

	return &analytics{
		options: options,
		storage: storage,
	}
}

// ListUsers returns every user with their derived chronological age and
// session count.
func (a *analytics) ListUsers(ctx context.Context) ([]UserSummary, error) {
	records, err := a.storage.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list users: %w", err)
	}

	now := a.options.Now()
	out := make([]UserSummary, 0, len(records))
	for _, rec := range records {
		out = append(out, UserSummary{
			User:         rec.User,
			Age:          rec.User.Age(now),
			SessionCount: rec.SessionCount,
		})
	}

	return out, nil
}

// user loads a user or fails with ErrUserNotFound.
func (a *analytics) user(ctx context.Context, userID domain.UserID) (*domain.User, error) {
	user, err := a.storage.UserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("could not get user: %w", err)
	}
	if user == nil {
		return nil, serrors.With(serrors.ErrUserNotFound, "user not found")
	}

	return user, nil
}

// Profile returns the user with their derived age and the latest measurement
// per biomarker across all sessions.
func (a *analytics) Profile(ctx context.Context, userID domain.UserID) (*Profile, error) {
	user, err := a.user(ctx, userID)
	if err != nil {
		return nil, err
	}

	measurements, err := a.storage.LatestMeasurements(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("could not get latest measurements: %w", err)
	}

	return &Profile{
		User:         *user,
		Age:          user.Age(a.options.Now()),
		Measurements: measurements,
	}, nil
}

// CompareRanges classifies the user's current measurement set against the
// requested range type (clinical, longevity or both).
func (a *analytics) CompareRanges(ctx context.Context,
	userID domain.UserID,
	rangeType domain.RangeType) ([]domain.Classification, error) {
	switch rangeType {
	case domain.RangeTypeClinical, domain.RangeTypeLongevity, domain.RangeTypeBoth:
	default:
		return nil, serrors.With(serrors.ErrBadRequest, "unknown range type %q", rangeType)
	}

	user, err := a.user(ctx, userID)
	if err != nil {
		return nil, err
	}

	measurements, err := a.storage.LatestMeasurements(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("could not get latest measurements: %w", err)
	}

	age := user.Age(a.options.Now())
	out := make([]domain.Classification, 0, len(measurements))
	for _, m := range measurements {
		ranges, err := a.storage.RangesByBiomarker(ctx, m.BiomarkerID)
		if err != nil {
			return nil, fmt.Errorf("could not get ranges for biomarker %d: %w", m.BiomarkerID, err)
		}

		out = append(out, Classify(m, ranges, rangeType, user.Sex, age))
	}

	return out, nil
}

// Session returns one session with its measurements. A session id belonging
// to a different user is indistinguishable from a missing one.
func (a *analytics) Session(ctx context.Context,
	userID domain.UserID,
	sessionID domain.SessionID) (*domain.Session, error) {
	session, err := a.storage.SessionByID(ctx, userID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("could not get session: %w", err)
	}
	if session == nil {
		return nil, serrors.With(serrors.ErrSessionNotFound, "session not found")
	}

	return session, nil
}

// Biomarkers returns the biomarker catalog.
func (a *analytics) Biomarkers(ctx context.Context) ([]domain.Biomarker, error) {
	biomarkers, err := a.storage.Biomarkers(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not get biomarker catalog: %w", err)
	}

	return biomarkers, nil
}

// Ranges returns every reference range configured for a biomarker. An
// unknown biomarker id fails with ErrBiomarkerNotFound; a known biomarker
// without configured ranges returns an empty slice.
func (a *analytics) Ranges(ctx context.Context,
	biomarkerID domain.BiomarkerID) ([]domain.ReferenceRange, error) {
	biomarker, err := a.storage.BiomarkerByID(ctx, biomarkerID)
	if err != nil {
		return nil, fmt.Errorf("could not get biomarker: %w", err)
	}
	if biomarker == nil {
		return nil, serrors.With(serrors.ErrBiomarkerNotFound, "biomarker not found")
	}

	ranges, err := a.storage.RangesByBiomarker(ctx, biomarkerID)
	if err != nil {
		return nil, fmt.Errorf("could not get ranges: %w", err)
	}

	return ranges, nil
}

// AddSession ingests one measurement session: it assigns fresh identifiers
// preserving submission order, persists the session, and enqueues a unique
// background recompute of the user's biological age in the same transaction.
// An empty measurement set is rejected before any store access.
func (a *analytics) AddSession(ctx context.Context,
	userID domain.UserID,
	sessionDate time.Time,
	fasting bool,
	measurements []MeasurementInput) (*IngestResult, error) {
	if len(measurements) == 0 {
		return nil, serrors.With(serrors.ErrEmptyMeasurementSet, "session must contain at least one measurement")
	}

	user, err := a.user(ctx, userID)
	if err != nil {
		return nil, err
	}

	session := domain.Session{
		ID:           domain.SessionID(uuid.New()),
		UserID:       user.ID,
		Date:         sessionDate,
		Fasting:      fasting,
		Measurements: make([]domain.Measurement, 0, len(measurements)),
		CreatedAt:    a.options.Now().UTC(),
	}
	for _, in := range measurements {
		biomarker, err := a.storage.BiomarkerByID(ctx, in.BiomarkerID)
		if err != nil {
			return nil, fmt.Errorf("could not get biomarker %d: %w", in.BiomarkerID, err)
		}
		if biomarker == nil {
			return nil, serrors.With(serrors.ErrBiomarkerNotFound, "biomarker %d not found", in.BiomarkerID)
		}

		session.Measurements = append(session.Measurements, domain.Measurement{
			ID:          domain.MeasurementID(uuid.New()),
			BiomarkerID: in.BiomarkerID,
			Value:       in.Value,
			Unit:        biomarker.Unit,
			TakenAt:     sessionDate,
		})
	}

	var stored *domain.Session
	if err := a.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		res, err := tx.StoreSession(ctx, session)
		if err != nil {
			return fmt.Errorf("could not store session: %w", err)
		}
		stored = res

		// new measurements invalidate the current bio-age estimate; recompute
		// in the background under the default model.
		if _, err := tx.AddJob(ctx, RecomputeArgs{
			UserID:          uuid.UUID(userID),
			Model:           a.options.DefaultModel,
			maxAttempts:     a.options.RecomputeMaxAttempts,
			uniqueJobPeriod: a.options.RecomputeUniquePeriod,
		}, nil); err != nil {
			return fmt.Errorf("could not add recompute job: %w", err)
		}

		return nil
	}); err != nil {
		return nil, fmt.Errorf("could not ingest session: %w", err)
	}

	result := &IngestResult{
		SessionID:      stored.ID,
		MeasurementIDs: make([]domain.MeasurementID, 0, len(stored.Measurements)),
	}
	for _, m := range stored.Measurements {
		result.MeasurementIDs = append(result.MeasurementIDs, m.ID)
	}

	return result, nil
}
