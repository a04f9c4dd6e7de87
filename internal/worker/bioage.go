package worker

import (
	"context"
	"errors"
	"fmt"

	"biomarker/internal/analytics"
	"biomarker/pkg/domain"
	"biomarker/pkg/logger"
	"biomarker/pkg/serrors"

	"github.com/riverqueue/river"
	"go.uber.org/zap"
)

// BioAgeWorker is a River worker that recomputes a user's biological age in
// the background after session ingestion. Each job names the user and the
// model to run; the result lands in the user's append-only history.
//
// Error handling: a user that disappeared or a user without any measurements
// cancels the job rather than retrying it, since neither condition resolves
// on its own. Everything else is returned for River's retry policy.
type BioAgeWorker struct {
	river.WorkerDefaults[analytics.RecomputeArgs]

	engine analytics.Analytics
}

// NewBioAgeWorker constructs a BioAgeWorker backed by the provided engine.
func NewBioAgeWorker(engine analytics.Analytics) *BioAgeWorker {
	return &BioAgeWorker{
		engine: engine,
	}
}

// Work executes a single recompute job.
func (w *BioAgeWorker) Work(ctx context.Context, job *river.Job[analytics.RecomputeArgs]) error {
	ctx = logger.WithFields(ctx,
		zap.Int64("jobID", job.ID),
		zap.Stringer("userID", job.Args.UserID),
		zap.String("model", job.Args.Model))

	result, err := w.engine.RecomputeBioAge(ctx, domain.UserID(job.Args.UserID), job.Args.Model)
	if err != nil {
		if errors.Is(err, serrors.ErrUserNotFound) ||
			errors.Is(err, serrors.ErrInsufficientData) ||
			errors.Is(err, serrors.ErrBadRequest) {
			return river.JobCancel(err) //nolint: wrapcheck
		}

		logger.Error(ctx, "error recomputing biological age", zap.Error(err))

		return fmt.Errorf("could not recompute biological age: %w", err)
	}

	logger.Info(ctx, "biological age recomputed",
		zap.Float64("bioAgeYears", result.BioAgeYears),
		zap.Float64("ageGap", result.AgeGap))

	return nil
}
