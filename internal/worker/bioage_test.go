package worker_test

import (
	"context"
	"testing"
	"time"

	"biomarker/internal/analytics"
	"biomarker/internal/worker"
	"biomarker/pkg/domain"
	"biomarker/pkg/logger"
	"biomarker/pkg/storage/memory"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Setup(logger.DevelopmentEnvironment)
	m.Run()
}

func makeJob(id int64, userID domain.UserID, model string) *river.Job[analytics.RecomputeArgs] {
	return &river.Job[analytics.RecomputeArgs]{
		JobRow: &rivertype.JobRow{ID: id},
		Args:   analytics.RecomputeArgs{UserID: uuid.UUID(userID), Model: model},
	}
}

func setupWorker(t *testing.T) (*memory.Store, analytics.Analytics, *worker.BioAgeWorker, domain.UserID) {
	t.Helper()

	store := memory.New()
	store.SeedBiomarker(domain.Biomarker{ID: 1, Name: "Fasting Glucose", Unit: "mg/dL"})
	store.SeedRange(domain.ReferenceRange{
		BiomarkerID: 1, Type: domain.RangeTypeClinical, Sex: domain.SexAny, MinVal: 70, MaxVal: 100,
	})

	userID := domain.UserID(uuid.New())
	store.SeedUser(domain.User{
		ID:        userID,
		SEQN:      93702,
		BirthDate: time.Date(1980, time.March, 15, 0, 0, 0, 0, time.UTC),
		Sex:       domain.SexMale,
	})

	engine := analytics.New(store, analytics.Options{})

	return store, engine, worker.NewBioAgeWorker(engine), userID
}

func TestBioAgeWorker_Work_AppendsResult(t *testing.T) {
	_, engine, w, userID := setupWorker(t)
	ctx := context.Background()

	_, err := engine.AddSession(ctx, userID, time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC), true,
		[]analytics.MeasurementInput{{BiomarkerID: 1, Value: 85}})
	require.NoError(t, err)

	require.NoError(t, w.Work(ctx, makeJob(1, userID, "deviation")))

	history, err := engine.BioAgeHistory(ctx, userID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, "deviation", history[0].Model)
}

func TestBioAgeWorker_Work_NoMeasurementsCancels(t *testing.T) {
	_, _, w, userID := setupWorker(t)

	err := w.Work(context.Background(), makeJob(2, userID, "deviation"))
	require.Error(t, err)
	var cancelErr *river.JobCancelError
	require.ErrorAs(t, err, &cancelErr)
}

func TestBioAgeWorker_Work_UnknownUserCancels(t *testing.T) {
	_, _, w, _ := setupWorker(t)

	err := w.Work(context.Background(), makeJob(3, domain.UserID(uuid.New()), "deviation"))
	require.Error(t, err)
	var cancelErr *river.JobCancelError
	require.ErrorAs(t, err, &cancelErr)
}

func TestBioAgeWorker_Work_UnknownModelCancels(t *testing.T) {
	_, engine, w, userID := setupWorker(t)
	ctx := context.Background()

	_, err := engine.AddSession(ctx, userID, time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC), true,
		[]analytics.MeasurementInput{{BiomarkerID: 1, Value: 85}})
	require.NoError(t, err)

	err = w.Work(ctx, makeJob(4, userID, "phrenology"))
	require.Error(t, err)
	var cancelErr *river.JobCancelError
	require.ErrorAs(t, err, &cancelErr)
}
