package worker

import (
	"context"
	"fmt"
	"log/slog"

	"biomarker/internal/analytics"
	"biomarker/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"go.uber.org/zap/exp/zapslog"
)

// Start wires the bio-age recompute worker into a River client and starts it.
// The client pulls jobs from the same database the storage layer writes to, so
// a job enqueued inside an ingestion transaction becomes runnable exactly when
// the session it belongs to is committed.
func Start(ctx context.Context,
	dbPool *pgxpool.Pool,
	engine analytics.Analytics,
	maxWorkers int) (*river.Client[pgx.Tx], error) {
	if maxWorkers <= 0 {
		maxWorkers = 10
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewBioAgeWorker(engine))

	riverClient, err := river.NewClient(riverpgxv5.New(dbPool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: maxWorkers},
		},
		Workers: workers,
		Logger:  slog.New(zapslog.NewHandler(logger.Get(ctx).Core())),
	})
	if err != nil {
		return nil, fmt.Errorf("could not create river queue client: %w", err)
	}

	if err := riverClient.Start(ctx); err != nil {
		return nil, fmt.Errorf("could not start river queue client: %w", err)
	}

	return riverClient, nil
}
