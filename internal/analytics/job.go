package analytics

import (
	"time"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
)

// RecomputeArgs contains the arguments for a biological-age recompute job
// submitted to River after session ingestion. The user/model pair is the
// unique key so a burst of ingested sessions collapses into one recompute.
type RecomputeArgs struct {
	// UserID is the user whose biological age should be recomputed.
	UserID uuid.UUID `json:"userId" river:"unique"`
	// Model is the model name to recompute under.
	Model string `json:"model" river:"unique"`

	// maxAttempts configures the maximum number of times River should retry the job.
	maxAttempts int
	// uniqueJobPeriod defines the lookback window during which a job with the
	// same arguments is considered a duplicate across the specified states.
	uniqueJobPeriod time.Duration
}

// Kind returns the River job kind used to register and dispatch the recompute worker.
func (args RecomputeArgs) Kind() string { return "RecomputeBioAgeJob" }

// InsertOpts returns the River options that control how the job is enqueued,
// including the maximum retry attempts and uniqueness constraints to prevent
// duplicate recomputes for the same user and model across job states.
func (args RecomputeArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		MaxAttempts: args.maxAttempts,
		UniqueOpts: river.UniqueOpts{
			ByArgs:   true,
			ByPeriod: args.uniqueJobPeriod,
			ByState: []rivertype.JobState{
				rivertype.JobStateAvailable,
				rivertype.JobStatePending,
				rivertype.JobStateRunning,
				rivertype.JobStateRetryable,
				rivertype.JobStateScheduled,
			},
		},
	}
}
