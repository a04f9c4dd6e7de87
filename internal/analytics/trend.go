package analytics

import (
	"context"
	"fmt"

	"biomarker/pkg/domain"
	"biomarker/pkg/serrors"
)

// Trend reconstructs a time series of one biomarker's values across the
// user's session history, exactly points entries long, oldest first.
//
// When the history holds at least points values for the biomarker, the most
// recent points of them are returned at the cadence the history exhibits.
// Shorter histories do not truncate: the series degrades to an extrapolation
// around the most recent known value, walking backward from today at
// TrendStepMonths spacing (zero when the biomarker was never measured).
//
// Fails with ErrNoData when the user is unknown or has no sessions at all.
func (a *analytics) Trend(ctx context.Context,
	userID domain.UserID,
	biomarkerID domain.BiomarkerID,
	points int) ([]domain.TrendPoint, error) {
	if points < 1 {
		return nil, serrors.With(serrors.ErrBadRequest, "point count must be positive, got %d", points)
	}

	user, err := a.storage.UserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("could not get user: %w", err)
	}
	if user == nil {
		return nil, serrors.With(serrors.ErrNoData, "no data")
	}

	sessions, err := a.storage.SessionsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("could not get sessions: %w", err)
	}
	if len(sessions) == 0 {
		return nil, serrors.With(serrors.ErrNoData, "no data")
	}

	// sessions are ordered by date ascending, so recorded points come out
	// oldest first already.
	var recorded []domain.TrendPoint
	for _, s := range sessions {
		for _, m := range s.Measurements {
			if m.BiomarkerID == biomarkerID {
				recorded = append(recorded, domain.TrendPoint{Date: s.Date, Value: m.Value})
			}
		}
	}

	if len(recorded) >= points {
		return recorded[len(recorded)-points:], nil
	}

	var last float64
	if len(recorded) > 0 {
		last = recorded[len(recorded)-1].Value
	}

	now := a.options.Now()
	out := make([]domain.TrendPoint, 0, points)
	for i := points - 1; i >= 0; i-- {
		out = append(out, domain.TrendPoint{
			Date:  now.AddDate(0, -i*a.options.TrendStepMonths, 0),
			Value: last,
		})
	}

	return out, nil
}
