package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"

	"biomarker/pkg/domain"
	"biomarker/pkg/serrors"
)

// DefaultModel is the model used when a recompute request does not name one.
const DefaultModel = "deviation"

// ModelInput is everything a biological-age model may consume: the user's
// chronological age, the current measurement set (latest value per
// biomarker) and the preferred reference range per biomarker (longevity if
// configured and applicable, else clinical; absent biomarkers are skipped).
type ModelInput struct {
	ChronologicalAge int
	Measurements     []domain.Measurement
	Ranges           map[domain.BiomarkerID]domain.ReferenceRange
}

// Model maps a measurement set and chronological age to a biological-age
// estimate in years. Implementations must be deterministic and return a
// finite value.
type Model interface {
	Name() string
	Estimate(input ModelInput) float64
}

// models is the registry of available bio-age models keyed by name.
// The registry is populated once at init and read-only afterwards.
var models = map[string]Model{ //nolint: gochecknoglobals
	DefaultModel: deviationModel{},
	"zscore":     zscoreModel{},
}

// ModelNames returns the names of all registered models, sorted.
func ModelNames() []string {
	names := make([]string, 0, len(models))
	for name := range models {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// normalizedDeviation is |value - mid| expressed in half-widths of the
// range: 0 at the midpoint, 1 at the range bounds.
func normalizedDeviation(value float64, r domain.ReferenceRange) float64 {
	hw := r.HalfWidth()
	if hw <= 0 {
		return 0
	}

	return math.Abs(value-r.Mid()) / hw
}

// deviationModel scales the chronological age by how far the user's markers
// sit from their preferred-range midpoints. A mean deviation of half a
// half-width (the optimal band edge) maps to a zero age gap; each further
// half-width adds ten years, clamped to ±15.
type deviationModel struct{}

func (deviationModel) Name() string { return DefaultModel }

func (deviationModel) Estimate(input ModelInput) float64 {
	var sum float64
	var n int
	for _, m := range input.Measurements {
		r, ok := input.Ranges[m.BiomarkerID]
		if !ok {
			continue
		}
		sum += normalizedDeviation(m.Value, r)
		n++
	}
	if n == 0 {
		return float64(input.ChronologicalAge)
	}

	gap := (sum/float64(n) - 0.5) * 10
	gap = math.Max(-15, math.Min(15, gap))

	return float64(input.ChronologicalAge) + gap
}

// zscoreModel is a conservative variant: per-marker deviations are capped at
// two half-widths before averaging so a single extreme lab value cannot
// dominate the estimate.
type zscoreModel struct{}

func (zscoreModel) Name() string { return "zscore" }

func (zscoreModel) Estimate(input ModelInput) float64 {
	var sum float64
	var n int
	for _, m := range input.Measurements {
		r, ok := input.Ranges[m.BiomarkerID]
		if !ok {
			continue
		}
		sum += math.Min(normalizedDeviation(m.Value, r), 2)
		n++
	}
	if n == 0 {
		return float64(input.ChronologicalAge)
	}

	gap := (sum/float64(n) - 0.5) * 8
	gap = math.Max(-12, math.Min(12, gap))

	return float64(input.ChronologicalAge) + gap
}

// RecomputeBioAge computes the user's biological age under the named model
// (the default model when empty) and appends the result to their history.
// It fails with ErrInsufficientData when the user has no measurements at all.
func (a *analytics) RecomputeBioAge(ctx context.Context,
	userID domain.UserID,
	model string) (*domain.BioAgeResult, error) {
	if model == "" {
		model = a.options.DefaultModel
	}
	m, ok := models[model]
	if !ok {
		return nil, serrors.With(serrors.ErrBadRequest, "unknown bio-age model %q", model)
	}

	user, err := a.user(ctx, userID)
	if err != nil {
		return nil, err
	}

	measurements, err := a.storage.LatestMeasurements(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("could not get latest measurements: %w", err)
	}
	if len(measurements) == 0 {
		return nil, serrors.With(serrors.ErrInsufficientData, "insufficient biomarker data for calculation")
	}

	now := a.options.Now()
	age := user.Age(now)

	ranges := make(map[domain.BiomarkerID]domain.ReferenceRange, len(measurements))
	for _, measurement := range measurements {
		rr, err := a.storage.RangesByBiomarker(ctx, measurement.BiomarkerID)
		if err != nil {
			return nil, fmt.Errorf("could not get ranges for biomarker %d: %w", measurement.BiomarkerID, err)
		}

		preferred := applicableRange(rr, domain.RangeTypeLongevity, user.Sex, age)
		if preferred == nil {
			preferred = applicableRange(rr, domain.RangeTypeClinical, user.Sex, age)
		}
		if preferred != nil {
			ranges[measurement.BiomarkerID] = *preferred
		}
	}

	bioAge := m.Estimate(ModelInput{
		ChronologicalAge: age,
		Measurements:     measurements,
		Ranges:           ranges,
	})
	if math.IsNaN(bioAge) || math.IsInf(bioAge, 0) {
		return nil, serrors.With(serrors.ErrInternal, "model %q produced a non-finite estimate", model)
	}

	result, err := a.storage.AppendBioAge(ctx, domain.BioAgeResult{
		UserID:      userID,
		Model:       model,
		BioAgeYears: bioAge,
		AgeGap:      bioAge - float64(age),
		ComputedAt:  now.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("could not append bio-age result: %w", err)
	}

	return result, nil
}

// BioAge returns the current (latest) result per model, ordered by model
// name. It fails with ErrNoResults when the user has no history at all.
func (a *analytics) BioAge(ctx context.Context, userID domain.UserID) ([]domain.BioAgeResult, error) {
	history, err := a.storage.BioAgeHistory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("could not get bio-age history: %w", err)
	}
	if len(history) == 0 {
		return nil, serrors.With(serrors.ErrNoResults, "no biological age results for user")
	}

	// history is ordered by ComputedAt ascending, so the last entry per model wins.
	latest := make(map[string]domain.BioAgeResult, len(history))
	for _, r := range history {
		latest[r.Model] = r
	}

	out := make([]domain.BioAgeResult, 0, len(latest))
	for _, r := range latest {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Model < out[j].Model })

	return out, nil
}

// BioAgeHistory returns the user's full history oldest first. An empty
// history is an empty slice, not an error.
func (a *analytics) BioAgeHistory(ctx context.Context, userID domain.UserID) ([]domain.BioAgeResult, error) {
	history, err := a.storage.BioAgeHistory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("could not get bio-age history: %w", err)
	}

	return history, nil
}
