package analytics_test

import (
	"testing"

	"biomarker/internal/analytics"
	"biomarker/pkg/domain"

	"github.com/stretchr/testify/require"
)

func TestModelNames_SortedRegistry(t *testing.T) {
	require.Equal(t, []string{"deviation", "zscore"}, analytics.ModelNames())
}

func TestDeviationModel_FallsBackToChronologicalAge(t *testing.T) {
	estimate := analytics.ModelEstimate("deviation", analytics.ModelInput{
		ChronologicalAge: 50,
		Measurements:     []domain.Measurement{{BiomarkerID: 7, Value: 120}},
		Ranges:           nil, // no range configured for any measured biomarker
	})
	require.InDelta(t, 50, estimate, 1e-9)
}

func TestDeviationModel_ClampsExtremeDeviations(t *testing.T) {
	input := analytics.ModelInput{
		ChronologicalAge: 50,
		Measurements:     []domain.Measurement{{BiomarkerID: glucoseID, Value: 500}},
		Ranges: map[domain.BiomarkerID]domain.ReferenceRange{
			glucoseID: {BiomarkerID: glucoseID, Type: domain.RangeTypeClinical, MinVal: 70, MaxVal: 100},
		},
	}
	require.InDelta(t, 65, analytics.ModelEstimate("deviation", input), 1e-9)
}

func TestZScoreModel_CapsSingleOutlier(t *testing.T) {
	input := analytics.ModelInput{
		ChronologicalAge: 50,
		Measurements: []domain.Measurement{
			{BiomarkerID: glucoseID, Value: 85}, // on the midpoint
			{BiomarkerID: crpID, Value: 1000},   // absurd outlier, capped at 2
		},
		Ranges: map[domain.BiomarkerID]domain.ReferenceRange{
			glucoseID: {BiomarkerID: glucoseID, Type: domain.RangeTypeClinical, MinVal: 70, MaxVal: 100},
			crpID:     {BiomarkerID: crpID, Type: domain.RangeTypeClinical, MinVal: 0, MaxVal: 3},
		},
	}
	// mean of (0, 2) is 1, gap (1-0.5)*8 = 4
	require.InDelta(t, 54, analytics.ModelEstimate("zscore", input), 1e-9)
}
