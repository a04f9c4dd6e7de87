package analytics

import (
	"math"

	"biomarker/pkg/domain"
)

// applicableRange returns the single applicable range of the wanted type for
// the given sex and age, or nil when none matches. The catalog guarantees
// that applicable ranges of one type never overlap for the same sex/age
// band, so the first match is the only match.
func applicableRange(ranges []domain.ReferenceRange,
	wanted domain.RangeType,
	sex domain.Sex,
	age int) *domain.ReferenceRange {
	for i := range ranges {
		if ranges[i].Type == wanted && ranges[i].AppliesTo(sex, age) {
			r := ranges[i]

			return &r
		}
	}

	return nil
}

// Classify compares one measurement against the biomarker's reference ranges
// for a subject of the given sex and age. It is a pure function: no store
// access, no side effects, identical inputs yield identical output.
//
// Range selection: when rangeType is RangeTypeBoth the longevity range is
// preferred if applicable, else the clinical one; an explicit type selects
// only that type. With no applicable range the status is Unknown.
//
// Status: values strictly outside [MinVal, MaxVal] are OutOfRange (the
// bounds themselves are in range). Inside the range, values within half the
// half-width of the midpoint are Optimal, the rest Normal.
//
// The result carries both the clinical and longevity ranges considered so a
// caller can render them regardless of which decided the status.
func Classify(m domain.Measurement,
	ranges []domain.ReferenceRange,
	rangeType domain.RangeType,
	sex domain.Sex,
	age int) domain.Classification {
	clinical := applicableRange(ranges, domain.RangeTypeClinical, sex, age)
	longevity := applicableRange(ranges, domain.RangeTypeLongevity, sex, age)

	var chosen *domain.ReferenceRange
	switch rangeType {
	case domain.RangeTypeClinical:
		chosen = clinical
	case domain.RangeTypeLongevity:
		chosen = longevity
	case domain.RangeTypeBoth:
		chosen = longevity
		if chosen == nil {
			chosen = clinical
		}
	}

	status := domain.RangeStatusUnknown
	if chosen != nil {
		switch {
		case m.Value < chosen.MinVal || m.Value > chosen.MaxVal:
			status = domain.RangeStatusOutOfRange
		case math.Abs(m.Value-chosen.Mid()) <= 0.5*chosen.HalfWidth():
			status = domain.RangeStatusOptimal
		default:
			status = domain.RangeStatusNormal
		}
	}

	return domain.Classification{
		Measurement:    m,
		Status:         status,
		ClinicalRange:  clinical,
		LongevityRange: longevity,
	}
}
