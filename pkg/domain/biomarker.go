package domain

// BiomarkerID uniquely identifies a biomarker definition in the catalog.
type BiomarkerID int64

// Biomarker is an immutable catalog entity describing a measurable quantity.
type Biomarker struct {
	// ID is the unique identifier of the biomarker.
	ID BiomarkerID `json:"biomarkerId"`
	// Name is the human-readable biomarker name.
	Name string `json:"name"`
	// Unit is the unit measurements of this biomarker are expressed in.
	Unit string `json:"units"`
	// Description is a free-text description of what the biomarker captures.
	Description string `json:"description"`
}

// RangeType distinguishes the two classes of reference ranges kept in the catalog.
type RangeType string

const (
	// RangeTypeClinical marks a standard clinical reference range.
	RangeTypeClinical RangeType = "clinical"
	// RangeTypeLongevity marks a tighter, longevity-oriented reference range.
	RangeTypeLongevity RangeType = "longevity"
	// RangeTypeBoth is a query-only value requesting both range types.
	// It never appears on a stored range.
	RangeTypeBoth RangeType = "both"
)

// ReferenceRange is a (min,max) interval classifying a biomarker value,
// scoped by type, sex and age band. Multiple ranges may exist per biomarker;
// exactly the subset matching sex/age/type applies to a given measurement.
type ReferenceRange struct {
	// BiomarkerID references the biomarker this range applies to.
	BiomarkerID BiomarkerID `json:"biomarkerId"`
	// Type is the range class (clinical or longevity).
	Type RangeType `json:"rangeType"`

	// Sex restricts the range to one sex; SexAny applies to everyone.
	Sex Sex `json:"sex"`
	// AgeMin is the inclusive lower age bound; nil means unbounded below.
	AgeMin *int `json:"ageMin"`
	// AgeMax is the inclusive upper age bound; nil means unbounded above.
	AgeMax *int `json:"ageMax"`

	// MinVal is the inclusive lower value bound of the range.
	MinVal float64 `json:"minVal"`
	// MaxVal is the inclusive upper value bound of the range.
	MaxVal float64 `json:"maxVal"`
}

// AppliesTo reports whether the range is applicable to a subject of the
// given sex and chronological age. Bounds are inclusive; nil bounds and
// SexAny do not restrict.
func (r ReferenceRange) AppliesTo(sex Sex, age int) bool {
	if r.Sex != SexAny && r.Sex != sex {
		return false
	}
	if r.AgeMin != nil && age < *r.AgeMin {
		return false
	}
	if r.AgeMax != nil && age > *r.AgeMax {
		return false
	}

	return true
}

// Mid returns the midpoint of the range.
func (r ReferenceRange) Mid() float64 { return (r.MinVal + r.MaxVal) / 2 }

// HalfWidth returns half the width of the range.
func (r ReferenceRange) HalfWidth() float64 { return (r.MaxVal - r.MinVal) / 2 }

// RangeStatus is the categorical outcome of comparing a value to a chosen
// reference range.
type RangeStatus string

const (
	// RangeStatusOptimal indicates the value lies within the middle half of the range.
	RangeStatusOptimal RangeStatus = "Optimal"
	// RangeStatusNormal indicates the value is inside the range but outside its middle half.
	RangeStatusNormal RangeStatus = "Normal"
	// RangeStatusOutOfRange indicates the value falls strictly outside the range bounds.
	RangeStatusOutOfRange RangeStatus = "OutOfRange"
	// RangeStatusUnknown indicates no applicable range was found for the measurement.
	RangeStatusUnknown RangeStatus = "Unknown"
)

// Classification is the immutable result of classifying one measurement.
// ClinicalRange and LongevityRange carry the applicable ranges actually
// considered (nil when absent) so a caller can render both regardless of
// which one decided the status.
type Classification struct {
	// Measurement is the measurement that was classified.
	Measurement Measurement `json:"measurement"`
	// Status is the categorical outcome.
	Status RangeStatus `json:"status"`

	// ClinicalRange is the applicable clinical range, if any.
	ClinicalRange *ReferenceRange `json:"clinicalRange"`
	// LongevityRange is the applicable longevity range, if any.
	LongevityRange *ReferenceRange `json:"longevityRange"`
}
