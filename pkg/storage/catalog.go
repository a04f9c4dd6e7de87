package storage

import (
	"context"

	"biomarker/pkg/domain"
)

// CatalogStorage defines read access to the immutable biomarker catalog:
// biomarker definitions and their clinical/longevity reference ranges.
// The catalog is provisioned out of band (migrations/seed data) and never
// written by the engine, so no mutating operations exist here.
type CatalogStorage interface {
	// Biomarkers returns all biomarker definitions ordered by id.
	Biomarkers(ctx context.Context) ([]domain.Biomarker, error)
	// BiomarkerByID fetches one biomarker definition. Returns nil when the id
	// is not in the catalog.
	BiomarkerByID(ctx context.Context, id domain.BiomarkerID) (*domain.Biomarker, error)
	// RangesByBiomarker returns every reference range configured for the given
	// biomarker, all types, sexes and age bands included. The slice is empty
	// (not an error) when no ranges are configured.
	RangesByBiomarker(ctx context.Context, id domain.BiomarkerID) ([]domain.ReferenceRange, error)
}
