package postgres

import (
	"context"
	"fmt"

	"biomarker/pkg/domain"

	"github.com/doug-martin/goqu/v9"
)

const (
	biomarkersTable = "biomarkers"
	rangesTable     = "reference_ranges"
)

// Biomarkers returns the full biomarker catalog ordered by id.
func (p *PgSQL) Biomarkers(ctx context.Context) ([]domain.Biomarker, error) {
	var rows []PgBiomarker
	if err := p.Builder.From(biomarkersTable).
		Order(goqu.I("id").Asc()).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch biomarkers from pg: %w", err)
	}

	out := make([]domain.Biomarker, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}

	return out, nil
}

// BiomarkerByID returns one biomarker definition, nil when the id is unknown.
func (p *PgSQL) BiomarkerByID(ctx context.Context, id domain.BiomarkerID) (*domain.Biomarker, error) {
	var row PgBiomarker
	found, err := p.Builder.From(biomarkersTable).
		Where(goqu.I("id").Eq(int64(id))).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch biomarker by id: %w", err)
	}
	if !found {
		return nil, nil
	}

	biomarker := row.ToDomain()

	return &biomarker, nil
}

// RangesByBiomarker returns every reference range configured for a biomarker.
// Ordering is stable (type, sex, age band) so classification is deterministic
// when several ranges apply.
func (p *PgSQL) RangesByBiomarker(ctx context.Context,
	id domain.BiomarkerID) ([]domain.ReferenceRange, error) {
	var rows []PgRange
	if err := p.Builder.From(rangesTable).
		Select(
			goqu.I("biomarker_id"),
			goqu.I("range_type"),
			goqu.I("sex"),
			goqu.I("age_min"),
			goqu.I("age_max"),
			goqu.I("min_val"),
			goqu.I("max_val"),
		).
		Where(goqu.I("biomarker_id").Eq(int64(id))).
		Order(
			goqu.I("range_type").Asc(),
			goqu.I("sex").Asc(),
			goqu.I("age_min").Asc().NullsFirst(),
		).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch reference ranges from pg: %w", err)
	}

	out := make([]domain.ReferenceRange, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}

	return out, nil
}
