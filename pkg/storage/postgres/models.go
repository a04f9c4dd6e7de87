package postgres

import (
	"database/sql"
	"time"

	"biomarker/pkg/domain"

	"github.com/google/uuid"
)

type PgUser struct {
	ID   uuid.UUID `db:"id"`
	SEQN int64     `db:"seqn"`

	BirthDate     time.Time `db:"birth_date"`
	Sex           string    `db:"sex"`
	RaceEthnicity string    `db:"race_ethnicity"`
}

func (p *PgUser) ToDomain() domain.User {
	return domain.User{
		ID:            domain.UserID(p.ID),
		SEQN:          p.SEQN,
		BirthDate:     p.BirthDate,
		Sex:           domain.Sex(p.Sex),
		RaceEthnicity: p.RaceEthnicity,
	}
}

type PgBiomarker struct {
	ID          int64  `db:"id"`
	Name        string `db:"name"`
	Unit        string `db:"unit"`
	Description string `db:"description"`
}

func (p *PgBiomarker) ToDomain() domain.Biomarker {
	return domain.Biomarker{
		ID:          domain.BiomarkerID(p.ID),
		Name:        p.Name,
		Unit:        p.Unit,
		Description: p.Description,
	}
}

type PgRange struct {
	BiomarkerID int64  `db:"biomarker_id"`
	RangeType   string `db:"range_type"`

	Sex    string        `db:"sex"`
	AgeMin sql.NullInt64 `db:"age_min"`
	AgeMax sql.NullInt64 `db:"age_max"`

	MinVal float64 `db:"min_val"`
	MaxVal float64 `db:"max_val"`
}

func (p *PgRange) ToDomain() domain.ReferenceRange {
	r := domain.ReferenceRange{
		BiomarkerID: domain.BiomarkerID(p.BiomarkerID),
		Type:        domain.RangeType(p.RangeType),
		Sex:         domain.Sex(p.Sex),
		MinVal:      p.MinVal,
		MaxVal:      p.MaxVal,
	}
	if p.AgeMin.Valid {
		v := int(p.AgeMin.Int64)
		r.AgeMin = &v
	}
	if p.AgeMax.Valid {
		v := int(p.AgeMax.Int64)
		r.AgeMax = &v
	}

	return r
}

type PgSession struct {
	ID     uuid.UUID `db:"id"`
	UserID uuid.UUID `db:"user_id"`

	SessionDate time.Time `db:"session_date"`
	Fasting     bool      `db:"fasting"`

	CreatedAt time.Time `db:"created_at"`
}

// ToDomain converts the session row; measurements are attached separately.
func (p *PgSession) ToDomain() domain.Session {
	return domain.Session{
		ID:        domain.SessionID(p.ID),
		UserID:    domain.UserID(p.UserID),
		Date:      p.SessionDate,
		Fasting:   p.Fasting,
		CreatedAt: p.CreatedAt,
	}
}

func (p *PgSession) FromDomain(session domain.Session) {
	*p = PgSession{
		ID:          uuid.UUID(session.ID),
		UserID:      uuid.UUID(session.UserID),
		SessionDate: session.Date,
		Fasting:     session.Fasting,
		CreatedAt:   session.CreatedAt,
	}
}

// PgMeasurement carries a position column so that submission order survives
// the round trip through the database.
type PgMeasurement struct {
	ID        uuid.UUID `db:"id"`
	SessionID uuid.UUID `db:"session_id"`

	BiomarkerID int64   `db:"biomarker_id"`
	Value       float64 `db:"value"`
	Unit        string  `db:"unit"`

	TakenAt  time.Time `db:"taken_at"`
	Position int       `db:"position"`
}

func (p *PgMeasurement) ToDomain() domain.Measurement {
	return domain.Measurement{
		ID:          domain.MeasurementID(p.ID),
		BiomarkerID: domain.BiomarkerID(p.BiomarkerID),
		Value:       p.Value,
		Unit:        p.Unit,
		TakenAt:     p.TakenAt,
	}
}

func (p *PgMeasurement) FromDomain(sessionID domain.SessionID, position int, m domain.Measurement) {
	*p = PgMeasurement{
		ID:          uuid.UUID(m.ID),
		SessionID:   uuid.UUID(sessionID),
		BiomarkerID: int64(m.BiomarkerID),
		Value:       m.Value,
		Unit:        m.Unit,
		TakenAt:     m.TakenAt,
		Position:    position,
	}
}

type PgBioAge struct {
	ID     int64     `db:"id" goqu:"skipinsert"`
	UserID uuid.UUID `db:"user_id"`

	Model       string  `db:"model"`
	BioAgeYears float64 `db:"bio_age_years"`
	AgeGap      float64 `db:"age_gap"`

	ComputedAt time.Time `db:"computed_at"`
}

func (p *PgBioAge) ToDomain() domain.BioAgeResult {
	return domain.BioAgeResult{
		UserID:      domain.UserID(p.UserID),
		Model:       p.Model,
		BioAgeYears: p.BioAgeYears,
		AgeGap:      p.AgeGap,
		ComputedAt:  p.ComputedAt,
	}
}

func (p *PgBioAge) FromDomain(result domain.BioAgeResult) {
	*p = PgBioAge{
		UserID:      uuid.UUID(result.UserID),
		Model:       result.Model,
		BioAgeYears: result.BioAgeYears,
		AgeGap:      result.AgeGap,
		ComputedAt:  result.ComputedAt,
	}
}
