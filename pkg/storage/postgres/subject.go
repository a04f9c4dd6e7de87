package postgres

import (
	"context"
	"fmt"

	"biomarker/pkg/domain"
	"biomarker/pkg/storage"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

const (
	usersTable        = "users"
	sessionsTable     = "sessions"
	measurementsTable = "measurements"
	bioAgeTable       = "bioage_results"
)

type pgUserRecord struct {
	PgUser
	SessionCount int64 `db:"session_count"`
}

// Users returns all users with their session counts, ordered by SEQN.
func (p *PgSQL) Users(ctx context.Context) ([]storage.UserRecord, error) {
	counts := p.Builder.From(sessionsTable).
		Select(goqu.I("user_id"), goqu.COUNT("*").As("session_count")).
		GroupBy(goqu.I("user_id"))

	var rows []pgUserRecord
	if err := p.Builder.From(goqu.T(usersTable).As("u")).
		LeftJoin(counts.As("sc"), goqu.On(goqu.I("u.id").Eq(goqu.I("sc.user_id")))).
		Select(
			goqu.I("u.id"),
			goqu.I("u.seqn"),
			goqu.I("u.birth_date"),
			goqu.I("u.sex"),
			goqu.I("u.race_ethnicity"),
			goqu.COALESCE(goqu.I("sc.session_count"), 0).As("session_count"),
		).
		Order(goqu.I("u.seqn").Asc()).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch users from pg: %w", err)
	}

	out := make([]storage.UserRecord, 0, len(rows))
	for i := range rows {
		out = append(out, storage.UserRecord{
			User:         rows[i].ToDomain(),
			SessionCount: int(rows[i].SessionCount),
		})
	}

	return out, nil
}

// UserByID returns one user, nil when not found.
func (p *PgSQL) UserByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	var row PgUser
	found, err := p.Builder.From(usersTable).
		Where(goqu.I("id").Eq(uuid.UUID(id))).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch user by id: %w", err)
	}
	if !found {
		return nil, nil
	}

	user := row.ToDomain()

	return &user, nil
}

// measurementsBySession loads the measurements of the given sessions keyed by
// session id, each list in submission order.
func (p *PgSQL) measurementsBySession(ctx context.Context,
	sessionIDs []uuid.UUID) (map[uuid.UUID][]domain.Measurement, error) {
	if len(sessionIDs) == 0 {
		return map[uuid.UUID][]domain.Measurement{}, nil
	}

	var rows []PgMeasurement
	if err := p.Builder.From(measurementsTable).
		Where(goqu.I("session_id").In(sessionIDs)).
		Order(goqu.I("session_id").Asc(), goqu.I("position").Asc()).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch measurements from pg: %w", err)
	}

	out := make(map[uuid.UUID][]domain.Measurement, len(sessionIDs))
	for i := range rows {
		out[rows[i].SessionID] = append(out[rows[i].SessionID], rows[i].ToDomain())
	}

	return out, nil
}

// SessionsByUser returns all sessions of a user with measurements attached,
// ordered by session date ascending.
func (p *PgSQL) SessionsByUser(ctx context.Context, userID domain.UserID) ([]domain.Session, error) {
	var rows []PgSession
	if err := p.Builder.From(sessionsTable).
		Where(goqu.I("user_id").Eq(uuid.UUID(userID))).
		Order(goqu.I("session_date").Asc(), goqu.I("created_at").Asc()).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch sessions from pg: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for i := range rows {
		ids = append(ids, rows[i].ID)
	}
	measurements, err := p.measurementsBySession(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Session, 0, len(rows))
	for i := range rows {
		session := rows[i].ToDomain()
		session.Measurements = measurements[rows[i].ID]
		out = append(out, session)
	}

	return out, nil
}

// SessionByID returns one session with measurements. Ownership is part of the
// lookup: a session belonging to another user comes back nil.
func (p *PgSQL) SessionByID(ctx context.Context,
	userID domain.UserID,
	id domain.SessionID) (*domain.Session, error) {
	var row PgSession
	found, err := p.Builder.From(sessionsTable).
		Where(
			goqu.I("id").Eq(uuid.UUID(id)),
			goqu.I("user_id").Eq(uuid.UUID(userID)),
		).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch session by id: %w", err)
	}
	if !found {
		return nil, nil
	}

	measurements, err := p.measurementsBySession(ctx, []uuid.UUID{row.ID})
	if err != nil {
		return nil, err
	}

	session := row.ToDomain()
	session.Measurements = measurements[row.ID]

	return &session, nil
}

// LatestMeasurements returns the most recent measurement per biomarker across
// all of the user's sessions, ordered by biomarker id. Within a session, later
// positions win.
func (p *PgSQL) LatestMeasurements(ctx context.Context,
	userID domain.UserID) ([]domain.Measurement, error) {
	var rows []PgMeasurement
	if err := p.Builder.From(goqu.T(measurementsTable).As("m")).
		Join(goqu.T(sessionsTable).As("s"), goqu.On(goqu.I("m.session_id").Eq(goqu.I("s.id")))).
		Where(goqu.I("s.user_id").Eq(uuid.UUID(userID))).
		Select(goqu.I("m.*")).
		Distinct(goqu.I("m.biomarker_id")).
		Order(
			goqu.I("m.biomarker_id").Asc(),
			goqu.I("s.session_date").Desc(),
			goqu.I("s.created_at").Desc(),
			goqu.I("m.position").Desc(),
		).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch latest measurements from pg: %w", err)
	}

	out := make([]domain.Measurement, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}

	return out, nil
}

// StoreSession inserts a session and its measurements as a unit and returns
// the stored session with measurements in submission order.
func (p *PgSQL) StoreSession(ctx context.Context, session domain.Session) (*domain.Session, error) {
	var sessionRow PgSession
	sessionRow.FromDomain(session)

	var storedSession PgSession
	found, err := p.Builder.Insert(sessionsTable).
		Rows(sessionRow).
		Returning(&PgSession{}).
		Executor().ScanStructContext(ctx, &storedSession)
	if err != nil {
		return nil, fmt.Errorf("could not store session into pg: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("could not store session into pg: no row returned")
	}

	measurementRows := make([]PgMeasurement, len(session.Measurements))
	for i, m := range session.Measurements {
		measurementRows[i].FromDomain(session.ID, i, m)
	}

	var storedMeasurements []PgMeasurement
	if err := p.Builder.Insert(measurementsTable).
		Rows(measurementRows).
		Returning(&PgMeasurement{}).
		Executor().ScanStructsContext(ctx, &storedMeasurements); err != nil {
		return nil, fmt.Errorf("could not store measurements into pg: %w", err)
	}

	stored := storedSession.ToDomain()
	stored.Measurements = make([]domain.Measurement, 0, len(storedMeasurements))
	for i := range storedMeasurements {
		stored.Measurements = append(stored.Measurements, storedMeasurements[i].ToDomain())
	}

	return &stored, nil
}

// BioAgeHistory returns the user's append-only history ordered by computation
// timestamp ascending, insertion order breaking ties.
func (p *PgSQL) BioAgeHistory(ctx context.Context,
	userID domain.UserID) ([]domain.BioAgeResult, error) {
	var rows []PgBioAge
	if err := p.Builder.From(bioAgeTable).
		Where(goqu.I("user_id").Eq(uuid.UUID(userID))).
		Order(goqu.I("computed_at").Asc(), goqu.I("id").Asc()).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch bio-age history from pg: %w", err)
	}

	out := make([]domain.BioAgeResult, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}

	return out, nil
}

// AppendBioAge appends one result to the user's history and returns the
// stored row. Rows are insert-only; nothing ever updates or deletes them.
func (p *PgSQL) AppendBioAge(ctx context.Context,
	result domain.BioAgeResult) (*domain.BioAgeResult, error) {
	var row PgBioAge
	row.FromDomain(result)

	var stored PgBioAge
	found, err := p.Builder.Insert(bioAgeTable).
		Rows(row).
		Returning(&PgBioAge{}).
		Executor().ScanStructContext(ctx, &stored)
	if err != nil {
		return nil, fmt.Errorf("could not append bio-age result into pg: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("could not append bio-age result into pg: no row returned")
	}

	out := stored.ToDomain()

	return &out, nil
}
