package storage

import (
	"context"

	"biomarker/pkg/domain"
)

// UserRecord pairs a user with the number of sessions recorded for them,
// as needed by user listings.
type UserRecord struct {
	// User is the subject's identity and demographics.
	User domain.User
	// SessionCount is the number of measurement sessions on record.
	SessionCount int
}

// SubjectStorage defines access to the subject record store: user identity,
// measurement sessions and biological-age history. Sessions are written only
// via StoreSession and bio-age history only via AppendBioAge; neither is ever
// updated or deleted afterwards.
type SubjectStorage interface {
	// Users returns all users together with their session counts, ordered by SEQN.
	Users(ctx context.Context) ([]UserRecord, error)
	// UserByID fetches a user by id. Returns nil when not found.
	UserByID(ctx context.Context, id domain.UserID) (*domain.User, error)

	// SessionsByUser returns all sessions of the user, measurements included,
	// ordered by session date ascending.
	SessionsByUser(ctx context.Context, userID domain.UserID) ([]domain.Session, error)
	// SessionByID fetches one session with measurements. Ownership is part of
	// the lookup: a session belonging to a different user is reported as nil.
	SessionByID(ctx context.Context, userID domain.UserID, id domain.SessionID) (*domain.Session, error)
	// LatestMeasurements returns the most recent measurement per biomarker for
	// the user across all sessions, ordered by biomarker id. The slice is empty
	// when the user has no sessions.
	LatestMeasurements(ctx context.Context, userID domain.UserID) ([]domain.Measurement, error)
	// StoreSession inserts a session and its measurements as a unit and returns
	// the stored row. Measurement order is preserved.
	StoreSession(ctx context.Context, session domain.Session) (*domain.Session, error)

	// BioAgeHistory returns the user's bio-age results ordered by computation
	// timestamp ascending. Empty slice when none exist.
	BioAgeHistory(ctx context.Context, userID domain.UserID) ([]domain.BioAgeResult, error)
	// AppendBioAge appends one result to the user's history and returns the
	// stored row. Implementations must preserve the append-only,
	// timestamp-monotonic ordering of the history.
	AppendBioAge(ctx context.Context, result domain.BioAgeResult) (*domain.BioAgeResult, error)
}
