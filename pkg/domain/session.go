package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionID uniquely identifies a measurement session.
// It wraps uuid.UUID to provide type safety at the domain layer.
type SessionID uuid.UUID

func (id SessionID) String() string { return uuid.UUID(id).String() }

func (id SessionID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *SessionID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err //nolint: wrapcheck
	}
	*id = SessionID(u)

	return nil
}

// MeasurementID uniquely identifies a single measurement within a session.
type MeasurementID uuid.UUID

func (id MeasurementID) String() string { return uuid.UUID(id).String() }

func (id MeasurementID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *MeasurementID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err //nolint: wrapcheck
	}
	*id = MeasurementID(u)

	return nil
}

// Measurement is one biomarker value taken during a session. TakenAt is
// inherited from the owning session's date.
type Measurement struct {
	// ID is the unique identifier of the measurement.
	ID MeasurementID `json:"measurementId"`
	// BiomarkerID references the biomarker this value was measured for.
	BiomarkerID BiomarkerID `json:"biomarkerId"`

	// Value is the measured numeric value, always finite.
	Value float64 `json:"value"`
	// Unit is the display unit, redundant with the biomarker catalog entry.
	Unit string `json:"units"`

	// TakenAt is the calendar date the measurement was taken, inherited
	// from the owning session.
	TakenAt time.Time `json:"takenAt"`
}

// Session is a single measurement-taking event for a user. Sessions are
// immutable after creation; corrections are recorded as new sessions.
type Session struct {
	// ID is the unique identifier of the session.
	ID SessionID `json:"sessionId"`
	// UserID is the identifier of the user the session belongs to.
	UserID UserID `json:"userId"`

	// Date is the calendar date the session took place.
	Date time.Time `json:"sessionDate"`
	// Fasting reports whether the subject was fasting during the session.
	Fasting bool `json:"fastingStatus"`

	// Measurements are the values taken in this session, in submission order.
	Measurements []Measurement `json:"measurements"`

	// CreatedAt is the time the session was recorded.
	CreatedAt time.Time `json:"createdAt"`
}
