package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserID uniquely identifies a user within the system.
// It is a thin wrapper around uuid.UUID to provide type safety at the domain layer.
type UserID uuid.UUID

func (id UserID) String() string { return uuid.UUID(id).String() }

func (id UserID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *UserID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err //nolint: wrapcheck
	}
	*id = UserID(u)

	return nil
}

// Sex is the biological sex recorded for a user and used to select
// applicable reference ranges.
type Sex string

const (
	// SexMale marks a user or reference range as male.
	SexMale Sex = "male"
	// SexFemale marks a user or reference range as female.
	SexFemale Sex = "female"
	// SexAny marks a reference range as sex-agnostic. It is never stored on a user.
	SexAny Sex = ""
)

// User holds a subject's identity and demographics. Chronological age is
// never stored; it is derived from BirthDate, see Age.
type User struct {
	// ID is the unique identifier of the user.
	ID UserID `json:"userId"`
	// SEQN is the survey sequence number the subject was imported under.
	SEQN int64 `json:"seqn"`

	// BirthDate is the user's date of birth. Only the calendar date is meaningful.
	BirthDate time.Time `json:"birthDate"`
	// Sex is the user's recorded biological sex.
	Sex Sex `json:"sex"`
	// RaceEthnicity is the self-reported race/ethnicity category.
	RaceEthnicity string `json:"raceEthnicity"`
}

// Age derives the user's chronological age in whole years at the given
// instant: the year difference, decremented by one when the month/day of now
// precedes the month/day of birth.
func (u User) Age(now time.Time) int {
	age := now.Year() - u.BirthDate.Year()
	if now.Month() < u.BirthDate.Month() ||
		(now.Month() == u.BirthDate.Month() && now.Day() < u.BirthDate.Day()) {
		age--
	}

	return age
}
