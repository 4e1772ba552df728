// Package models defines the core data structures for users, sessions and calendar events.
package models

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the serialized form of a calendar date.
const DateLayout = "2006-01-02"

// Storage keys shared by every store backend.
const (
	// UsersKey holds the JSON list of registered credentials.
	UsersKey = "calendarUsers"
	// SessionKey holds the identity of the logged-in user in the session store.
	SessionKey = "currentUser"
	// eventsKeyPrefix is joined with the user's email to address its event list.
	eventsKeyPrefix = "calendarEvents_"
)

var (
	// ErrValidation is returned when user input is empty or too short.
	ErrValidation = errors.New("validation failed")
	// ErrAlreadyExists is returned when registering an email that is already taken.
	ErrAlreadyExists = errors.New("user already exists")
	// ErrInvalidCredentials is returned when the email/password combination does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated is returned when an operation needs a session identity and none is set.
	ErrUnauthenticated = errors.New("not logged in")
	// ErrStoreUnavailable is returned when the persistence backend cannot be read or written.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrCorruptData is returned when a stored value cannot be decoded.
	ErrCorruptData = errors.New("corrupt stored data")
)

// CalendarEvent is a short text note attached to a calendar date.
type CalendarEvent struct {
	// Date is the local calendar day in YYYY-MM-DD form.
	Date string `json:"date"`
	// Title is the user-provided text, never empty.
	Title string `json:"title"`
}

// CalendarDay is one cell of a month grid. It is rebuilt on every render and never persisted.
type CalendarDay struct {
	Date           time.Time       `json:"-"`
	DayOfMonth     int             `json:"dayOfMonth"`
	IsCurrentMonth bool            `json:"isCurrentMonth"`
	IsToday        bool            `json:"isToday"`
	Events         []CalendarEvent `json:"events"`
}

// UserCredential is a registered account record.
type UserCredential struct {
	// Email identifies the user; matched case-sensitively.
	Email string `json:"email"`
	// Password is the value produced by the configured credential verifier.
	Password string `json:"password"`
}

// SessionIdentity is the part of a credential kept for the lifetime of a session.
type SessionIdentity struct {
	Email string `json:"email"`
}

// EventsKey returns the storage key of the event list owned by email.
func EventsKey(email string) string {
	return eventsKeyPrefix + email
}

// Midnight truncates t to the start of its calendar day in t's own location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// FormatDate serializes the local calendar day of t. The time is never converted
// to UTC first, so late-evening times keep their own date.
func FormatDate(t time.Time) string {
	return Midnight(t).Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD string as local midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	if len(s) != len(DateLayout) {
		return time.Time{}, fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrValidation, s)
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return t, nil
}
