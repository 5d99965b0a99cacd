package app

import (
	"context"
	"time"

	"golang.org/x/oauth2"
)

// Store interfaces sit between the resolvers and Postgres so the core
// stays a stateless function of store contents.

type UserStore interface {
	// Insert persists a new user. Returns ErrUsernameTaken when the
	// username is already claimed.
	Insert(ctx context.Context, u *User) error
	// FindByUsername returns ErrUserNotFound when no user matches.
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	UpdateBio(ctx context.Context, id, bio string) error
}

type IntervalStore interface {
	// FindForWeekday returns the user's interval on the given weekday,
	// or nil when the user has no recurring availability that day.
	FindForWeekday(ctx context.Context, userID string, day Weekday) (*WeeklyInterval, error)
	// AvailableWeekdays reports which weekdays have any interval.
	AvailableWeekdays(ctx context.Context, userID string) (map[Weekday]bool, error)
	// Replace atomically swaps the user's full interval set. At most one
	// interval per weekday survives a replace.
	Replace(ctx context.Context, userID string, intervals []WeeklyInterval) error
}

type BookingStore interface {
	// FindInRange returns bookings with from <= date <= to.
	FindInRange(ctx context.Context, userID string, from, to time.Time) ([]Booking, error)
	// FindAtHour returns the booking at an exact hour-aligned instant,
	// or nil when the slot is free.
	FindAtHour(ctx context.Context, userID string, date time.Time) (*Booking, error)
	// Insert commits a booking. The check against an existing booking at
	// the same (user, hour) and the write are atomic; a lost race
	// surfaces as ErrSlotTaken.
	Insert(ctx context.Context, b *Booking) error
	// CountPerDay aggregates booking counts per day-of-month for one
	// calendar month.
	CountPerDay(ctx context.Context, userID string, year int, month time.Month) (map[int]int, error)
	ListByUser(ctx context.Context, userID string, from, to time.Time, ranged bool) ([]Booking, error)
}

// CredentialStore keeps per-user OAuth tokens for the calendar
// integration.
type CredentialStore interface {
	Save(ctx context.Context, userID string, token *oauth2.Token) error
	// Find returns nil when the user never linked a calendar.
	Find(ctx context.Context, userID string) (*oauth2.Token, error)
}
