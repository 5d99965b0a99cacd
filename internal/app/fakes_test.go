package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// In-memory stores backing the core tests. The booking fake enforces the
// same (user, hour) uniqueness the Postgres layer does, so concurrency
// properties hold without a database.

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*User // by id
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*User)}
}

func (s *fakeUserStore) Insert(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return ErrUsernameTaken
		}
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *fakeUserStore) FindByUsername(_ context.Context, username string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *fakeUserStore) FindByID(_ context.Context, id string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, ErrUserNotFound
}

func (s *fakeUserStore) UpdateBio(_ context.Context, id, bio string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.Bio = bio
	return nil
}

type fakeIntervalStore struct {
	mu        sync.Mutex
	intervals map[string]map[Weekday]WeeklyInterval // userID -> weekday -> interval
}

func newFakeIntervalStore() *fakeIntervalStore {
	return &fakeIntervalStore{intervals: make(map[string]map[Weekday]WeeklyInterval)}
}

func (s *fakeIntervalStore) set(userID string, iv WeeklyInterval) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.intervals[userID] == nil {
		s.intervals[userID] = make(map[Weekday]WeeklyInterval)
	}
	iv.UserID = userID
	s.intervals[userID][iv.WeekDay] = iv
}

func (s *fakeIntervalStore) FindForWeekday(_ context.Context, userID string, day Weekday) (*WeeklyInterval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if iv, ok := s.intervals[userID][day]; ok {
		return &iv, nil
	}
	return nil, nil
}

func (s *fakeIntervalStore) AvailableWeekdays(_ context.Context, userID string) (map[Weekday]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[Weekday]bool)
	for day := range s.intervals[userID] {
		out[day] = true
	}
	return out, nil
}

func (s *fakeIntervalStore) Replace(_ context.Context, userID string, intervals []WeeklyInterval) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := make(map[Weekday]WeeklyInterval, len(intervals))
	for _, iv := range intervals {
		iv.UserID = userID
		set[iv.WeekDay] = iv
	}
	s.intervals[userID] = set
	return nil
}

type fakeBookingStore struct {
	mu       sync.Mutex
	bookings map[string]Booking // userID + RFC3339 hour
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{bookings: make(map[string]Booking)}
}

func slotKey(userID string, date time.Time) string {
	return userID + "|" + date.UTC().Format(time.RFC3339)
}

func (s *fakeBookingStore) FindInRange(_ context.Context, userID string, from, to time.Time) ([]Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Booking
	for _, b := range s.bookings {
		if b.UserID == userID && !b.Date.Before(from) && !b.Date.After(to) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeBookingStore) FindAtHour(_ context.Context, userID string, date time.Time) (*Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.bookings[slotKey(userID, date)]; ok {
		return &b, nil
	}
	return nil, nil
}

func (s *fakeBookingStore) Insert(_ context.Context, b *Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := slotKey(b.UserID, b.Date)
	if _, taken := s.bookings[key]; taken {
		return ErrSlotTaken
	}
	s.bookings[key] = *b
	return nil
}

func (s *fakeBookingStore) CountPerDay(_ context.Context, userID string, year int, month time.Month) (map[int]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int]int)
	for _, b := range s.bookings {
		date := b.Date.UTC()
		if b.UserID == userID && date.Year() == year && date.Month() == month {
			out[date.Day()]++
		}
	}
	return out, nil
}

func (s *fakeBookingStore) ListByUser(_ context.Context, userID string, from, to time.Time, ranged bool) ([]Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Booking
	for _, b := range s.bookings {
		if b.UserID != userID {
			continue
		}
		if ranged && (b.Date.Before(from) || !b.Date.Before(to)) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *fakeBookingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}

type fakeCredentialStore struct {
	mu     sync.Mutex
	tokens map[string]*oauth2.Token
}

func newFakeCredentialStore() *fakeCredentialStore {
	return &fakeCredentialStore{tokens: make(map[string]*oauth2.Token)}
}

func (s *fakeCredentialStore) Save(_ context.Context, userID string, token *oauth2.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[userID] = token
	return nil
}

func (s *fakeCredentialStore) Find(_ context.Context, userID string) (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[userID], nil
}

func newTestApp(now time.Time) (*App, *fakeIntervalStore, *fakeBookingStore) {
	intervals := newFakeIntervalStore()
	bookings := newFakeBookingStore()
	a := &App{
		Users:       newFakeUserStore(),
		Intervals:   intervals,
		Bookings:    bookings,
		Credentials: newFakeCredentialStore(),
		Log:         zap.NewNop(),
		now:         func() time.Time { return now },
	}
	return a, intervals, bookings
}
