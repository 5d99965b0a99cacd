package app

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var validate = validator.New()

type ScheduleInput struct {
	Name         string
	Email        string
	Observations string
	Date         time.Time
}

// CreateScheduling validates and commits a booking for the given user.
// The stored date is truncated to the top of its hour. The conflict
// check and insert are atomic at the store layer, so under concurrent
// commits for the same hour exactly one caller wins and the rest get
// ErrSlotTaken.
func (a *App) CreateScheduling(ctx context.Context, user *User, in ScheduleInput) (*Booking, error) {
	name := strings.TrimSpace(in.Name)
	if len(name) < 3 || len(strings.Fields(name)) < 2 {
		return nil, invalidField("name", "full name with at least two words is required")
	}
	if err := validate.Var(in.Email, "required,email"); err != nil {
		return nil, invalidField("email", "must be a valid email address")
	}

	schedulingDate := in.Date.UTC().Truncate(time.Hour)
	if !schedulingDate.After(a.timeNow()) {
		return nil, ErrPastDate
	}

	existing, err := a.Bookings.FindAtHour(ctx, user.ID, schedulingDate)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrSlotTaken
	}

	booking := &Booking{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		Name:         name,
		Email:        in.Email,
		Observations: in.Observations,
		Date:         schedulingDate,
		CreatedAt:    a.timeNow().UTC(),
	}
	if err := a.Bookings.Insert(ctx, booking); err != nil {
		return nil, err
	}

	// The booking is durable at this point. A calendar failure is logged
	// and must never undo the commit.
	a.createCalendarEvent(ctx, user, booking)

	return booking, nil
}

func (a *App) createCalendarEvent(ctx context.Context, user *User, booking *Booking) {
	if a.Events == nil || a.Credentials == nil {
		return
	}
	token, err := a.Credentials.Find(ctx, user.ID)
	if err != nil {
		a.Log.Warn("failed to load calendar credential",
			zap.String("user_id", user.ID), zap.Error(err))
		return
	}
	if token == nil {
		return
	}
	if err := a.Events.CreateBookingEvent(ctx, token, booking); err != nil {
		a.Log.Warn("calendar event creation failed",
			zap.String("user_id", user.ID),
			zap.String("booking_id", booking.ID),
			zap.Error(err))
	}
}
