package app

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type App struct {
	Users       UserStore
	Intervals   IntervalStore
	Bookings    BookingStore
	Credentials CredentialStore
	Calendar    *CalendarClient      // OAuth flow; nil when Google integration is not configured
	Events      CalendarEventCreator // event side effect for committed bookings
	Log         *zap.Logger

	now func() time.Time
}

func New(pool *pgxpool.Pool, cal *CalendarClient, log *zap.Logger) *App {
	a := &App{
		Users:       &PGUserStore{pool: pool},
		Intervals:   &PGIntervalStore{pool: pool},
		Bookings:    &PGBookingStore{pool: pool},
		Credentials: &PGCredentialStore{pool: pool},
		Calendar:    cal,
		Log:         log,
		now:         time.Now,
	}
	if cal != nil {
		a.Events = cal
	}
	return a
}

func (a *App) timeNow() time.Time {
	if a.now != nil {
		return a.now()
	}
	return time.Now()
}
