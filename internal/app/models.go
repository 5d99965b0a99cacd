package app

import "time"

// Weekday follows the 0=Sunday numeric convention used by both the
// interval storage and time.Weekday.
type Weekday int

const (
	Sunday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

func WeekdayOf(t time.Time) Weekday {
	return Weekday(t.Weekday())
}

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Bio       string    `json:"bio,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// WeeklyInterval is a recurring availability window on one weekday,
// expressed as minutes of day. Windows are hour-aligned and span at
// least one hour.
type WeeklyInterval struct {
	UserID             string  `json:"user_id,omitempty"`
	WeekDay            Weekday `json:"weekDay"`
	TimeStartInMinutes int     `json:"timeStartInMinutes"`
	TimeEndInMinutes   int     `json:"timeEndInMinutes"`
}

func (i WeeklyInterval) StartHour() int {
	return i.TimeStartInMinutes / 60
}

func (i WeeklyInterval) EndHour() int {
	return i.TimeEndInMinutes / 60
}

// Capacity is the number of whole hourly slots the window holds.
func (i WeeklyInterval) Capacity() int {
	return (i.TimeEndInMinutes - i.TimeStartInMinutes) / 60
}

type Booking struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Observations string    `json:"observations,omitempty"`
	Date         time.Time `json:"date"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}
