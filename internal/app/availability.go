package app

import (
	"context"
	"sort"
	"time"
)

// DayAvailability lists the candidate hour slots within the user's
// recurring window on a date, and the subset still bookable.
type DayAvailability struct {
	PossibleTimes  []int `json:"possibleTimes"`
	AvailableTimes []int `json:"availableTimes"`
}

// MonthOverview marks weekdays with no recurring availability at all and
// days of the month already booked to capacity.
type MonthOverview struct {
	BlockedWeekDays []int `json:"blockedWeekDays"`
	BlockedDates    []int `json:"blockedDates"`
}

// ResolveAvailability derives the bookable hour slots for one user on one
// UTC calendar day. Pure read, safe to call concurrently.
func (a *App) ResolveAvailability(ctx context.Context, userID string, date time.Time) (DayAvailability, error) {
	empty := DayAvailability{PossibleTimes: []int{}, AvailableTimes: []int{}}

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	now := a.timeNow()

	// Fully elapsed days never have slots.
	endOfDay := day.Add(24*time.Hour - time.Millisecond)
	if endOfDay.Before(now) {
		return empty, nil
	}

	interval, err := a.Intervals.FindForWeekday(ctx, userID, WeekdayOf(day))
	if err != nil {
		return empty, err
	}
	if interval == nil {
		return empty, nil
	}

	startHour := interval.StartHour()
	endHour := interval.EndHour()

	possible := make([]int, 0, endHour-startHour)
	for h := startHour; h < endHour; h++ {
		possible = append(possible, h)
	}

	booked, err := a.Bookings.FindInRange(ctx, userID,
		day.Add(time.Duration(startHour)*time.Hour),
		day.Add(time.Duration(endHour)*time.Hour))
	if err != nil {
		return empty, err
	}
	bookedHours := make(map[int]bool, len(booked))
	for _, b := range booked {
		bookedHours[b.Date.UTC().Hour()] = true
	}

	available := make([]int, 0, len(possible))
	for _, h := range possible {
		slotAt := day.Add(time.Duration(h) * time.Hour)
		if bookedHours[h] || !slotAt.After(now) {
			continue
		}
		available = append(available, h)
	}

	return DayAvailability{PossibleTimes: possible, AvailableTimes: available}, nil
}

// ResolveBlockedDates computes the month overview: weekdays without any
// interval, and days whose booking count has reached the weekday
// window's slot capacity.
func (a *App) ResolveBlockedDates(ctx context.Context, userID string, year int, month time.Month) (MonthOverview, error) {
	overview := MonthOverview{BlockedWeekDays: []int{}, BlockedDates: []int{}}

	availableDays, err := a.Intervals.AvailableWeekdays(ctx, userID)
	if err != nil {
		return overview, err
	}
	for wd := Sunday; wd <= Saturday; wd++ {
		if !availableDays[wd] {
			overview.BlockedWeekDays = append(overview.BlockedWeekDays, int(wd))
		}
	}

	counts, err := a.Bookings.CountPerDay(ctx, userID, year, month)
	if err != nil {
		return overview, err
	}

	// One interval per weekday, so at most seven lookups per month.
	intervals := make(map[Weekday]*WeeklyInterval, 7)
	for dayOfMonth, count := range counts {
		date := time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)
		wd := WeekdayOf(date)
		interval, ok := intervals[wd]
		if !ok {
			interval, err = a.Intervals.FindForWeekday(ctx, userID, wd)
			if err != nil {
				return overview, err
			}
			intervals[wd] = interval
		}
		// Days on weekdays with no interval are covered by
		// BlockedWeekDays already.
		if interval == nil {
			continue
		}
		if count >= interval.Capacity() {
			overview.BlockedDates = append(overview.BlockedDates, dayOfMonth)
		}
	}
	sort.Ints(overview.BlockedDates)

	return overview, nil
}
