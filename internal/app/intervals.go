package app

import "context"

const minutesPerDay = 24 * 60

// ValidateIntervals checks a full weekly interval set before it replaces
// the stored one. Windows must be hour-aligned, span at least one hour
// and name each weekday at most once.
func ValidateIntervals(intervals []WeeklyInterval) error {
	if len(intervals) == 0 {
		return invalidField("intervals", "at least one interval is required")
	}
	seen := make(map[Weekday]bool, len(intervals))
	for _, iv := range intervals {
		if iv.WeekDay < Sunday || iv.WeekDay > Saturday {
			return invalidField("weekDay", "must be between 0 and 6")
		}
		if seen[iv.WeekDay] {
			return invalidField("weekDay", "at most one interval per weekday")
		}
		seen[iv.WeekDay] = true
		if iv.TimeStartInMinutes < 0 || iv.TimeEndInMinutes > minutesPerDay {
			return invalidField("intervals", "times must fall within a single day")
		}
		if iv.TimeStartInMinutes%60 != 0 || iv.TimeEndInMinutes%60 != 0 {
			return invalidField("intervals", "times must be aligned to whole hours")
		}
		if iv.TimeEndInMinutes < iv.TimeStartInMinutes+60 {
			return invalidField("intervals", "the end time must be at least one hour after the start time")
		}
	}
	return nil
}

// ReplaceIntervals validates and swaps the user's recurring availability.
func (a *App) ReplaceIntervals(ctx context.Context, userID string, intervals []WeeklyInterval) error {
	if err := ValidateIntervals(intervals); err != nil {
		return err
	}
	for i := range intervals {
		intervals[i].UserID = userID
	}
	return a.Intervals.Replace(ctx, userID, intervals)
}
