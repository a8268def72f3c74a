package period

import "time"

// Periodicity controls how often a goal may be marked complete.
type Periodicity string

const (
	Daily   Periodicity = "daily"
	Weekly  Periodicity = "weekly"
	Monthly Periodicity = "monthly"
	Once    Periodicity = "once"
)

// Valid reports whether p is one of the closed set of periodicities.
func (p Periodicity) Valid() bool {
	switch p {
	case Daily, Weekly, Monthly, Once:
		return true
	}
	return false
}

// CanComplete decides whether a goal with the given periodicity may be
// completed at `now`, given its most recent completion instant. A nil
// last means the goal was never completed. All arithmetic uses the local
// calendar; callers must pass the same `now` across a single evaluation.
func CanComplete(p Periodicity, last *time.Time, now time.Time) bool {
	if last == nil {
		return true
	}

	switch p {
	case Once:
		// Single-shot goals are never re-completable.
		return false
	case Daily:
		return StartOfDay(*last).Before(StartOfDay(now))
	case Weekly:
		return StartOfWeek(*last).Before(StartOfWeek(now))
	case Monthly:
		ly, lm, _ := last.Date()
		ny, nm, _ := now.Date()
		return ly < ny || (ly == ny && lm < nm)
	default:
		return true
	}
}

// StartOfDay returns local midnight of t's calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns the most recent Sunday at 00:00 local time.
func StartOfWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// DateKey renders t's local calendar day as YYYY-MM-DD. Streak bookkeeping
// stores these keys so comparisons are exact day matches.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// SameDay reports whether a and b fall on the same local calendar day.
func SameDay(a, b time.Time) bool {
	return StartOfDay(a).Equal(StartOfDay(b))
}
