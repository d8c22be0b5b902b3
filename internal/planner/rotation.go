// Package planner implements the elapsed-day rotation that maps a stored
// planner start instant onto one of a user's configured days.
package planner

import (
	"time"

	"alcyxob/fitness-planner/internal/domain"
)

// Error constants for rotation resolution.
var (
	ErrNotStarted       = RotationError("planner start date is in the future")
	ErrNoDaysConfigured = RotationError("no days configured")
)

// RotationError helps distinguish rotation errors.
type RotationError string

func (e RotationError) Error() string {
	return string(e)
}

const hoursPerDay = 24

// ElapsedDays returns the number of whole days between start and now,
// truncating toward zero. The result is negative only when now precedes
// start by at least one full day.
func ElapsedDays(start, now time.Time) int {
	return int(now.Sub(start).Hours()) / hoursPerDay
}

// ResolveToday picks today's day from orderedDays, which must be sorted by
// rotation position ascending: the position in that sequence is what the
// elapsed-day count indexes into, so a different order changes which day is
// "today" for every user. Day N after the start wraps with N mod len(days).
func ResolveToday(orderedDays []domain.Day, start, now time.Time) (domain.Day, error) {
	if len(orderedDays) == 0 {
		return domain.Day{}, ErrNoDaysConfigured
	}

	elapsed := ElapsedDays(start, now)
	if elapsed < 0 {
		return domain.Day{}, ErrNotStarted
	}

	return orderedDays[elapsed%len(orderedDays)], nil
}
