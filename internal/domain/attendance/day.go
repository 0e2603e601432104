package attendance

import "time"

// Fixed wall-clock boundaries, expressed as offsets from local midnight.
const (
	// EarlyBefore: check-ins strictly before 08:00:00 are Early.
	EarlyBefore = 8 * time.Hour
	// LateFrom: check-ins at or after 08:15:00 are Late.
	LateFrom = 8*time.Hour + 15*time.Minute
	// AutoCheckOutAt is the forced check-out time for records left open on a past day.
	AutoCheckOutAt = 15 * time.Hour
	// autoCheckOutFloor keeps an auto check-out strictly after a late-afternoon check-in.
	autoCheckOutFloor = time.Second
)

// DayRange returns the half-open interval [startOfDay, startOfNextDay) containing
// t, evaluated in loc. The next day is computed from calendar fields so days
// with a DST shift are still covered exactly.
func DayRange(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	y, m, d := local.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	next := time.Date(y, m, d+1, 0, 0, 0, 0, loc)
	return start, next
}

// SameDay reports whether a and b fall on the same calendar date in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// AtOffset returns the wall-clock instant offset from midnight on t's date in loc.
func AtOffset(t time.Time, offset time.Duration, loc *time.Location) time.Time {
	local := t.In(loc)
	y, m, d := local.Date()
	h := int(offset / time.Hour)
	minute := int((offset % time.Hour) / time.Minute)
	sec := int((offset % time.Minute) / time.Second)
	return time.Date(y, m, d, h, minute, sec, 0, loc)
}

// ClassifyCheckIn assigns the punctuality label for a check-in at t.
//
//	t <  08:00:00          -> Early
//	08:00:00 <= t < 08:15  -> Good
//	t >= 08:15:00          -> Late
func ClassifyCheckIn(t time.Time, loc *time.Location) TimeStatus {
	early := AtOffset(t, EarlyBefore, loc)
	late := AtOffset(t, LateFrom, loc)

	switch {
	case t.Before(early):
		return TimeStatusEarly
	case !t.Before(late):
		return TimeStatusLate
	default:
		return TimeStatusGood
	}
}

// AutoCheckOutTime returns the forced check-out for a record opened at checkIn.
func AutoCheckOutTime(checkIn time.Time, loc *time.Location) time.Time {
	out := AtOffset(checkIn, AutoCheckOutAt, loc)
	if !out.After(checkIn) {
		out = checkIn.Add(autoCheckOutFloor)
	}
	return out
}
