package occupancy

import (
	"time"

	"opsanalytics/pkg/contracts/domain"
)

// Normalize returns midnight of t's calendar day in t's location.
func Normalize(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysBetween counts calendar days from start's day to end's day,
// inclusive, reading both in start's location. It is zero or negative
// when end falls on an earlier day. Day arithmetic is done on civil
// dates so DST transitions never shorten or lengthen a day. Unix seconds
// are used instead of time.Duration, which saturates after ~292 years.
func DaysBetween(start, end time.Time) int {
	end = end.In(start.Location())
	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()
	s := time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC).Unix()
	e := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC).Unix()
	return int((e-s)/secondsPerDay) + 1
}

const secondsPerDay = 24 * 60 * 60

// DaysOccupied is the number of rows a valid booking expands into.
func DaysOccupied(b domain.Booking) int {
	if !b.HasTimestamps() || b.ClosedAt.Before(b.StartedAt) {
		return 0
	}
	return DaysBetween(b.StartedAt, b.ClosedAt)
}

// ExpandBooking appends one Occupancy per day of b to dst. b must be
// valid; invalid bookings append nothing.
func ExpandBooking(dst []domain.Occupancy, b domain.Booking) []domain.Occupancy {
	days := DaysOccupied(b)
	if days == 0 {
		return dst
	}

	loc := b.StartedAt.Location()
	y, m, d := b.StartedAt.Date()
	for offset := 0; offset < days; offset++ {
		row := domain.Occupancy{
			Booking:      cloneBooking(b),
			DateOccupied: time.Date(y, m, d+offset, 0, 0, 0, 0, loc),
		}
		dst = append(dst, row)
	}
	return dst
}
