package domain

import (
	"time"
)

// Booking represents one reservation occupying a range of calendar days.
// StartedAt and ClosedAt are both inclusive; a zero value means the
// timestamp was missing in the source.
type Booking struct {
	// Row is the zero-based position of the booking in its source table.
	Row       int       `json:"-"`
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	ClosedAt  time.Time `json:"closed_at"`

	// Attributes holds every other column of the source record, verbatim.
	// For tabular sources this includes the raw id/start/end cells so the
	// original row can be written back unchanged.
	Attributes map[string]string `json:"attributes,omitempty"`
}

// HasTimestamps reports whether both range bounds are present
func (b Booking) HasTimestamps() bool {
	return !b.StartedAt.IsZero() && !b.ClosedAt.IsZero()
}

// Occupancy is one (booking, day) pair produced by expanding a booking.
type Occupancy struct {
	Booking

	// DateOccupied is midnight of the occupied day in the booking's location.
	DateOccupied time.Time `json:"date_occupied"`
}

// OccupiedDate formats DateOccupied as a calendar date
func (o Occupancy) OccupiedDate() string {
	return o.DateOccupied.Format("2006-01-02")
}
