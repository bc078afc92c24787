package table

import (
	"fmt"
	"strings"
	"time"

	apperrors "opsanalytics/internal/errors"
	"opsanalytics/pkg/contracts/domain"
)

// BookingColumns names the columns holding the booking id and range.
type BookingColumns struct {
	ID    string
	Start string
	End   string
}

// BookingOptions controls how rows are mapped onto bookings.
type BookingOptions struct {
	Columns BookingColumns
	// Layouts are tried in order for every timestamp cell.
	Layouts []string
	// Location applies to timestamps without an explicit offset.
	// Nil means UTC.
	Location *time.Location
}

// Bookings maps every row onto a domain.Booking. Blank timestamp cells
// become zero times, left for the expander to reject. Every column,
// including the three named ones, is carried in Attributes verbatim.
func (t *Table) Bookings(opts BookingOptions) ([]domain.Booking, error) {
	idx, err := t.Require(opts.Columns.Start, opts.Columns.End)
	if err != nil {
		return nil, err
	}
	startIdx, endIdx := idx[0], idx[1]
	idIdx := -1
	if opts.Columns.ID != "" {
		idIdx = t.Index(opts.Columns.ID)
	}

	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	bookings := make([]domain.Booking, len(t.Rows))
	for i, row := range t.Rows {
		start, err := ParseTimestamp(row[startIdx], opts.Layouts, loc)
		if err != nil {
			return nil, cellError(i, opts.Columns.Start, err)
		}
		end, err := ParseTimestamp(row[endIdx], opts.Layouts, loc)
		if err != nil {
			return nil, cellError(i, opts.Columns.End, err)
		}

		attrs := make(map[string]string, len(t.Columns))
		for c, name := range t.Columns {
			attrs[name] = row[c]
		}

		b := domain.Booking{Row: i, StartedAt: start, ClosedAt: end, Attributes: attrs}
		if idIdx >= 0 {
			b.ID = row[idIdx]
		}
		bookings[i] = b
	}
	return bookings, nil
}

// ParseTimestamp tries each layout in turn. A blank cell is the zero time.
func ParseTimestamp(cell string, layouts []string, loc *time.Location) (time.Time, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" || strings.EqualFold(cell, "NaN") || strings.EqualFold(cell, "NaT") {
		return time.Time{}, nil
	}
	for _, layout := range layouts {
		if ts, err := time.ParseInLocation(layout, cell, loc); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", cell)
}

func cellError(row int, col string, err error) error {
	return apperrors.NewParsingError(fmt.Sprintf("row %d column %s", row, col), err).
		WithContext("row", row).
		WithContext("column", col)
}
