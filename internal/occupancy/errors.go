package occupancy

import (
	"fmt"
	"strings"

	apperrors "opsanalytics/internal/errors"
)

// ErrInvalidRecord is matched by every booking validation failure.
var ErrInvalidRecord = apperrors.NewAppError(apperrors.ErrTypeInvalidRecord, "invalid booking record", nil)

// Validation failure reasons
const (
	ReasonMissingStart = "started_at is missing"
	ReasonMissingEnd   = "closed_at is missing"
	ReasonInverted     = "closed_at is before started_at"
)

// InvalidRecordError identifies a single rejected booking.
type InvalidRecordError struct {
	// Index is the booking's position in the expanded batch.
	Index int
	// Row is the booking's source row (domain.Booking.Row).
	Row       int
	BookingID string
	Reason    string
}

func (e *InvalidRecordError) Error() string {
	if e.BookingID != "" {
		return fmt.Sprintf("invalid booking %q at row %d: %s", e.BookingID, e.Row, e.Reason)
	}
	return fmt.Sprintf("invalid booking at row %d: %s", e.Row, e.Reason)
}

func (e *InvalidRecordError) Unwrap() error {
	return ErrInvalidRecord
}

// RecordDetails implements apperrors.RecordDetailer
func (e *InvalidRecordError) RecordDetails() []apperrors.RecordDetail {
	return []apperrors.RecordDetail{e.detail()}
}

func (e *InvalidRecordError) detail() apperrors.RecordDetail {
	return apperrors.RecordDetail{Row: e.Row, ID: e.BookingID, Reason: e.Reason}
}

// InvalidRecordsError lists every booking rejected under PolicyCollect,
// in input order.
type InvalidRecordsError struct {
	Records []*InvalidRecordError
}

func (e *InvalidRecordsError) Error() string {
	if len(e.Records) == 1 {
		return e.Records[0].Error()
	}
	rows := make([]string, 0, min(len(e.Records), 5))
	for _, r := range e.Records[:min(len(e.Records), 5)] {
		rows = append(rows, fmt.Sprint(r.Row))
	}
	suffix := ""
	if len(e.Records) > 5 {
		suffix = ", ..."
	}
	return fmt.Sprintf("%d invalid bookings (rows %s%s)", len(e.Records), strings.Join(rows, ", "), suffix)
}

func (e *InvalidRecordsError) Unwrap() error {
	return ErrInvalidRecord
}

// RecordDetails implements apperrors.RecordDetailer
func (e *InvalidRecordsError) RecordDetails() []apperrors.RecordDetail {
	details := make([]apperrors.RecordDetail, len(e.Records))
	for i, r := range e.Records {
		details[i] = r.detail()
	}
	return details
}
