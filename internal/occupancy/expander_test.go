package occupancy

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "opsanalytics/internal/errors"
	"opsanalytics/pkg/contracts/domain"
)

func ts(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.Parse("2006-01-02 15:04", s)
	require.NoError(t, err)
	return v
}

func booking(t *testing.T, id, start, end string) domain.Booking {
	t.Helper()
	return domain.Booking{
		ID:         id,
		StartedAt:  ts(t, start),
		ClosedAt:   ts(t, end),
		Attributes: map[string]string{"room": "R-" + id},
	}
}

func dates(rows []domain.Occupancy) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.OccupiedDate()
	}
	return out
}

func TestExpand_Scenarios(t *testing.T) {
	tests := []struct {
		name      string
		bookings  func(t *testing.T) []domain.Booking
		wantDates []string
	}{
		{
			name: "three day stay",
			bookings: func(t *testing.T) []domain.Booking {
				return []domain.Booking{booking(t, "a", "2024-01-01 10:00", "2024-01-03 09:00")}
			},
			wantDates: []string{"2024-01-01", "2024-01-02", "2024-01-03"},
		},
		{
			name: "same day",
			bookings: func(t *testing.T) []domain.Booking {
				return []domain.Booking{booking(t, "a", "2024-01-01 14:00", "2024-01-01 23:00")}
			},
			wantDates: []string{"2024-01-01"},
		},
		{
			name: "month and leap day boundary",
			bookings: func(t *testing.T) []domain.Booking {
				return []domain.Booking{booking(t, "a", "2024-02-28 22:00", "2024-03-01 01:00")}
			},
			wantDates: []string{"2024-02-28", "2024-02-29", "2024-03-01"},
		},
		{
			name: "bookings concatenated in input order",
			bookings: func(t *testing.T) []domain.Booking {
				return []domain.Booking{
					booking(t, "b", "2024-05-10 12:00", "2024-05-11 12:00"),
					booking(t, "a", "2024-01-01 12:00", "2024-01-01 13:00"),
				}
			},
			wantDates: []string{"2024-05-10", "2024-05-11", "2024-01-01"},
		},
		{
			name:      "empty input",
			bookings:  func(t *testing.T) []domain.Booking { return nil },
			wantDates: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := Expand(context.Background(), tt.bookings(t))
			require.NoError(t, err)
			require.NotNil(t, rows)
			assert.Equal(t, tt.wantDates, dates(rows))
		})
	}
}

func TestExpand_Properties(t *testing.T) {
	bookings := []domain.Booking{
		booking(t, "1", "2024-01-01 08:00", "2024-01-05 08:00"),
		booking(t, "2", "2024-01-03 23:59", "2024-01-04 00:01"),
		booking(t, "3", "2023-12-30 00:00", "2024-01-02 00:00"),
	}

	rows, err := Expand(context.Background(), bookings)
	require.NoError(t, err)

	total := 0
	for _, b := range bookings {
		total += DaysOccupied(b)
	}
	assert.Len(t, rows, total)
	assert.Equal(t, 5+2+4, total)

	idx := 0
	for _, b := range bookings {
		days := DaysOccupied(b)
		group := rows[idx : idx+days]
		idx += days

		assert.Equal(t, Normalize(b.StartedAt), group[0].DateOccupied, "first day is the start day")
		assert.Equal(t, Normalize(b.ClosedAt), group[len(group)-1].DateOccupied, "last day is the end day")
		for k, r := range group {
			assert.Equal(t, b.ID, r.ID)
			assert.Equal(t, b.StartedAt, r.StartedAt)
			assert.Equal(t, b.ClosedAt, r.ClosedAt)
			assert.Equal(t, b.Attributes, r.Attributes)
			if k > 0 {
				assert.Equal(t, group[k-1].DateOccupied.AddDate(0, 0, 1), r.DateOccupied, "days are contiguous")
			}
		}
	}
}

func TestExpand_AttributesAreIndependentCopies(t *testing.T) {
	b := booking(t, "a", "2024-01-01 10:00", "2024-01-02 10:00")

	rows, err := Expand(context.Background(), []domain.Booking{b})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	rows[0].Attributes["room"] = "changed"
	assert.Equal(t, "R-a", rows[1].Attributes["room"])
	assert.Equal(t, "R-a", b.Attributes["room"])
}

// sourceRowOffset places booking i on file row i+2, below a header row.
const sourceRowOffset = 2

func TestExpand_Policies(t *testing.T) {
	good := func(t *testing.T) domain.Booking { return booking(t, "good", "2024-01-01 10:00", "2024-01-02 10:00") }
	inverted := func(t *testing.T) domain.Booking { return booking(t, "inv", "2024-01-05 10:00", "2024-01-03 10:00") }
	missing := func(t *testing.T) domain.Booking {
		b := good(t)
		b.ID = "missing"
		b.ClosedAt = time.Time{}
		return b
	}

	tests := []struct {
		name        string
		policy      Policy
		bookings    func(t *testing.T) []domain.Booking
		wantRows    int
		wantErr     bool
		wantInvalid []apperrors.RecordDetail
	}{
		{
			name:     "fail fast rejects inverted range",
			policy:   PolicyFailFast,
			bookings: func(t *testing.T) []domain.Booking { return []domain.Booking{good(t), inverted(t)} },
			wantErr:  true,
			wantInvalid: []apperrors.RecordDetail{
				{Row: 1 + sourceRowOffset, ID: "inv", Reason: ReasonInverted},
			},
		},
		{
			name:     "fail fast reports lowest index",
			policy:   PolicyFailFast,
			bookings: func(t *testing.T) []domain.Booking { return []domain.Booking{good(t), missing(t), inverted(t)} },
			wantErr:  true,
			wantInvalid: []apperrors.RecordDetail{
				{Row: 1 + sourceRowOffset, ID: "missing", Reason: ReasonMissingEnd},
			},
		},
		{
			name:     "skip inverted yields zero rows",
			policy:   PolicySkipInverted,
			bookings: func(t *testing.T) []domain.Booking { return []domain.Booking{inverted(t), good(t)} },
			wantRows: 2,
		},
		{
			name:     "skip inverted still rejects missing timestamps",
			policy:   PolicySkipInverted,
			bookings: func(t *testing.T) []domain.Booking { return []domain.Booking{inverted(t), missing(t)} },
			wantErr:  true,
			wantInvalid: []apperrors.RecordDetail{
				{Row: 1 + sourceRowOffset, ID: "missing", Reason: ReasonMissingEnd},
			},
		},
		{
			name:     "collect expands valid and lists invalid",
			policy:   PolicyCollect,
			bookings: func(t *testing.T) []domain.Booking { return []domain.Booking{inverted(t), good(t), missing(t)} },
			wantRows: 2,
			wantErr:  true,
			wantInvalid: []apperrors.RecordDetail{
				{Row: 0 + sourceRowOffset, ID: "inv", Reason: ReasonInverted},
				{Row: 2 + sourceRowOffset, ID: "missing", Reason: ReasonMissingEnd},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bookings := tt.bookings(t)
			for i := range bookings {
				bookings[i].Row = i + sourceRowOffset
			}
			rows, err := NewExpander(WithPolicy(tt.policy)).Expand(context.Background(), bookings)
			assert.Len(t, rows, tt.wantRows)

			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidRecord)

			var detailer apperrors.RecordDetailer
			require.True(t, errors.As(err, &detailer))
			assert.Equal(t, tt.wantInvalid, detailer.RecordDetails())

			var appErr *apperrors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, apperrors.ErrTypeInvalidRecord, appErr.Type)
		})
	}
}

func TestExpand_MissingStart(t *testing.T) {
	b := booking(t, "x", "2024-01-01 10:00", "2024-01-02 10:00")
	b.StartedAt = time.Time{}

	_, err := Expand(context.Background(), []domain.Booking{b})

	var recErr *InvalidRecordError
	require.ErrorAs(t, err, &recErr)
	assert.Equal(t, ReasonMissingStart, recErr.Reason)
	assert.Equal(t, `invalid booking "x" at row 0: started_at is missing`, recErr.Error())
}

func TestExpand_ParallelMatchesSerial(t *testing.T) {
	base := ts(t, "2024-01-01 09:00")
	bookings := make([]domain.Booking, 5000)
	for i := range bookings {
		start := base.Add(time.Duration(i) * 7 * time.Hour)
		bookings[i] = domain.Booking{
			ID:         fmt.Sprintf("b-%d", i),
			StartedAt:  start,
			ClosedAt:   start.Add(time.Duration(i%5) * 20 * time.Hour),
			Attributes: map[string]string{"n": fmt.Sprint(i)},
		}
	}

	serial, err := NewExpander(WithWorkers(1)).Expand(context.Background(), bookings)
	require.NoError(t, err)

	parallel, err := NewExpander(WithWorkers(8), WithParallelThreshold(16)).Expand(context.Background(), bookings)
	require.NoError(t, err)

	assert.Equal(t, serial, parallel)
}

func TestExpand_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	bookings := []domain.Booking{booking(t, "a", "2024-01-01 10:00", "2024-01-02 10:00")}
	for _, workers := range []int{1, 4} {
		_, err := NewExpander(WithWorkers(workers), WithParallelThreshold(1)).Expand(ctx, bookings)
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestExpand_DaylightSavingTransition(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}

	// 2024-03-10 is 23 hours long in New York, 2024-11-03 is 25.
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  []string
	}{
		{
			name:  "spring forward",
			start: time.Date(2024, 3, 9, 23, 30, 0, 0, loc),
			end:   time.Date(2024, 3, 11, 0, 30, 0, 0, loc),
			want:  []string{"2024-03-09", "2024-03-10", "2024-03-11"},
		},
		{
			name:  "fall back",
			start: time.Date(2024, 11, 2, 0, 0, 0, 0, loc),
			end:   time.Date(2024, 11, 4, 23, 59, 0, 0, loc),
			want:  []string{"2024-11-02", "2024-11-03", "2024-11-04"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := Expand(context.Background(), []domain.Booking{{ID: "dst", StartedAt: tt.start, ClosedAt: tt.end}})
			require.NoError(t, err)
			assert.Equal(t, tt.want, dates(rows))
			for _, r := range rows {
				assert.Equal(t, 0, r.DateOccupied.Hour())
				assert.Equal(t, loc, r.DateOccupied.Location())
			}
		})
	}
}

func TestDaysBetween_MixedLocations(t *testing.T) {
	start := time.Date(2024, 1, 1, 22, 0, 0, 0, time.FixedZone("UTC+3", 3*3600))
	end := time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC) // 2024-01-02 02:00 at UTC+3

	assert.Equal(t, 2, DaysBetween(start, end))
}

func TestDaysBetween_LongRanges(t *testing.T) {
	tests := []struct {
		name       string
		start, end time.Time
		want       int
	}{
		{
			name:  "three centuries",
			start: time.Date(1700, 1, 1, 0, 0, 0, 0, time.UTC),
			end:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			want:  118339,
		},
		{
			name:  "open ended sentinel",
			start: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
			end:   time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC),
			want:  2913174,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysBetween(tt.start, tt.end))
		})
	}
}

func TestExpand_RangeLongerThanDuration(t *testing.T) {
	b := domain.Booking{
		ID:        "historic",
		StartedAt: time.Date(1700, 1, 1, 0, 0, 0, 0, time.UTC),
		ClosedAt:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	rows, err := Expand(context.Background(), []domain.Booking{b})
	require.NoError(t, err)
	require.Len(t, rows, 118339)
	assert.Equal(t, "1700-01-01", rows[0].OccupiedDate())
	assert.Equal(t, "2024-01-01", rows[len(rows)-1].OccupiedDate())
}

func TestValidate_ReportsSourceRow(t *testing.T) {
	b := booking(t, "late", "2024-01-05 10:00", "2024-01-03 10:00")
	b.Row = 41

	_, err := Expand(context.Background(), []domain.Booking{booking(t, "ok", "2024-01-01 10:00", "2024-01-01 12:00"), b})

	var bad *InvalidRecordError
	require.ErrorAs(t, err, &bad)
	assert.Equal(t, 1, bad.Index)
	assert.Equal(t, 41, bad.Row)
	assert.Equal(t, []apperrors.RecordDetail{{Row: 41, ID: "late", Reason: ReasonInverted}}, bad.RecordDetails())
	assert.Contains(t, bad.Error(), "row 41")
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{in: "", want: PolicyFailFast},
		{in: "fail", want: PolicyFailFast},
		{in: "Collect", want: PolicyCollect},
		{in: "skip", want: PolicySkipInverted},
		{in: "ignore", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePolicy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, mustParse(t, got.String()))
		})
	}
}

func mustParse(t *testing.T, s string) Policy {
	t.Helper()
	p, err := ParsePolicy(s)
	require.NoError(t, err)
	return p
}

func TestInvalidRecordsError_Message(t *testing.T) {
	var recs []*InvalidRecordError
	for i := 0; i < 7; i++ {
		recs = append(recs, &InvalidRecordError{Row: i, Reason: ReasonInverted})
	}

	err := &InvalidRecordsError{Records: recs}
	assert.Equal(t, "7 invalid bookings (rows 0, 1, 2, 3, 4, ...)", err.Error())
	assert.Len(t, err.RecordDetails(), 7)
}

func BenchmarkExpand(b *testing.B) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	bookings := make([]domain.Booking, 100_000)
	for i := range bookings {
		bookings[i] = domain.Booking{
			ID:         fmt.Sprint(i),
			StartedAt:  start.Add(time.Duration(i) * time.Hour),
			ClosedAt:   start.Add(time.Duration(i)*time.Hour + 72*time.Hour),
			Attributes: map[string]string{"room": "101"},
		}
	}

	for _, workers := range []int{1, 4} {
		b.Run(fmt.Sprintf("workers=%d", workers), func(b *testing.B) {
			e := NewExpander(WithWorkers(workers))
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := e.Expand(context.Background(), bookings); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
