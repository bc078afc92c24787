package picking

import (
	"context"
	"fmt"
	"slices"
	"time"

	apperrors "opsanalytics/internal/errors"
	"opsanalytics/internal/operations"
	"opsanalytics/pkg/contracts/domain"
)

// Stage identifiers of the cleaning pipeline
const (
	StageDropRecords      = "drop_records"
	StageCleanColumns     = "clean_columns"
	StageApplyPickType    = "apply_pick_type"
	StageApplyUnitMeasure = "apply_unit_measure"
)

// ClockDate is the calendar day clock-only EVENT_TIME values are placed on.
var ClockDate = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

type orderLine struct {
	order   string
	product string
}

// DropRecords keeps the first event of every (order, ordered product)
// pair and then removes events whose pick type is excluded.
func DropRecords(events []domain.PickEvent, excluded []string) []domain.PickEvent {
	seen := make(map[orderLine]struct{}, len(events))
	out := make([]domain.PickEvent, 0, len(events))
	for _, e := range events {
		key := orderLine{e.OrderNumber, e.OrderedProductID}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if slices.Contains(excluded, e.PickType) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// CleanColumns parses EventTimeRaw with layout, derives EventHour and
// clears FinalQty. Layouts without a date are anchored on ClockDate.
func CleanColumns(events []domain.PickEvent, layout string) ([]domain.PickEvent, error) {
	out := make([]domain.PickEvent, len(events))
	for i, e := range events {
		t, err := time.Parse(layout, e.EventTimeRaw)
		if err != nil {
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("row %d: EVENT_TIME %q does not match %s", e.Row, e.EventTimeRaw, layout), err).
				WithContext("row", e.Row).
				WithContext("column", "EVENT_TIME")
		}
		if t.Year() == 0 {
			t = time.Date(ClockDate.Year(), ClockDate.Month(), ClockDate.Day(),
				t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
		}
		e.EventTime = t
		e.EventHour = t.Hour()
		e.FinalQty = nil
		out[i] = e
	}
	return out, nil
}

// ApplyPickType sets FinalQty to zero for NAG picks.
func ApplyPickType(events []domain.PickEvent) []domain.PickEvent {
	out := make([]domain.PickEvent, len(events))
	for i, e := range events {
		if e.PickType == domain.PickTypeNAG {
			e.FinalQty = qty(0)
		}
		out[i] = e
	}
	return out
}

// ApplyUnitMeasure fills FinalQty from the ordered quantity for GRAM
// lines of NORMAL picks, then from the picked quantity for EACH lines.
// The EACH rule runs last and wins over an earlier NAG zero.
func ApplyUnitMeasure(events []domain.PickEvent) []domain.PickEvent {
	out := make([]domain.PickEvent, len(events))
	for i, e := range events {
		if e.PickedUnitOfMeasure == domain.UnitGram && e.PickType == domain.PickTypeNormal {
			e.FinalQty = copyQty(e.OrderedQty)
		}
		if e.PickedUnitOfMeasure == domain.UnitEach {
			e.FinalQty = copyQty(e.Qty)
		}
		out[i] = e
	}
	return out
}

// CleaningStages returns the four cleaning stages in order.
func CleaningStages(excluded []string, layout string) *operations.Registry[[]domain.PickEvent] {
	excluded = slices.Clone(excluded)
	return operations.NewRegistry[[]domain.PickEvent]().MustRegister(
		operations.NewStage(StageDropRecords, "Drop duplicate and excluded records",
			func(_ context.Context, in []domain.PickEvent) ([]domain.PickEvent, error) {
				return DropRecords(in, excluded), nil
			}),
		operations.NewStage(StageCleanColumns, "Parse event time",
			func(_ context.Context, in []domain.PickEvent) ([]domain.PickEvent, error) {
				return CleanColumns(in, layout)
			}),
		operations.NewStage(StageApplyPickType, "Apply pick type quantities",
			func(_ context.Context, in []domain.PickEvent) ([]domain.PickEvent, error) {
				return ApplyPickType(in), nil
			}),
		operations.NewStage(StageApplyUnitMeasure, "Apply unit of measure quantities",
			func(_ context.Context, in []domain.PickEvent) ([]domain.PickEvent, error) {
				return ApplyUnitMeasure(in), nil
			}),
	)
}

func qty(v float64) *float64 {
	return &v
}

func copyQty(p *float64) *float64 {
	if p == nil {
		return nil
	}
	return qty(*p)
}
