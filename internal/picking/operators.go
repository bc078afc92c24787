package picking

import (
	"cmp"
	"math"
	"slices"

	"opsanalytics/pkg/contracts/domain"
)

// Orders-per-hour band labels, each right-closed over a width of four
var OperatorBands = []string{"0 - 4", "4 - 8", "8 - 12", "12 - 16", "16 - 20", "20 - 24"}

const operatorBandWidth = 4

type pickerHour struct {
	picker string
	hour   int
}

// OperatorHourlyLines counts the distinct orders each picker worked on in
// each event hour. Events without a picker or order are ignored. Lines are
// ordered by picker, then hour.
func OperatorHourlyLines(events []domain.PickEvent) []domain.OperatorHourLine {
	orders := make(map[pickerHour]map[string]struct{})
	for _, e := range events {
		if e.PickerID == "" || e.OrderNumber == "" {
			continue
		}
		key := pickerHour{e.PickerID, e.EventHour}
		set, ok := orders[key]
		if !ok {
			set = make(map[string]struct{})
			orders[key] = set
		}
		set[e.OrderNumber] = struct{}{}
	}

	out := make([]domain.OperatorHourLine, 0, len(orders))
	for key, set := range orders {
		out = append(out, domain.OperatorHourLine{
			PickerID:    key.picker,
			Hour:        key.hour,
			TotalOrders: len(set),
		})
	}
	slices.SortFunc(out, func(a, b domain.OperatorHourLine) int {
		if c := cmp.Compare(a.PickerID, b.PickerID); c != 0 {
			return c
		}
		return cmp.Compare(a.Hour, b.Hour)
	})
	return out
}

// OperatorBand returns the band label for an average orders-per-hour
// value, or "" when it falls outside (0, 24].
func OperatorBand(v float64) string {
	if math.IsNaN(v) || v <= 0 {
		return ""
	}
	n := int(math.Ceil(v/operatorBandWidth)) - 1
	if n >= len(OperatorBands) {
		return ""
	}
	return OperatorBands[n]
}

// AggregateOperators averages TotalOrders per picker and ranks pickers by
// that average, ascending with ties by picker id. Count is the zero-based
// rank and PercentageCumsum the running share of the rank sum; a lone
// picker gets 100.
func AggregateOperators(lines []domain.OperatorHourLine) []domain.OperatorSummary {
	type acc struct {
		sum float64
		n   int
	}
	accs := make(map[string]*acc)
	for _, l := range lines {
		a, ok := accs[l.PickerID]
		if !ok {
			a = &acc{}
			accs[l.PickerID] = a
		}
		a.sum += float64(l.TotalOrders)
		a.n++
	}

	out := make([]domain.OperatorSummary, 0, len(accs))
	for picker, a := range accs {
		out = append(out, domain.OperatorSummary{
			PickerID:             picker,
			AverageOrdersPerHour: a.sum / float64(a.n),
		})
	}
	slices.SortStableFunc(out, func(a, b domain.OperatorSummary) int {
		if c := cmp.Compare(a.AverageOrdersPerHour, b.AverageOrdersPerHour); c != 0 {
			return c
		}
		return cmp.Compare(a.PickerID, b.PickerID)
	})

	// ranks 0..n-1 sum to n(n-1)/2
	rankSum := len(out) * (len(out) - 1) / 2
	cumsum := 0
	for i := range out {
		out[i].Count = i
		cumsum += i
		if rankSum == 0 {
			out[i].PercentageCumsum = 100
		} else {
			out[i].PercentageCumsum = float64(cumsum) / float64(rankSum) * 100
		}
		out[i].OrdersPerHourBand = OperatorBand(out[i].AverageOrdersPerHour)
	}
	return out
}
