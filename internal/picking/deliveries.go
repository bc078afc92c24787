package picking

import (
	"cmp"
	"math"
	"slices"
	"time"

	"opsanalytics/pkg/contracts/domain"
)

// Pack-time band labels, in band order
var PackTimeBands = []string{
	"< 1 hour", "1-2 hours", "2-3 hours", "3-4 hours",
	"4-5 hours", "5-6 hours", "6-7 hours", "> 7 hours",
}

type deliveryAcc struct {
	d        domain.Delivery
	pickers  map[string]struct{}
	products map[string]struct{}
}

// BuildDeliveries groups cleaned events by order number. Events without
// an order number are ignored. The result is sorted by packing time,
// ties by order number.
func BuildDeliveries(events []domain.PickEvent) []domain.Delivery {
	accs := make(map[string]*deliveryAcc)
	order := make([]string, 0)

	for _, e := range events {
		if e.OrderNumber == "" {
			continue
		}
		acc, ok := accs[e.OrderNumber]
		if !ok {
			acc = &deliveryAcc{
				d: domain.Delivery{
					OrderNumber: e.OrderNumber,
					MaxTime:     e.EventTime,
					MinTime:     e.EventTime,
				},
				pickers:  make(map[string]struct{}),
				products: make(map[string]struct{}),
			}
			accs[e.OrderNumber] = acc
			order = append(order, e.OrderNumber)
		}

		if e.EventTime.After(acc.d.MaxTime) {
			acc.d.MaxTime = e.EventTime
		}
		if e.EventTime.Before(acc.d.MinTime) {
			acc.d.MinTime = e.EventTime
		}
		if e.PickerID != "" {
			acc.pickers[e.PickerID] = struct{}{}
		}
		if e.PickedProductID != "" {
			acc.products[e.PickedProductID] = struct{}{}
		}
		if e.FinalQty != nil && !math.IsNaN(*e.FinalQty) {
			acc.d.UnitsCount += *e.FinalQty
		}
	}

	out := make([]domain.Delivery, 0, len(order))
	for _, id := range order {
		acc := accs[id]
		d := acc.d
		d.OperatorCount = len(acc.pickers)
		d.ProductCount = len(acc.products)
		d.PackingTime = d.MaxTime.Sub(d.MinTime)
		d.PackingHours = d.PackingTime.Seconds() / time.Hour.Seconds()
		out = append(out, d)
	}

	slices.SortStableFunc(out, func(a, b domain.Delivery) int {
		if c := cmp.Compare(a.PackingHours, b.PackingHours); c != 0 {
			return c
		}
		return cmp.Compare(a.OrderNumber, b.OrderNumber)
	})
	return out
}

// PackTimeBand returns the band label for a packing time in hours.
// The first band is closed at zero; the others are right-closed.
func PackTimeBand(hours float64) string {
	if math.IsNaN(hours) || hours < 0 {
		return ""
	}
	if hours <= 1 {
		return PackTimeBands[0]
	}
	n := int(math.Ceil(hours)) - 1
	if n >= len(PackTimeBands)-1 {
		return PackTimeBands[len(PackTimeBands)-1]
	}
	return PackTimeBands[n]
}

// BandPackTime labels every delivery with its pack-time band.
func BandPackTime(deliveries []domain.Delivery) []domain.Delivery {
	out := slices.Clone(deliveries)
	for i := range out {
		out[i].PackTimeBand = PackTimeBand(out[i].PackingHours)
	}
	return out
}

// Speed returns units per packing hour. Infinite and undefined speeds are 0.
func Speed(units, hours float64) float64 {
	v := units / hours
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}

// PickingSpeed sets the picking speed of every delivery.
func PickingSpeed(deliveries []domain.Delivery) []domain.Delivery {
	out := slices.Clone(deliveries)
	for i := range out {
		out[i].PickingSpeed = Speed(out[i].UnitsCount, out[i].PackingHours)
	}
	return out
}

// SummariseDeliveries counts distinct orders per pack-time band. Every
// band is reported, in band order, including empty ones. Proportions are
// percentages rounded to two decimals and the cumulative column sums the
// rounded values.
func SummariseDeliveries(deliveries []domain.Delivery) []domain.DeliveryBandSummary {
	orders := make(map[string]map[string]struct{}, len(PackTimeBands))
	for _, d := range deliveries {
		if d.PackTimeBand == "" {
			continue
		}
		set, ok := orders[d.PackTimeBand]
		if !ok {
			set = make(map[string]struct{})
			orders[d.PackTimeBand] = set
		}
		set[d.OrderNumber] = struct{}{}
	}

	total := 0
	for _, set := range orders {
		total += len(set)
	}

	out := make([]domain.DeliveryBandSummary, len(PackTimeBands))
	cumsum := 0.0
	for i, band := range PackTimeBands {
		count := len(orders[band])
		proportion := 0.0
		if total > 0 {
			proportion = round2(float64(count) / float64(total) * 100)
		}
		cumsum += proportion
		out[i] = domain.DeliveryBandSummary{
			Band:                 band,
			DeliveryCount:        count,
			ProportionDeliveries: proportion,
			DeliveriesCumsum:     round2(cumsum),
		}
	}
	return out
}

// round2 rounds half to even at two decimals.
func round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
