package picking

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsanalytics/pkg/contracts/domain"
)

func cleaned(t *testing.T, events ...domain.PickEvent) []domain.PickEvent {
	t.Helper()
	out, err := CleanColumns(events, "15:04:05")
	require.NoError(t, err)
	return ApplyUnitMeasure(ApplyPickType(out))
}

func TestBuildDeliveries(t *testing.T) {
	events := cleaned(t,
		event("o1", "p1", "k1", "NORMAL", "EACH", "08:00:00", f(2), f(2)),
		event("o1", "p2", "k2", "NORMAL", "EACH", "10:30:00", f(3), f(3)),
		event("o1", "p3", "k1", "NORMAL", "KG", "09:00:00", f(3), nil),
		event("o2", "p1", "k1", "NORMAL", "EACH", "07:00:00", f(1), f(1)),
		event("o3", "p1", "k3", "NAG", "GRAM", "11:00:00", f(1), f(1)),
		event("o3", "p2", "k3", "NAG", "GRAM", "11:45:00", f(1), f(1)),
		event("", "p9", "k3", "NORMAL", "EACH", "12:00:00", f(1), f(1)),
	)

	got := BuildDeliveries(events)
	require.Len(t, got, 3)

	assert.Equal(t, []string{"o2", "o3", "o1"}, []string{got[0].OrderNumber, got[1].OrderNumber, got[2].OrderNumber})

	o1 := got[2]
	assert.Equal(t, 2, o1.OperatorCount)
	assert.Equal(t, 3, o1.ProductCount)
	assert.Equal(t, 5.0, o1.UnitsCount, "null FinalQty is not summed")
	assert.Equal(t, 150*time.Minute, o1.PackingTime)
	assert.Equal(t, 2.5, o1.PackingHours)
	assert.Equal(t, 8, o1.MinTime.Hour())
	assert.Equal(t, 10, o1.MaxTime.Hour())

	assert.Equal(t, 0.0, got[0].PackingHours)
	assert.Equal(t, 0.0, got[1].UnitsCount)
	assert.Equal(t, 0.75, got[1].PackingHours)
}

func TestBuildDeliveriesTiesByOrderNumber(t *testing.T) {
	events := cleaned(t,
		event("b", "p1", "k1", "NORMAL", "EACH", "08:00:00", f(1), f(1)),
		event("c", "p1", "k1", "NORMAL", "EACH", "08:00:00", f(1), f(1)),
		event("a", "p1", "k1", "NORMAL", "EACH", "08:00:00", f(1), f(1)),
	)
	got := BuildDeliveries(events)
	assert.Equal(t, []string{"a", "b", "c"}, []string{got[0].OrderNumber, got[1].OrderNumber, got[2].OrderNumber})
}

func TestPackTimeBand(t *testing.T) {
	tests := []struct {
		hours float64
		want  string
	}{
		{0, "< 1 hour"},
		{0.5, "< 1 hour"},
		{1, "< 1 hour"},
		{1.01, "1-2 hours"},
		{2, "1-2 hours"},
		{3.5, "3-4 hours"},
		{7, "6-7 hours"},
		{7.001, "> 7 hours"},
		{30, "> 7 hours"},
		{-1, ""},
		{math.NaN(), ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PackTimeBand(tt.hours), "hours=%v", tt.hours)
	}
}

func TestSpeed(t *testing.T) {
	tests := []struct {
		name  string
		units float64
		hours float64
		want  float64
	}{
		{"regular", 10, 2, 5},
		{"zero duration", 10, 0, 0},
		{"nothing picked instantly", 0, 0, 0},
		{"nothing picked", 0, 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Speed(tt.units, tt.hours))
		})
	}
}

func TestBandAndSpeedLeaveInputUntouched(t *testing.T) {
	in := []domain.Delivery{{OrderNumber: "o1", UnitsCount: 6, PackingHours: 1.5}}
	out := PickingSpeed(BandPackTime(in))
	assert.Equal(t, "1-2 hours", out[0].PackTimeBand)
	assert.Equal(t, 4.0, out[0].PickingSpeed)
	assert.Empty(t, in[0].PackTimeBand)
	assert.Zero(t, in[0].PickingSpeed)
}

func TestSummariseDeliveries(t *testing.T) {
	deliveries := BandPackTime([]domain.Delivery{
		{OrderNumber: "o1", PackingHours: 0.2},
		{OrderNumber: "o2", PackingHours: 0.9},
		{OrderNumber: "o3", PackingHours: 1.5},
		{OrderNumber: "o4", PackingHours: 9},
		{OrderNumber: "o5", PackingHours: 0.1},
		{OrderNumber: "o6", PackingHours: 2.5},
	})

	got := SummariseDeliveries(deliveries)
	require.Len(t, got, len(PackTimeBands))
	for i, band := range PackTimeBands {
		assert.Equal(t, band, got[i].Band)
	}

	counts := make([]int, len(got))
	for i, s := range got {
		counts[i] = s.DeliveryCount
	}
	assert.Equal(t, []int{3, 1, 1, 0, 0, 0, 0, 1}, counts)

	assert.Equal(t, 50.0, got[0].ProportionDeliveries)
	assert.Equal(t, 16.67, got[1].ProportionDeliveries)
	assert.Equal(t, 66.67, got[1].DeliveriesCumsum)
	assert.Equal(t, 83.34, got[2].DeliveriesCumsum)
	assert.Equal(t, 0.0, got[3].ProportionDeliveries)
	assert.Equal(t, 83.34, got[6].DeliveriesCumsum)
	assert.Equal(t, 100.01, got[7].DeliveriesCumsum)
}

func TestSummariseDeliveriesEmpty(t *testing.T) {
	got := SummariseDeliveries(nil)
	require.Len(t, got, len(PackTimeBands))
	for _, s := range got {
		assert.Zero(t, s.DeliveryCount)
		assert.Zero(t, s.ProportionDeliveries)
		assert.Zero(t, s.DeliveriesCumsum)
	}
}
