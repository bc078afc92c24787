package picking

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsanalytics/pkg/contracts/domain"
)

func TestOperatorHourlyLines(t *testing.T) {
	events := cleaned(t,
		event("o1", "p1", "k1", "NORMAL", "EACH", "08:00:00", nil, nil),
		event("o1", "p2", "k1", "NORMAL", "EACH", "08:10:00", nil, nil),
		event("o2", "p1", "k1", "NORMAL", "EACH", "08:20:00", nil, nil),
		event("o3", "p1", "k1", "NORMAL", "EACH", "09:00:00", nil, nil),
		event("o1", "p3", "k2", "NORMAL", "EACH", "08:30:00", nil, nil),
		event("o4", "p1", "", "NORMAL", "EACH", "08:30:00", nil, nil),
	)

	got := OperatorHourlyLines(events)
	assert.Equal(t, []domain.OperatorHourLine{
		{PickerID: "k1", Hour: 8, TotalOrders: 2},
		{PickerID: "k1", Hour: 9, TotalOrders: 1},
		{PickerID: "k2", Hour: 8, TotalOrders: 1},
	}, got)
}

func TestOperatorBand(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{0, ""},
		{0.5, "0 - 4"},
		{4, "0 - 4"},
		{4.5, "4 - 8"},
		{12, "8 - 12"},
		{24, "20 - 24"},
		{24.5, ""},
		{-3, ""},
		{math.NaN(), ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, OperatorBand(tt.v), "v=%v", tt.v)
	}
}

func TestAggregateOperators(t *testing.T) {
	lines := []domain.OperatorHourLine{
		{PickerID: "k1", Hour: 8, TotalOrders: 10},
		{PickerID: "k1", Hour: 9, TotalOrders: 6},
		{PickerID: "k2", Hour: 8, TotalOrders: 3},
		{PickerID: "k3", Hour: 8, TotalOrders: 5},
		{PickerID: "k4", Hour: 8, TotalOrders: 30},
	}

	got := AggregateOperators(lines)
	require.Len(t, got, 4)

	ids := []string{got[0].PickerID, got[1].PickerID, got[2].PickerID, got[3].PickerID}
	assert.Equal(t, []string{"k2", "k3", "k1", "k4"}, ids)

	assert.Equal(t, []int{0, 1, 2, 3}, []int{got[0].Count, got[1].Count, got[2].Count, got[3].Count})
	assert.Equal(t, 8.0, got[2].AverageOrdersPerHour)

	// ranks 0,1,2,3 sum to 6
	assert.InDelta(t, 0.0, got[0].PercentageCumsum, 1e-9)
	assert.InDelta(t, 100.0/6, got[1].PercentageCumsum, 1e-9)
	assert.InDelta(t, 50.0, got[2].PercentageCumsum, 1e-9)
	assert.InDelta(t, 100.0, got[3].PercentageCumsum, 1e-9)

	assert.Equal(t, []string{"0 - 4", "4 - 8", "4 - 8", ""},
		[]string{got[0].OrdersPerHourBand, got[1].OrdersPerHourBand, got[2].OrdersPerHourBand, got[3].OrdersPerHourBand})
}

func TestAggregateOperatorsEdgeCases(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, AggregateOperators(nil))
	})

	t.Run("single operator", func(t *testing.T) {
		got := AggregateOperators([]domain.OperatorHourLine{{PickerID: "k1", Hour: 8, TotalOrders: 2}})
		require.Len(t, got, 1)
		assert.Equal(t, 0, got[0].Count)
		assert.Equal(t, 100.0, got[0].PercentageCumsum)
		assert.Equal(t, "0 - 4", got[0].OrdersPerHourBand)
	})

	t.Run("ties ordered by picker id", func(t *testing.T) {
		got := AggregateOperators([]domain.OperatorHourLine{
			{PickerID: "z", Hour: 8, TotalOrders: 2},
			{PickerID: "a", Hour: 8, TotalOrders: 2},
		})
		assert.Equal(t, "a", got[0].PickerID)
		assert.Equal(t, "z", got[1].PickerID)
	})
}
