package domain

import (
	"time"
)

// Pick types with special quantity handling
const (
	PickTypeNormal = "NORMAL"
	PickTypeNAG    = "NAG"
	PickTypeGNR    = "GNR"
)

// Units of measure recorded by the picking terminals
const (
	UnitGram = "GRAM"
	UnitEach = "EACH"
)

// PickEvent is a single line of a warehouse order-picking log.
// Quantities are nil when the source cell was blank.
type PickEvent struct {
	Row                 int      `json:"-"`
	OrderNumber         string   `json:"order_number"`
	OrderedProductID    string   `json:"ordered_product_id"`
	PickedProductID     string   `json:"picked_product_id"`
	PickerID            string   `json:"picker_id"`
	PickType            string   `json:"pick_type"`
	PickedUnitOfMeasure string   `json:"picked_unit_of_measure"`
	OrderedQty          *float64 `json:"ordered_qty,omitempty"`
	Qty                 *float64 `json:"qty,omitempty"`
	EventTimeRaw        string   `json:"event_time"`

	// Derived by the cleaning stages
	EventTime time.Time `json:"-"`
	EventHour int       `json:"event_hour"`
	FinalQty  *float64  `json:"final_qty,omitempty"`
}

// Delivery aggregates every pick event of one order.
type Delivery struct {
	OrderNumber   string        `json:"order_number"`
	MaxTime       time.Time     `json:"max_time"`
	MinTime       time.Time     `json:"min_time"`
	OperatorCount int           `json:"operator_count"`
	ProductCount  int           `json:"product_count"`
	UnitsCount    float64       `json:"units_count"`
	PackingTime   time.Duration `json:"packing_time_ns"`
	PackingHours  float64       `json:"packing_time"`
	PackTimeBand  string        `json:"banded_pack_time"`
	PickingSpeed  float64       `json:"picking_speed"`
}

// DeliveryBandSummary is the share of deliveries falling in one pack-time band.
type DeliveryBandSummary struct {
	Band                 string  `json:"banded_pack_time"`
	DeliveryCount        int     `json:"delivery_count"`
	ProportionDeliveries float64 `json:"proportion_deliveries"`
	DeliveriesCumsum     float64 `json:"deliveries_cumsum"`
}

// OperatorHourLine counts the distinct orders a picker worked on in one hour.
type OperatorHourLine struct {
	PickerID    string `json:"picker_id"`
	Hour        int    `json:"hour"`
	TotalOrders int    `json:"total_orders"`
}

// OperatorSummary is the hourly throughput profile of one picker.
type OperatorSummary struct {
	PickerID             string  `json:"picker_id"`
	AverageOrdersPerHour float64 `json:"average_orders_per_hour"`
	Count                int     `json:"count"`
	PercentageCumsum     float64 `json:"percentage_cumsum"`
	OrdersPerHourBand    string  `json:"average_orders_per_hour_bin"`
}

// PickingReport bundles every picking aggregate produced from one log.
type PickingReport struct {
	Deliveries    []Delivery            `json:"deliveries"`
	Summary       []DeliveryBandSummary `json:"summary"`
	Operators     []OperatorSummary     `json:"operators"`
	OperatorHours []OperatorHourLine    `json:"operator_hours"`

	// Events kept after cleaning
	CleanedEvents int `json:"cleaned_events"`
}
