package config

import (
	"time"

	"opsanalytics/pkg/contracts"
)

// Application constants
const (
	AppName    = "opsanalytics"
	AppVersion = contracts.Version

	// Occupancy error policies as spelled in config, flags and query strings
	PolicyFail    = "fail"
	PolicyCollect = "collect"
	PolicySkip    = "skip"

	// Booking columns
	DefaultIDColumn    = "id"
	DefaultStartColumn = "started_at"
	DefaultEndColumn   = "closed_at"

	// Output column appended to every expanded booking
	DateOccupiedColumn = "date_occupied"
	DateLayout         = "2006-01-02"

	// Picking EVENT_TIME layout
	EventTimeLayout = "15:04:05"

	// Below this many bookings expansion runs on the calling goroutine
	DefaultParallelThreshold = 2048

	// Rate Limiting
	DefaultRateLimit = 50 // requests per second
	DefaultBurstSize = 100

	// HTTP
	DefaultRequestTimeout = 60 * time.Second
	DefaultMaxBodyBytes   = 32 << 20

	// File Paths (relative to BaseDir)
	DefaultDataDir    = "data"
	DefaultLogsDir    = "logs"
	DefaultReportsDir = "data/reports"
	DefaultLogFile    = "logs/app.log"

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// Report file names
	OccupancyCSV        = "occupancy.csv"
	DeliveriesCSV       = "deliveries.csv"
	DeliverySummaryCSV  = "delivery_summary.csv"
	OperatorsCSV        = "operators.csv"
	OperatorHoursCSV    = "operator_hours.csv"
	PickingWorkbookXLSX = "picking_report.xlsx"
)

// DefaultTimeLayouts lists the timestamp layouts tried, in order, when
// reading booking timestamps.
func DefaultTimeLayouts() []string {
	return []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04",
		DateLayout,
	}
}
