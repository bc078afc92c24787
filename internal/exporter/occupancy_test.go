package exporter

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsanalytics/pkg/contracts/domain"
)

func occupancyRows() []domain.Occupancy {
	b := domain.Booking{
		ID:        "b1",
		StartedAt: time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC),
		ClosedAt:  time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC),
		Attributes: map[string]string{
			"id":         "b1",
			"started_at": "2024-03-01 14:00:00",
			"closed_at":  "2024-03-02 10:00:00",
			"room":       "12",
		},
	}
	return []domain.Occupancy{
		{Booking: b, DateOccupied: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{Booking: b, DateOccupied: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)},
	}
}

func TestOccupancyExporter_WriteTo(t *testing.T) {
	e := NewOccupancyExporter(NewCSVWriter(nil, nil))

	var buf bytes.Buffer
	cols := []string{"room", "id", "started_at", "closed_at"}
	require.NoError(t, e.WriteTo(&buf, cols, occupancyRows()))

	want := "room,id,started_at,closed_at,date_occupied\n" +
		"12,b1,2024-03-01 14:00:00,2024-03-02 10:00:00,2024-03-01\n" +
		"12,b1,2024-03-01 14:00:00,2024-03-02 10:00:00,2024-03-02\n"
	assert.Equal(t, want, buf.String())
}

func TestOccupancyExporter_ExportFile(t *testing.T) {
	writer, tempDir := setupTestEnv(t)
	e := NewOccupancyExporter(writer)

	rows := occupancyRows()
	require.NoError(t, e.ExportFile("occupancy.csv", Columns(rows), rows))

	hasBOM, records := readCSV(t, filepath.Join(tempDir, "reports", "occupancy.csv"))
	assert.True(t, hasBOM)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"id", "started_at", "closed_at", "room", "date_occupied"}, records[0])
	assert.Equal(t, "2024-03-02", records[2][4])
}

func TestOccupancyExporter_RecordFallsBackToFields(t *testing.T) {
	e := NewOccupancyExporter(NewCSVWriter(nil, nil))
	o := domain.Occupancy{
		Booking: domain.Booking{
			ID:        "json-1",
			StartedAt: time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC),
		},
		DateOccupied: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
	}

	got := e.Record([]string{"id", "started_at", "closed_at", "unknown"}, o)
	assert.Equal(t, []string{"json-1", "2024-01-05T09:00:00Z", "", "", "2024-01-05"}, got)
}

func TestColumns(t *testing.T) {
	assert.Equal(t, []string{"id", "started_at", "closed_at"}, Columns(nil))
	assert.Equal(t, []string{"id", "started_at", "closed_at", "room"}, Columns(occupancyRows()))
}
