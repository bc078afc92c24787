package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sort"

	"opsanalytics/internal/config"
	"opsanalytics/pkg/contracts/domain"
)

// OccupancyExporter writes expanded bookings as CSV
type OccupancyExporter struct {
	csvWriter *CSVWriter
}

// NewOccupancyExporter creates a new occupancy exporter
func NewOccupancyExporter(w *CSVWriter) *OccupancyExporter {
	return &OccupancyExporter{csvWriter: w}
}

// Headers returns the output header: the source columns followed by
// date_occupied.
func (e *OccupancyExporter) Headers(columns []string) []string {
	return append(slices.Clone(columns), config.DateOccupiedColumn)
}

// Columns derives source columns for rows that did not come from a table:
// id, started_at, closed_at, then any attribute keys in sorted order.
func Columns(rows []domain.Occupancy) []string {
	cols := []string{config.DefaultIDColumn, config.DefaultStartColumn, config.DefaultEndColumn}
	seen := map[string]bool{}
	for _, c := range cols {
		seen[c] = true
	}
	var extra []string
	for _, r := range rows {
		for k := range r.Attributes {
			if !seen[k] {
				seen[k] = true
				extra = append(extra, k)
			}
		}
	}
	sort.Strings(extra)
	return append(cols, extra...)
}

// Record renders one occupancy row in column order. Columns missing from
// the attributes fall back to the booking's own fields.
func (e *OccupancyExporter) Record(columns []string, o domain.Occupancy) []string {
	rec := make([]string, 0, len(columns)+1)
	for _, c := range columns {
		if v, ok := o.Attributes[c]; ok {
			rec = append(rec, v)
			continue
		}
		switch c {
		case config.DefaultIDColumn:
			rec = append(rec, o.ID)
		case config.DefaultStartColumn:
			rec = append(rec, formatTimestamp(o.StartedAt))
		case config.DefaultEndColumn:
			rec = append(rec, formatTimestamp(o.ClosedAt))
		default:
			rec = append(rec, "")
		}
	}
	return append(rec, o.OccupiedDate())
}

// WriteTo streams rows to out
func (e *OccupancyExporter) WriteTo(out io.Writer, columns []string, rows []domain.Occupancy) error {
	stream, err := NewStreamWriter(out, e.Headers(columns), false)
	if err != nil {
		return err
	}
	if err := e.write(stream, columns, rows); err != nil {
		stream.Close()
		return err
	}
	return stream.Close()
}

// ExportFile writes rows to filePath, resolved into the reports directory
// when relative.
func (e *OccupancyExporter) ExportFile(filePath string, columns []string, rows []domain.Occupancy) error {
	stream, err := e.csvWriter.CreateStreamWriter(filePath, e.Headers(columns))
	if err != nil {
		return err
	}
	if err := e.write(stream, columns, rows); err != nil {
		stream.Close()
		return err
	}
	if err := stream.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", filePath, err)
	}

	e.csvWriter.logger.Info("occupancy_exported",
		slog.String("file_path", filePath),
		slog.Int("rows", stream.Count()))
	return nil
}

func (e *OccupancyExporter) write(stream *StreamWriter, columns []string, rows []domain.Occupancy) error {
	for i, o := range rows {
		if err := stream.WriteRecord(e.Record(columns, o)); err != nil {
			return fmt.Errorf("failed to write occupancy row %d: %w", i, err)
		}
	}
	return nil
}
