package exporter

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"opsanalytics/internal/config"
	"opsanalytics/pkg/contracts/domain"
)

// Workbook sheet names
const (
	SheetDeliveries    = "Deliveries"
	SheetSummary       = "Delivery Summary"
	SheetOperators     = "Operators"
	SheetOperatorHours = "Operator Hours"
)

var (
	deliveryHeaders = []string{
		"ORDER_NUMBER", "max_time", "min_time", "operator_count", "product_count",
		"units_count", "packing_time_time_delta", "packing_time", "Banded Pack Time", "Picking Speed",
	}
	summaryHeaders = []string{
		"Banded Pack Time", "Delivery Count", "Proportion Deliveries", "Deliveries Cumsum",
	}
	operatorHeaders = []string{
		"count", "PICKER_ID", "Average Orders Per Hour", "Percentage Cumsum", "Average Orders Per Hour Bin",
	}
	operatorHourHeaders = []string{"PICKER_ID", "event_hour", "Total Orders"}
)

// PickingExporter writes picking reports
type PickingExporter struct {
	csvWriter *CSVWriter
}

// NewPickingExporter creates a new picking report exporter
func NewPickingExporter(w *CSVWriter) *PickingExporter {
	return &PickingExporter{csvWriter: w}
}

// ExportCSV writes the report tables into outputDir and returns the
// written paths.
func (p *PickingExporter) ExportCSV(outputDir string, report *domain.PickingReport) ([]string, error) {
	files := []struct {
		name    string
		headers []string
		records [][]string
	}{
		{config.DeliveriesCSV, deliveryHeaders, DeliveryRecords(report.Deliveries)},
		{config.DeliverySummaryCSV, summaryHeaders, SummaryRecords(report.Summary)},
		{config.OperatorsCSV, operatorHeaders, OperatorRecords(report.Operators)},
		{config.OperatorHoursCSV, operatorHourHeaders, OperatorHourRecords(report.OperatorHours)},
	}

	written := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(outputDir, f.name)
		if err := p.csvWriter.WriteSimpleCSV(path, f.headers, f.records); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", f.name, err)
		}
		written = append(written, p.csvWriter.ResolvePath(path))
	}
	return written, nil
}

// ExportWorkbook writes every report table to its own sheet of one xlsx
// workbook.
func (p *PickingExporter) ExportWorkbook(filePath string, report *domain.PickingReport) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheets := []struct {
		name    string
		headers []string
		rows    [][]interface{}
	}{
		{SheetDeliveries, deliveryHeaders, deliveryCells(report.Deliveries)},
		{SheetSummary, summaryHeaders, summaryCells(report.Summary)},
		{SheetOperators, operatorHeaders, operatorCells(report.Operators)},
		{SheetOperatorHours, operatorHourHeaders, operatorHourCells(report.OperatorHours)},
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return "", fmt.Errorf("failed to create header style: %w", err)
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.name); err != nil {
				return "", fmt.Errorf("failed to name sheet %s: %w", s.name, err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return "", fmt.Errorf("failed to add sheet %s: %w", s.name, err)
		}

		if err := writeSheet(f, s.name, s.headers, s.rows); err != nil {
			return "", err
		}

		last, err := excelize.ColumnNumberToName(len(s.headers))
		if err != nil {
			return "", err
		}
		if err := f.SetCellStyle(s.name, "A1", last+"1", bold); err != nil {
			return "", fmt.Errorf("failed to style %s header: %w", s.name, err)
		}
	}
	f.SetActiveSheet(0)

	fullPath := p.csvWriter.ResolvePath(filePath)
	if err := f.SaveAs(fullPath); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}

	p.csvWriter.logger.Info("picking_workbook_exported",
		slog.String("file_path", fullPath),
		slog.Int("deliveries", len(report.Deliveries)),
		slog.Int("operators", len(report.Operators)))
	return fullPath, nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]interface{}) error {
	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i, err)
		}
	}
	return nil
}

// DeliveryRecords renders deliveries as CSV records
func DeliveryRecords(ds []domain.Delivery) [][]string {
	out := make([][]string, len(ds))
	for i, d := range ds {
		out[i] = []string{
			d.OrderNumber,
			formatClock(d.MaxTime),
			formatClock(d.MinTime),
			formatInt(d.OperatorCount),
			formatInt(d.ProductCount),
			formatNumber(d.UnitsCount),
			formatDuration(d.PackingTime),
			formatNumber(d.PackingHours),
			d.PackTimeBand,
			formatNumber(d.PickingSpeed),
		}
	}
	return out
}

// SummaryRecords renders band summaries as CSV records
func SummaryRecords(ss []domain.DeliveryBandSummary) [][]string {
	out := make([][]string, len(ss))
	for i, s := range ss {
		out[i] = []string{
			s.Band,
			formatInt(s.DeliveryCount),
			formatFloat(s.ProportionDeliveries),
			formatFloat(s.DeliveriesCumsum),
		}
	}
	return out
}

// OperatorRecords renders operator summaries as CSV records
func OperatorRecords(ops []domain.OperatorSummary) [][]string {
	out := make([][]string, len(ops))
	for i, o := range ops {
		out[i] = []string{
			formatInt(o.Count),
			o.PickerID,
			formatNumber(o.AverageOrdersPerHour),
			formatNumber(o.PercentageCumsum),
			o.OrdersPerHourBand,
		}
	}
	return out
}

// OperatorHourRecords renders hourly operator lines as CSV records
func OperatorHourRecords(ls []domain.OperatorHourLine) [][]string {
	out := make([][]string, len(ls))
	for i, l := range ls {
		out[i] = []string{l.PickerID, formatInt(l.Hour), formatInt(l.TotalOrders)}
	}
	return out
}

func deliveryCells(ds []domain.Delivery) [][]interface{} {
	out := make([][]interface{}, len(ds))
	for i, d := range ds {
		out[i] = []interface{}{
			d.OrderNumber, formatClock(d.MaxTime), formatClock(d.MinTime),
			d.OperatorCount, d.ProductCount, d.UnitsCount,
			formatDuration(d.PackingTime), d.PackingHours, d.PackTimeBand, d.PickingSpeed,
		}
	}
	return out
}

func summaryCells(ss []domain.DeliveryBandSummary) [][]interface{} {
	out := make([][]interface{}, len(ss))
	for i, s := range ss {
		out[i] = []interface{}{s.Band, s.DeliveryCount, s.ProportionDeliveries, s.DeliveriesCumsum}
	}
	return out
}

func operatorCells(ops []domain.OperatorSummary) [][]interface{} {
	out := make([][]interface{}, len(ops))
	for i, o := range ops {
		out[i] = []interface{}{o.Count, o.PickerID, o.AverageOrdersPerHour, o.PercentageCumsum, o.OrdersPerHourBand}
	}
	return out
}

func operatorHourCells(ls []domain.OperatorHourLine) [][]interface{} {
	out := make([][]interface{}, len(ls))
	for i, l := range ls {
		out[i] = []interface{}{l.PickerID, l.Hour, l.TotalOrders}
	}
	return out
}
