// Package exporter writes analytics results as CSV files and Excel
// workbooks.
//
// CSVWriter is the shared CSV layer: whole-file writes, appends and a
// StreamWriter for outputs too large to buffer. Relative paths resolve
// into the reports directory; a UTF-8 BOM is written for Excel.
//
// OccupancyExporter streams expanded bookings back out with their original
// columns followed by date_occupied. PickingExporter writes the delivery,
// band summary and operator tables as CSVs and as one multi-sheet workbook.
//
// Example usage:
//
//	w := exporter.NewCSVWriter(paths, logger)
//	occ := exporter.NewOccupancyExporter(w)
//	err := occ.ExportFile("occupancy.csv", columns, rows)
//
//	pick := exporter.NewPickingExporter(w)
//	files, err := pick.ExportCSV(outDir, report)
package exporter
