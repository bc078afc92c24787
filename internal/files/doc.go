// Package files discovers the input tables of a batch run: every CSV or
// Excel workbook directly inside a directory, skipping Office lock
// files and hidden files.
package files
