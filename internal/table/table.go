// Package table loads header-keyed tabular files (CSV or Excel) and maps
// their rows onto domain records.
package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"

	apperrors "opsanalytics/internal/errors"
)

// Table is an all-string, header-keyed view of a tabular file.
type Table struct {
	Columns []string
	Rows    [][]string

	index map[string]int
}

// New builds a Table, padding short rows with empty cells.
func New(columns []string, rows [][]string) *Table {
	t := &Table{Columns: columns, Rows: rows, index: make(map[string]int, len(columns))}
	for i, c := range columns {
		if _, dup := t.index[c]; !dup {
			t.index[c] = i
		}
	}
	for i, r := range t.Rows {
		if len(r) < len(columns) {
			padded := make([]string, len(columns))
			copy(padded, r)
			t.Rows[i] = padded
		}
	}
	return t
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Index returns the position of col, or -1.
func (t *Table) Index(col string) int {
	if i, ok := t.index[col]; ok {
		return i
	}
	return -1
}

// Require returns the positions of cols, failing with a not-found error
// naming the first missing one.
func (t *Table) Require(cols ...string) ([]int, error) {
	idx := make([]int, len(cols))
	for i, c := range cols {
		idx[i] = t.Index(c)
		if idx[i] < 0 {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("column %q", c)).
				WithContext("columns", t.Columns)
		}
	}
	return idx, nil
}

// ReadFile loads a .csv, .xlsx or .xlsm file. Excel files are read from
// their first sheet.
func ReadFile(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("open workbook %s", path), err)
		}
		defer f.Close()
		return readWorkbook(f, "")
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, apperrors.NewStorageError(fmt.Sprintf("open %s", path), err)
		}
		defer f.Close()
		return ReadCSV(f)
	}
}

// ReadCSV loads comma-separated data with a header row. Ragged rows are
// padded and every cell is kept verbatim as a string. Parsing stays on
// encoding/csv because dataframe.ReadCSV rejects ragged rows.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	records, err := cr.ReadAll()
	if err != nil {
		return nil, apperrors.NewParsingError("read csv", err)
	}
	return fromRecords(records)
}

// ReadXLSX loads a sheet of an Excel workbook. An empty sheet name selects
// the first sheet.
func ReadXLSX(r io.Reader, sheet string) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.NewParsingError("open workbook", err)
	}
	defer f.Close()
	return readWorkbook(f, sheet)
}

func readWorkbook(f *excelize.File, sheet string) (*Table, error) {
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, apperrors.NewParsingError("workbook has no sheets", nil)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("read sheet %s", sheet), err)
	}
	if len(rows) == 0 {
		return nil, apperrors.NewParsingError(fmt.Sprintf("sheet %s is empty", sheet), nil)
	}

	return fromRecords(rows)
}

// fromRecords squares up ragged records and loads them through gota with
// type detection off. gota's only job here is header de-duplication: a
// repeated name x becomes x_0, x_1 so every column stays addressable.
func fromRecords(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, apperrors.NewParsingError("table has no header", nil)
	}

	width := 0
	for _, r := range records {
		width = max(width, len(r))
	}
	for i, r := range records {
		if len(r) < width {
			padded := make([]string, width)
			copy(padded, r)
			records[i] = padded
		}
	}

	if len(records) == 1 {
		return New(records[0], nil), nil
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nil),
	)
	return fromDataFrame(df)
}

func fromDataFrame(df dataframe.DataFrame) (*Table, error) {
	if df.Err != nil {
		return nil, apperrors.NewParsingError("load table", df.Err)
	}

	records := df.Records()
	if len(records) == 0 {
		return nil, apperrors.NewParsingError("table has no header", nil)
	}
	return New(records[0], records[1:]), nil
}
