package table

import (
	"strconv"
	"strings"

	"opsanalytics/pkg/contracts/domain"
)

// Pick log column names
const (
	ColOrderNumber         = "ORDER_NUMBER"
	ColOrderedProductID    = "ORDERED_PRODUCT_ID"
	ColPickedProductID     = "PICKED_PRODUCT_ID"
	ColPickerID            = "PICKER_ID"
	ColPickType            = "PICK_TYPE"
	ColPickedUnitOfMeasure = "PICKED_UNIT_OF_MEASURE"
	ColOrderedQty          = "ORDERED_QTY"
	ColQty                 = "QTY"
	ColEventTime           = "EVENT_TIME"
)

// PickColumns lists the columns a pick log must carry.
var PickColumns = []string{
	ColOrderNumber, ColOrderedProductID, ColPickedProductID, ColPickerID,
	ColPickType, ColPickedUnitOfMeasure, ColOrderedQty, ColQty, ColEventTime,
}

// PickEvents maps every row onto a domain.PickEvent. EVENT_TIME is kept
// raw; it is parsed by the cleaning stages.
func (t *Table) PickEvents() ([]domain.PickEvent, error) {
	idx, err := t.Require(PickColumns...)
	if err != nil {
		return nil, err
	}

	events := make([]domain.PickEvent, len(t.Rows))
	for i, row := range t.Rows {
		orderedQty, err := parseQty(row[idx[6]])
		if err != nil {
			return nil, cellError(i, ColOrderedQty, err)
		}
		qty, err := parseQty(row[idx[7]])
		if err != nil {
			return nil, cellError(i, ColQty, err)
		}

		events[i] = domain.PickEvent{
			Row:                 i,
			OrderNumber:         row[idx[0]],
			OrderedProductID:    row[idx[1]],
			PickedProductID:     row[idx[2]],
			PickerID:            row[idx[3]],
			PickType:            row[idx[4]],
			PickedUnitOfMeasure: row[idx[5]],
			OrderedQty:          orderedQty,
			Qty:                 qty,
			EventTimeRaw:        strings.TrimSpace(row[idx[8]]),
		}
	}
	return events, nil
}

// parseQty returns nil for blank or NaN cells.
func parseQty(cell string) (*float64, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" || strings.EqualFold(cell, "NaN") {
		return nil, nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
