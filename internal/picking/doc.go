// Package picking cleans warehouse order-picking logs and aggregates them
// into per-order deliveries, a pack-time band summary and per-picker
// throughput.
//
// Cleaning runs as four stages over []domain.PickEvent:
//
//	drop_records       duplicates on (ORDER_NUMBER, ORDERED_PRODUCT_ID), excluded pick types
//	clean_columns      parse EVENT_TIME, derive the event hour, reset FinalQty
//	apply_pick_type    NAG lines count zero units
//	apply_unit_measure GRAM lines of NORMAL picks take ORDERED_QTY, EACH lines take QTY
//
// Every stage returns a new slice and leaves its input untouched.
package picking
