package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"opsanalytics/internal/config"
	apierrors "opsanalytics/internal/errors"
	"opsanalytics/internal/exporter"
	"opsanalytics/internal/infrastructure"
	"opsanalytics/internal/middleware"
	"opsanalytics/pkg/contracts/domain"
)

// ExpandRequest is the body of POST /api/v1/occupancy/expand
type ExpandRequest struct {
	Bookings []BookingRequest `json:"bookings" validate:"required,dive"`
}

// BookingRequest is one booking in an expand request. Omitted
// timestamps are reported as invalid records, not request errors.
type BookingRequest struct {
	ID         string            `json:"id" validate:"max=256"`
	StartedAt  time.Time         `json:"started_at"`
	ClosedAt   time.Time         `json:"closed_at"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// ExpandResponse is the JSON answer of an expansion
type ExpandResponse struct {
	Status   string                   `json:"status"`
	Policy   string                   `json:"policy"`
	Bookings int                      `json:"bookings"`
	Count    int                      `json:"count"`
	Rows     []OccupancyRow           `json:"rows"`
	Invalid  []apierrors.RecordDetail `json:"invalid,omitempty"`
}

// OccupancyRow is one occupied day of a booking
type OccupancyRow struct {
	ID           string            `json:"id"`
	StartedAt    time.Time         `json:"started_at"`
	ClosedAt     time.Time         `json:"closed_at"`
	DateOccupied string            `json:"date_occupied"`
	Attributes   map[string]string `json:"attributes,omitempty"`
}

// OccupancyHandler exposes booking expansion over HTTP
type OccupancyHandler struct {
	service      OccupancyServiceInterface
	validator    *middleware.Validator
	query        *middleware.QueryParamValidator
	exporter     *exporter.OccupancyExporter
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewOccupancyHandler creates a new occupancy handler
func NewOccupancyHandler(service OccupancyServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *OccupancyHandler {
	logger = infrastructure.WithComponent(logger, "occupancy_handler")
	return &OccupancyHandler{
		service:      service,
		validator:    middleware.NewValidator(logger, errorHandler),
		query:        middleware.NewQueryParamValidator(errorHandler),
		exporter:     exporter.NewOccupancyExporter(exporter.NewCSVWriter(nil, logger)),
		logger:       logger,
		errorHandler: errorHandler,
	}
}

// Routes returns the occupancy routes
func (h *OccupancyHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(middleware.ContentTypeValidator(h.errorHandler, "application/json")).Post("/expand", h.Expand)
	return r
}

// Expand handles POST /api/v1/occupancy/expand?policy=fail|collect|skip&format=json|csv
func (h *OccupancyHandler) Expand(w http.ResponseWriter, r *http.Request) {
	policy, ok := h.query.ValidateEnum(w, r, "policy",
		[]string{config.PolicyFail, config.PolicyCollect, config.PolicySkip}, h.service.DefaultPolicy())
	if !ok {
		return
	}
	format, ok := h.query.ValidateEnum(w, r, "format", []string{"json", "csv"}, "json")
	if !ok {
		return
	}

	var req ExpandRequest
	if !h.validator.Decode(w, r, &req) {
		return
	}

	res, err := h.service.Expand(r.Context(), req.toBookings(), policy)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	if format == "csv" {
		h.writeCSV(w, r, res.Rows)
		return
	}

	rows := make([]OccupancyRow, len(res.Rows))
	for i, o := range res.Rows {
		rows[i] = OccupancyRow{
			ID:           o.ID,
			StartedAt:    o.StartedAt,
			ClosedAt:     o.ClosedAt,
			DateOccupied: o.OccupiedDate(),
			Attributes:   o.Attributes,
		}
	}

	render.JSON(w, r, ExpandResponse{
		Status:   "success",
		Policy:   res.Policy,
		Bookings: res.Bookings,
		Count:    len(rows),
		Rows:     rows,
		Invalid:  res.Invalid,
	})
}

func (h *OccupancyHandler) writeCSV(w http.ResponseWriter, r *http.Request, rows []domain.Occupancy) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(config.OccupancyCSV))
	w.WriteHeader(http.StatusOK)

	if err := h.exporter.WriteTo(w, exporter.Columns(rows), rows); err != nil {
		// Headers are already sent, so the failure can only be logged.
		h.logger.ErrorContext(r.Context(), "occupancy_csv_write_failed",
			slog.String("error", err.Error()))
	}
}

func (req ExpandRequest) toBookings() []domain.Booking {
	bookings := make([]domain.Booking, len(req.Bookings))
	for i, b := range req.Bookings {
		bookings[i] = domain.Booking{
			Row:        i,
			ID:         b.ID,
			StartedAt:  b.StartedAt,
			ClosedAt:   b.ClosedAt,
			Attributes: b.Attributes,
		}
	}
	return bookings
}
