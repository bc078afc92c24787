package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "opsanalytics/internal/errors"
	"opsanalytics/internal/infrastructure"
	"opsanalytics/internal/middleware"
	"opsanalytics/pkg/contracts/domain"
)

// PickingReportRequest is the body of POST /api/v1/picking/report
type PickingReportRequest struct {
	Events []PickEventRequest `json:"events" validate:"required,dive"`
}

// PickEventRequest is one line of a pick log
type PickEventRequest struct {
	OrderNumber         string   `json:"order_number"`
	OrderedProductID    string   `json:"ordered_product_id"`
	PickedProductID     string   `json:"picked_product_id"`
	PickerID            string   `json:"picker_id"`
	PickType            string   `json:"pick_type"`
	PickedUnitOfMeasure string   `json:"picked_unit_of_measure"`
	OrderedQty          *float64 `json:"ordered_qty"`
	Qty                 *float64 `json:"qty"`
	EventTime           string   `json:"event_time" validate:"required,clock"`
}

// PickingReportResponse wraps a picking report
type PickingReportResponse struct {
	Status string                `json:"status"`
	Events int                   `json:"events"`
	Report *domain.PickingReport `json:"report"`
}

// PickingHandler exposes the picking report over HTTP
type PickingHandler struct {
	service      PickingServiceInterface
	validator    *middleware.Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewPickingHandler creates a new picking handler
func NewPickingHandler(service PickingServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *PickingHandler {
	logger = infrastructure.WithComponent(logger, "picking_handler")
	return &PickingHandler{
		service:      service,
		validator:    middleware.NewValidator(logger, errorHandler),
		logger:       logger,
		errorHandler: errorHandler,
	}
}

// Routes returns the picking routes
func (h *PickingHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(middleware.ContentTypeValidator(h.errorHandler, "application/json")).Post("/report", h.Report)
	return r
}

// Report handles POST /api/v1/picking/report
func (h *PickingHandler) Report(w http.ResponseWriter, r *http.Request) {
	var req PickingReportRequest
	if !h.validator.Decode(w, r, &req) {
		return
	}

	report, err := h.service.Analyse(r.Context(), req.toEvents())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, PickingReportResponse{
		Status: "success",
		Events: len(req.Events),
		Report: report,
	})
}

func (req PickingReportRequest) toEvents() []domain.PickEvent {
	events := make([]domain.PickEvent, len(req.Events))
	for i, e := range req.Events {
		events[i] = domain.PickEvent{
			Row:                 i,
			OrderNumber:         e.OrderNumber,
			OrderedProductID:    e.OrderedProductID,
			PickedProductID:     e.PickedProductID,
			PickerID:            e.PickerID,
			PickType:            e.PickType,
			PickedUnitOfMeasure: e.PickedUnitOfMeasure,
			OrderedQty:          e.OrderedQty,
			Qty:                 e.Qty,
			EventTimeRaw:        e.EventTime,
		}
	}
	return events
}
