// Package http implements the HTTP API of the analytics service.
// Handlers are a thin layer between HTTP transport and the services
// package: they decode and validate requests, call a service and render
// the result. Errors are never written directly; they go through the
// shared ErrorHandler so every failure is an RFC 7807 problem document.
//
// # Routes
//
//	POST /api/v1/occupancy/expand   bookings → one row per occupied day
//	POST /api/v1/picking/report     pick events → deliveries and operators
//	GET  /healthz /readyz /livez    health checks
//	GET  /version                   build information
//	GET  /metrics                   Prometheus exposition
//
// The expand endpoint takes ?policy=fail|collect|skip. Under fail and
// skip an invalid booking answers 422 with an invalid_records list;
// under collect the valid rows are returned with an "invalid" list.
// ?format=csv streams the rows as CSV instead of JSON.
//
// # Handler Structure
//
// Each handler follows this pattern:
//
//	func (h *Handler) HandleSomething(w http.ResponseWriter, r *http.Request) {
//	    var req SomethingRequest
//	    if !h.validator.Decode(w, r, &req) {
//	        return
//	    }
//	    result, err := h.service.DoSomething(r.Context(), req.toDomain())
//	    if err != nil {
//	        h.errorHandler.HandleError(w, r, err)
//	        return
//	    }
//	    render.JSON(w, r, result)
//	}
//
// Services are consumed through the small interfaces in
// service_interfaces.go so handlers can be tested with mocks.
package http
