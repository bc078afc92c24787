// Package services implements the business logic layer between the
// transports (HTTP handlers, CLIs) and the domain packages.
//
// # Services
//
//	OccupancyService  expand bookings into one row per occupied day, from
//	                  memory or from a CSV/xlsx file to a CSV file
//	PickingService    clean a picking log and build the delivery and
//	                  operator aggregates, from memory or from a file
//	HealthService     liveness, readiness and version information
//
// Services take their configuration, a *slog.Logger and optional
// metrics through their constructor; a nil logger falls back to the
// global one and nil metrics disable recording.
//
//	svc := services.NewOccupancyService(cfg, logger, metrics)
//	res, err := svc.ExpandFile(ctx, "bookings.csv", "occupancy.csv", "")
package services
