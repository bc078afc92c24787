// Package app wires the HTTP service together: configuration, logging,
// OpenTelemetry, services, router and server, plus graceful shutdown.
//
// # Initialization Flow
//
//  1. Load configuration from defaults, file and environment
//  2. Initialize logging and observability
//  3. Resolve and create the data, reports and logs directories
//  4. Initialize services with their dependencies
//  5. Build the router and HTTP server
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	a, err := app.NewApplication(cfg)
//	if err != nil {
//	    return err
//	}
//	return a.Run()
package app
