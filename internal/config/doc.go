// Package config provides centralized configuration for the analytics tools.
//
// # Configuration Sources
//
// Configuration is assembled from the following sources, later ones
// overriding earlier ones:
//
//  1. Default values (Default)
//  2. A YAML file: $OPSA_CONFIG, config.yaml or configs/config.yaml
//  3. Environment variables prefixed with OPSA_
//
// # Environment Variables
//
// Nested sections map onto underscore-joined names:
//
//	OPSA_SERVER_PORT=8080
//	OPSA_LOGGING_LEVEL=debug
//	OPSA_OCCUPANCY_POLICY=collect
//	OPSA_OCCUPANCY_WORKERS=8
//	OPSA_PICKING_EXCLUDED_PICK_TYPES=GNR,RET
//	OPSA_TELEMETRY_TRACE_EXPORTER=stdout
//
// # Paths
//
// Relative data, report and log directories are resolved against
// paths.base_dir (or the working directory):
//
//	paths, err := cfg.ResolvePaths()
//	out := paths.GetReportPath(config.DeliveriesCSV)
package config
