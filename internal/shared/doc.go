// Package shared holds helpers used across packages that belong to no
// single layer.
//
// The testutil subpackage provides a buffering slog handler and log
// assertions for tests:
//
//	logger, handler := testutil.NewTestLogger(t)
//	svc := services.NewOccupancyService(cfg, logger, nil)
//	...
//	testutil.AssertLogContains(t, handler, slog.LevelInfo, "expansion_completed")
package shared
