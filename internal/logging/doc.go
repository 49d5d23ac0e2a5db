// Package logging assembles structured slog loggers and formatting helpers used
// across OceanEye.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so identification code tags log
// lines with correlation IDs and request sources. The package also provides a
// no-op logger for tests and wiring code that cannot fail.
package logging
