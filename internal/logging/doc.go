// Package logging builds slog loggers with console and JSON handlers and
// provides the standardized attribute keys used across the pipeline.
package logging
