// Package logging configures the process-wide slog logger and provides
// attribute helpers plus context-derived field extraction shared by the
// engine, pipeline components, and API server.
package logging
