// Package logging provides structured logging for relaydeck.
//
// It wraps a zap logger with package-level helpers. Output is disabled
// unless RELAYDECK_LOG_LEVEL is set, because the primary surface of the
// application is a full-screen TUI and stray log lines would tear the
// rendered dashboard. When enabled, logs go to stderr in console format:
//
//	RELAYDECK_LOG_LEVEL=debug relaydeck
//
// All logging functions are safe for concurrent use.
package logging
