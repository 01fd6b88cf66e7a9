// Package logging builds the slog loggers used across sermoncast.
//
// Loggers are constructed once from configuration and injected; no package
// keeps a global logger. Console output goes to stdout and, when a log
// directory is configured, is mirrored into sermoncast.log for later review.
package logging
