// Package logging builds slog loggers for PiMO commands and the daemon.
//
// Two output formats are supported: a compact console format for interactive
// use and cron mail, and JSON for log shippers. Output can fan out to stdout
// and a log file at the same time. Attr helpers are re-exported so callers
// don't import log/slog directly.
package logging
