// Package daemon runs the long-lived pimo process: a cron scheduler
// driving periodic service rotation and relay passes, guarded by a
// single-instance lock and stopped cleanly on SIGINT/SIGTERM.
package daemon
