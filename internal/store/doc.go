// Package store persists appliance state in SQLite.
//
// One database holds the rotation cursor (a singleton row), a rotation
// history journal, the current sync window, and the feed relay's seen-item
// keys and per-feed fetch metadata. The database lives under paths.state_dir
// and survives reboots; it is the only shared mutable resource between the
// CLI, the daemon, and cron invocations.
//
// Schema changes bump the version in schema.go; the database is small enough
// that users delete it to adopt a new schema.
package store
