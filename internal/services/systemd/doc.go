// Package systemd mediates access to the systemctl CLI used for rotation.
//
// It normalizes command invocation and maps systemctl's exit conventions to
// the idempotent semantics rotation needs: stopping a unit that is already
// inactive and starting one that is already running both succeed. Prefer this
// package over ad-hoc exec.Command usage so timeout handling and error
// reporting stay consistent.
package systemd
