// Package syncwindow tracks the time-boxed window during which rotation is
// suppressed so a sync job can run exclusively.
//
// The window itself is a persisted singleton; the external message-bus
// listener that receives "start:<minutes>" / "stop" payloads is out of
// process and drives the Manager through the pimo sync CLI. Delivery is
// at-least-once: re-opening replaces the current window and closing an
// already-closed window is a no-op.
package syncwindow
