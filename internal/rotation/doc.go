// Package rotation keeps exactly one appliance service active at a time.
//
// The planner is pure: given the ordered service list, the persisted cursor,
// and the sync-window state, it decides which unit to stop, which to start,
// and where the cursor lands. The Runner applies that plan through a unit
// manager under an exclusive file lock and persists the advanced cursor.
//
// Rotation is best-effort by design: a unit that fails to stop or start is
// logged and the cursor still advances, because the point of rotation is
// bounding RAM, not guaranteeing liveness. Only a failure to persist the new
// cursor aborts the invocation, since repeating the same transition on the
// next tick would break the even time-slice.
package rotation
