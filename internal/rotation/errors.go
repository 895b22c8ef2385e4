package rotation

import "errors"

// ErrNoServiceList indicates the services file does not exist. Nothing to
// rotate is fatal; a present-but-empty file is a quiet no-op instead.
var ErrNoServiceList = errors.New("service list not found")

// ErrPersistFailed indicates the advanced cursor could not be written. The
// previous state remains authoritative and the invocation fails.
var ErrPersistFailed = errors.New("persist rotation state failed")

// ErrLockBusy indicates another rotation holds the state lock.
var ErrLockBusy = errors.New("rotation lock busy")
