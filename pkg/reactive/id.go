package reactive

import "sync/atomic"

// globalIDCounter is the source of unique IDs for all reactive primitives.
var globalIDCounter uint64

// NextID returns the next unique listener ID. IDs are monotonically
// increasing and never reused. External Listener implementations must use
// this so their IDs share the same space as signals, memos, and effects.
func NextID() uint64 {
	return atomic.AddUint64(&globalIDCounter, 1)
}
