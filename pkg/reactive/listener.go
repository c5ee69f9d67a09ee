package reactive

// Listener is anything that can be notified when a dependency changes.
// Components (via runtime.Root), memos, and effects implement it.
type Listener interface {
	// MarkDirty notifies the listener that one of its dependencies changed.
	// For components this schedules a re-render, for memos it invalidates
	// the cached value, for effects it schedules a re-run.
	MarkDirty()

	// ID returns a unique identifier for this listener, used for
	// deduplication during batch processing. Implementations outside this
	// package must obtain it from NextID.
	ID() uint64
}

// Cleanup is a function returned by effects to release resources.
// It runs before the effect re-runs and when the effect is disposed.
type Cleanup func()
