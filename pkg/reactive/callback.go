package reactive

import "sync"

// callbackSlot stores the latest closure for one NewCallback call site.
type callbackSlot[A any] struct {
	mu     sync.RWMutex
	latest func(A)
	invoke func(A)
}

// NewCallback returns a callback with stable identity across renders that
// always invokes the closure passed on the most recent render. It exists
// for event handlers that need to observe fresh render-scoped values
// without their own identity changing.
//
// The returned callback is event-only: invoking it while a render is in
// progress on the calling goroutine panics with [REFLOW E003]. Renders are
// pure computations of the view; state transitions belong in event
// handlers and effects.
//
// Outside a render there is no slot to stabilize against and fn is
// returned as-is.
func NewCallback[A any](fn func(A)) func(A) {
	owner := getCurrentOwner()
	inRender := owner != nil && isInRender()

	if owner != nil {
		owner.TrackHook(HookCallback)
	}
	if !inRender {
		return fn
	}

	if slot := owner.UseHookSlot(); slot != nil {
		cs, ok := slot.(*callbackSlot[A])
		if !ok {
			panic("reflow: hook slot type mismatch for Callback")
		}
		cs.mu.Lock()
		cs.latest = fn
		cs.mu.Unlock()
		return cs.invoke
	}

	cs := &callbackSlot[A]{latest: fn}
	cs.invoke = func(arg A) {
		if isInRender() {
			panic("[REFLOW E003] callback invoked during render: stable callbacks are event-only")
		}
		cs.mu.RLock()
		latest := cs.latest
		cs.mu.RUnlock()
		latest(arg)
	}
	owner.SetHookSlot(cs)
	return cs.invoke
}
