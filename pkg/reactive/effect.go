package reactive

import (
	"sync"
	"sync/atomic"
)

// Effect is a reactive side effect. Effects created during a render are
// deferred until the render commits; afterwards they re-run whenever any
// signal or memo read during their execution changes. An effect may return
// a Cleanup that runs before the next re-run and on disposal.
type Effect struct {
	id uint64

	fn      func() Cleanup
	cleanup Cleanup

	sources   []*signalBase
	sourcesMu sync.Mutex

	owner *Owner

	// pending is set while the effect is scheduled for a run.
	pending atomic.Bool

	disposed atomic.Bool
}

// MarkDirty schedules the effect to re-run. Implements Listener.
func (e *Effect) MarkDirty() {
	if e.disposed.Load() {
		return
	}

	// CAS so the effect is scheduled at most once per run.
	if e.pending.CompareAndSwap(false, true) {
		if e.owner != nil {
			e.owner.scheduleEffect(e)
		} else {
			e.run()
		}
	}
}

// ID implements Listener.
func (e *Effect) ID() uint64 {
	return e.id
}

// run executes the effect function, re-establishing its dependency set.
func (e *Effect) run() {
	if e.disposed.Load() {
		return
	}

	e.pending.Store(false)

	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}

	e.sourcesMu.Lock()
	for _, source := range e.sources {
		source.unsubscribe(e)
	}
	e.sources = e.sources[:0]
	e.sourcesMu.Unlock()

	old := setCurrentListener(e)
	e.cleanup = e.fn()
	setCurrentListener(old)
}

// addSource is called by signals read during the effect's execution.
func (e *Effect) addSource(source *signalBase) {
	e.sourcesMu.Lock()
	defer e.sourcesMu.Unlock()

	for _, s := range e.sources {
		if s == source {
			return
		}
	}
	e.sources = append(e.sources, source)
}

func (e *Effect) dispose() {
	if e.disposed.Swap(true) {
		return
	}

	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}

	e.sourcesMu.Lock()
	for _, source := range e.sources {
		source.unsubscribe(e)
	}
	e.sources = nil
	e.sourcesMu.Unlock()
}

// CreateEffect creates an effect within the current owner context.
//
// During a render the effect is hook-slot stabilized and its first run is
// deferred until the owner's RunPendingEffects after the render commits;
// on later renders the existing effect is returned with its function
// refreshed. Outside a render the effect runs immediately.
//
// Example:
//
//	CreateEffect(func() Cleanup {
//	    fmt.Println("count is", count.Get())
//	    return func() { fmt.Println("cleanup") }
//	})
func CreateEffect(fn func() Cleanup) *Effect {
	owner := getCurrentOwner()
	inRender := owner != nil && isInRender()

	if owner != nil {
		owner.TrackHook(HookEffect)
	}
	if inRender {
		if slot := owner.UseHookSlot(); slot != nil {
			e, ok := slot.(*Effect)
			if !ok {
				panic("reflow: hook slot type mismatch for Effect")
			}
			e.fn = fn
			return e
		}
	}

	e := &Effect{
		id:    NextID(),
		fn:    fn,
		owner: owner,
	}

	if owner != nil {
		owner.registerEffect(e)
	}

	if inRender {
		owner.SetHookSlot(e)
		// Defer the first run until the render commits.
		e.pending.Store(true)
		owner.scheduleEffect(e)
	} else {
		e.run()
	}

	return e
}

// OnMount runs fn once after the creating render commits. Equivalent to
// CreateEffect with no reactive dependencies.
func OnMount(fn func()) {
	CreateEffect(func() Cleanup {
		fn()
		return nil
	})
}

// OnUnmount registers fn to run when the current owner is disposed.
func OnUnmount(fn func()) {
	if owner := getCurrentOwner(); owner != nil {
		owner.OnCleanup(fn)
	}
}
