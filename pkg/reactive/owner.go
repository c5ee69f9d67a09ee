package reactive

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// HookType identifies the kind of hook call for order validation.
type HookType uint8

const (
	HookSignal HookType = iota + 1
	HookMemo
	HookKeyedMemo
	HookCallback
	HookEffect
)

// String returns a human-readable name for the hook type.
func (h HookType) String() string {
	switch h {
	case HookSignal:
		return "Signal"
	case HookMemo:
		return "Memo"
	case HookKeyedMemo:
		return "KeyedMemo"
	case HookCallback:
		return "Callback"
	case HookEffect:
		return "Effect"
	default:
		return "Unknown"
	}
}

// hookRecord records a single hook call for order validation.
type hookRecord struct {
	Type HookType
}

// Owner represents a component scope that owns reactive primitives. When
// an Owner is disposed, every effect, cleanup, and child owner it contains
// is disposed with it.
//
// Owners form a hierarchy mirroring the component tree: each component's
// Owner is a child of its parent component's Owner.
type Owner struct {
	id uint64

	// parent is nil for a root Owner.
	parent *Owner

	children   []*Owner
	childrenMu sync.Mutex

	effects   []*Effect
	effectsMu sync.Mutex

	// cleanups are functions registered via OnCleanup, run on Dispose
	// in reverse order.
	cleanups   []func()
	cleanupsMu sync.Mutex

	// pendingEffects are effects scheduled to run after the render commits.
	pendingEffects   []*Effect
	pendingEffectsMu sync.Mutex

	disposed atomic.Bool

	// Dev-mode hook order tracking (only consulted when DebugMode is set).
	hookOrder   []hookRecord
	hookIndex   int
	renderCount int

	// Hook slot storage for stable identity across renders. Always active,
	// not just in DebugMode: hooks need stable identity for correctness.
	hookSlots   []any
	hookSlotIdx int
}

// NewOwner creates an Owner with the given parent, registering it as a
// child. A nil parent creates a root Owner.
func NewOwner(parent *Owner) *Owner {
	o := &Owner{
		id:     NextID(),
		parent: parent,
	}

	if parent != nil {
		parent.addChild(o)
	}

	return o
}

// ID returns the unique identifier for this Owner.
func (o *Owner) ID() uint64 {
	return o.id
}

// Parent returns the parent Owner, or nil for a root Owner.
func (o *Owner) Parent() *Owner {
	return o.parent
}

// IsDisposed reports whether this Owner has been disposed.
func (o *Owner) IsDisposed() bool {
	return o.disposed.Load()
}

func (o *Owner) addChild(child *Owner) {
	o.childrenMu.Lock()
	defer o.childrenMu.Unlock()
	o.children = append(o.children, child)
}

func (o *Owner) removeChild(child *Owner) {
	o.childrenMu.Lock()
	defer o.childrenMu.Unlock()

	for i, c := range o.children {
		if c == child {
			o.children = append(o.children[:i], o.children[i+1:]...)
			return
		}
	}
}

// registerEffect adds an effect to this Owner for disposal tracking.
func (o *Owner) registerEffect(e *Effect) {
	if o.disposed.Load() {
		return
	}

	o.effectsMu.Lock()
	defer o.effectsMu.Unlock()
	o.effects = append(o.effects, e)
}

// OnCleanup registers a function to run when this Owner is disposed.
// If the Owner is already disposed the function runs immediately.
func (o *Owner) OnCleanup(fn func()) {
	if o.disposed.Load() {
		fn()
		return
	}

	o.cleanupsMu.Lock()
	defer o.cleanupsMu.Unlock()
	o.cleanups = append(o.cleanups, fn)
}

// scheduleEffect queues an effect to run after the render phase.
func (o *Owner) scheduleEffect(e *Effect) {
	if o.disposed.Load() {
		return
	}

	o.pendingEffectsMu.Lock()
	defer o.pendingEffectsMu.Unlock()
	o.pendingEffects = append(o.pendingEffects, e)
}

// RunPendingEffects executes all pending effects on this Owner and its
// children. The runtime calls this after each render commits.
func (o *Owner) RunPendingEffects() {
	if o.disposed.Load() {
		return
	}

	o.pendingEffectsMu.Lock()
	effects := o.pendingEffects
	o.pendingEffects = nil
	o.pendingEffectsMu.Unlock()

	for _, e := range effects {
		if e.pending.Load() {
			e.run()
		}
	}

	o.childrenMu.Lock()
	children := make([]*Owner, len(o.children))
	copy(children, o.children)
	o.childrenMu.Unlock()

	for _, child := range children {
		child.RunPendingEffects()
	}
}

// HasPendingEffects reports whether this Owner or any child has effects
// waiting to run.
func (o *Owner) HasPendingEffects() bool {
	if o.disposed.Load() {
		return false
	}

	o.pendingEffectsMu.Lock()
	hasPending := len(o.pendingEffects) > 0
	o.pendingEffectsMu.Unlock()

	if hasPending {
		return true
	}

	o.childrenMu.Lock()
	children := make([]*Owner, len(o.children))
	copy(children, o.children)
	o.childrenMu.Unlock()

	for _, child := range children {
		if child.HasPendingEffects() {
			return true
		}
	}

	return false
}

// Dispose disposes this Owner plus all children, effects, and cleanups.
// Children are disposed in reverse creation order.
func (o *Owner) Dispose() {
	if o.disposed.Swap(true) {
		return
	}

	if o.parent != nil {
		o.parent.removeChild(o)
	}

	o.childrenMu.Lock()
	children := make([]*Owner, len(o.children))
	copy(children, o.children)
	o.children = nil
	o.childrenMu.Unlock()

	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}

	o.effectsMu.Lock()
	effects := o.effects
	o.effects = nil
	o.effectsMu.Unlock()

	for _, e := range effects {
		e.dispose()
	}

	o.cleanupsMu.Lock()
	cleanups := o.cleanups
	o.cleanups = nil
	o.cleanupsMu.Unlock()

	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}

	o.pendingEffectsMu.Lock()
	o.pendingEffects = nil
	o.pendingEffectsMu.Unlock()
}

// StartRender is called at the beginning of a component render. It marks
// the render phase on the current goroutine and resets the hook slot index
// so hook constructors see their slots in first-render order.
func (o *Owner) StartRender() {
	beginRender()

	o.hookSlotIdx = 0

	if DebugMode {
		o.hookIndex = 0
	}
}

// EndRender is called at the end of a component render. In debug mode it
// validates that the render used every hook recorded on the first render.
func (o *Owner) EndRender() {
	endRender()

	if !DebugMode {
		return
	}
	if o.renderCount == 0 {
		// First render complete; lock in the hook order.
		o.renderCount = 1
	} else if o.hookIndex < len(o.hookOrder) {
		panic(fmt.Sprintf("[REFLOW E002] hook order changed: expected %d hooks, got %d",
			len(o.hookOrder), o.hookIndex))
	}
}

// TrackHook records a hook call during render. In debug mode it validates
// that hooks are called in the same order on every render, panicking on
// violations.
func (o *Owner) TrackHook(ht HookType) {
	if !DebugMode {
		return
	}

	if o.renderCount == 0 {
		o.hookOrder = append(o.hookOrder, hookRecord{Type: ht})
	} else {
		if o.hookIndex >= len(o.hookOrder) {
			panic(fmt.Sprintf("[REFLOW E002] hook order changed: extra %s hook at index %d",
				ht, o.hookIndex))
		}
		expected := o.hookOrder[o.hookIndex]
		if expected.Type != ht {
			panic(fmt.Sprintf("[REFLOW E002] hook order changed at index %d: expected %s, got %s",
				o.hookIndex, expected.Type, ht))
		}
	}
	o.hookIndex++
}

// UseHookSlot returns the stored value for the current hook slot, or nil
// on the first render. Callers that get nil must create their value and
// store it with SetHookSlot.
func (o *Owner) UseHookSlot() any {
	idx := o.hookSlotIdx
	o.hookSlotIdx++

	if idx < len(o.hookSlots) {
		return o.hookSlots[idx]
	}

	return nil
}

// SetHookSlot stores a value in the current hook slot. Must be called
// after UseHookSlot returned nil.
func (o *Owner) SetHookSlot(value any) {
	o.hookSlots = append(o.hookSlots, value)
}
