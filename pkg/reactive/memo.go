package reactive

import (
	"sync"
	"sync/atomic"
)

// Memo is a cached computation that tracks its dependencies automatically.
// When any dependency changes the memo is invalidated and recomputes on the
// next read. Memos are lazy: if several dependencies change before a read,
// the memo recomputes once.
//
// Memos can themselves be subscribed to, so chains of derived values work.
type Memo[T any] struct {
	base signalBase

	compute func() T

	value   T
	valueMu sync.RWMutex

	// valid is false when the cached value is stale.
	valid atomic.Bool

	sources   []*signalBase
	sourcesMu sync.Mutex

	equal func(T, T) bool

	// computing breaks infinite recursion on circular dependencies.
	computing atomic.Bool
}

// NewMemo creates a memo with the given computation. The computation runs
// lazily on first Get. Hook-slot stabilized when called during render; the
// compute function is refreshed each render so closures stay current.
func NewMemo[T any](compute func() T) *Memo[T] {
	owner := getCurrentOwner()
	inRender := owner != nil && isInRender()

	if owner != nil {
		owner.TrackHook(HookMemo)
	}
	if inRender {
		if slot := owner.UseHookSlot(); slot != nil {
			memo, ok := slot.(*Memo[T])
			if !ok {
				panic("reflow: hook slot type mismatch for Memo")
			}
			memo.compute = compute
			memo.valid.Store(false)
			return memo
		}
	}

	memo := &Memo[T]{
		base:    signalBase{id: NextID()},
		compute: compute,
	}

	if inRender {
		owner.SetHookSlot(memo)
	}

	return memo
}

// Get returns the memo's value, recomputing if necessary, and subscribes
// the current listener.
func (m *Memo[T]) Get() T {
	if listener := getCurrentListener(); listener != nil {
		m.base.subscribe(listener)

		if e, ok := listener.(*Effect); ok {
			e.addSource(&m.base)
		}
		if mb, ok := listener.(memoBase); ok {
			mb.addSource(&m.base)
		}
	}

	if !m.valid.Load() {
		m.recompute()
	}

	m.valueMu.RLock()
	value := m.value
	m.valueMu.RUnlock()
	return value
}

// Peek returns the value without subscribing. Still recomputes when stale.
func (m *Memo[T]) Peek() T {
	if !m.valid.Load() {
		m.recompute()
	}
	m.valueMu.RLock()
	value := m.value
	m.valueMu.RUnlock()
	return value
}

// MarkDirty invalidates the memo and propagates to subscribers.
// Implements Listener.
func (m *Memo[T]) MarkDirty() {
	if m.valid.CompareAndSwap(true, false) {
		m.base.notifySubscribers()
	}
}

// ID implements Listener.
func (m *Memo[T]) ID() uint64 {
	return m.base.id
}

// addSource implements memoBase.
func (m *Memo[T]) addSource(source *signalBase) {
	m.sourcesMu.Lock()
	defer m.sourcesMu.Unlock()

	for _, s := range m.sources {
		if s == source {
			return
		}
	}
	m.sources = append(m.sources, source)
}

// WithEquals configures a custom equality function and returns the memo.
func (m *Memo[T]) WithEquals(fn func(T, T) bool) *Memo[T] {
	m.equal = fn
	return m
}

func (m *Memo[T]) recompute() {
	if m.computing.Swap(true) {
		// Circular dependency; keep the stale value.
		return
	}
	defer m.computing.Store(false)

	m.sourcesMu.Lock()
	for _, source := range m.sources {
		source.unsubscribe(m)
	}
	m.sources = m.sources[:0]
	m.sourcesMu.Unlock()

	old := setCurrentListener(m)
	newValue := m.compute()
	setCurrentListener(old)

	m.valueMu.Lock()
	m.value = newValue
	m.valueMu.Unlock()

	m.valid.Store(true)
}

var _ memoBase = (*Memo[int])(nil)
