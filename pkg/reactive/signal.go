package reactive

import (
	"reflect"
	"sync"
)

// signalBase provides type-erased subscriber management. It is embedded in
// Signal[T] and Memo[T] to share subscription logic.
type signalBase struct {
	id uint64

	subs  []Listener
	subMu sync.RWMutex
}

// subscribe adds a listener, deduplicating by listener ID.
func (s *signalBase) subscribe(l Listener) {
	if l == nil {
		return
	}

	s.subMu.Lock()
	defer s.subMu.Unlock()

	lid := l.ID()
	for _, existing := range s.subs {
		if existing.ID() == lid {
			return
		}
	}

	s.subs = append(s.subs, l)
}

func (s *signalBase) unsubscribe(l Listener) {
	if l == nil {
		return
	}

	s.subMu.Lock()
	defer s.subMu.Unlock()

	lid := l.ID()
	for i, existing := range s.subs {
		if existing.ID() == lid {
			// Order doesn't matter; swap with last.
			s.subs[i] = s.subs[len(s.subs)-1]
			s.subs = s.subs[:len(s.subs)-1]
			return
		}
	}
}

// notifySubscribers notifies all subscribers that this signal changed.
// Copy-before-notify so no lock is held during notification.
func (s *signalBase) notifySubscribers() {
	s.subMu.RLock()
	subs := make([]Listener, len(s.subs))
	copy(subs, s.subs)
	s.subMu.RUnlock()

	if getBatchDepth() > 0 {
		for _, sub := range subs {
			queuePendingUpdate(sub)
		}
	} else {
		for _, sub := range subs {
			sub.MarkDirty()
		}
	}
}

// Signal is a reactive value container. Reading a Signal during a tracked
// context (component render, memo computation, or effect execution)
// subscribes the current listener to changes.
//
// When created during a component render, NewSignal stores the signal in
// the owner's hook slot so the same instance survives re-renders.
type Signal[T any] struct {
	base signalBase

	value T
	mu    sync.RWMutex

	// equal determines whether a write changed the value.
	// nil means DefaultEquals.
	equal func(T, T) bool
}

// NewSignal creates a signal with the given initial value.
//
// This is a hook-style constructor: during a render it participates in
// hook-slot storage, returning the instance from the first render and
// ignoring the initial value on subsequent renders.
func NewSignal[T any](initial T) *Signal[T] {
	owner := getCurrentOwner()
	inRender := owner != nil && isInRender()

	if owner != nil {
		owner.TrackHook(HookSignal)
	}
	if inRender {
		if slot := owner.UseHookSlot(); slot != nil {
			sig, ok := slot.(*Signal[T])
			if !ok {
				panic("reflow: hook slot type mismatch for Signal")
			}
			return sig
		}
	}

	s := &Signal[T]{
		base:  signalBase{id: NextID()},
		value: initial,
	}

	if inRender {
		owner.SetHookSlot(s)
	}

	return s
}

// Get returns the current value and subscribes the current listener, if any.
func (s *Signal[T]) Get() T {
	s.mu.RLock()
	value := s.value
	s.mu.RUnlock()

	// Track dependency after releasing the value lock to avoid deadlock
	// with writes happening during notification.
	if listener := getCurrentListener(); listener != nil {
		s.base.subscribe(listener)

		if e, ok := listener.(*Effect); ok {
			e.addSource(&s.base)
		}
		if m, ok := listener.(memoBase); ok {
			m.addSource(&s.base)
		}
	}

	return value
}

// Peek returns the current value without subscribing.
func (s *Signal[T]) Peek() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set updates the value and notifies subscribers if it changed under the
// signal's equality function.
func (s *Signal[T]) Set(value T) {
	s.mu.Lock()
	changed := !s.equals(s.value, value)
	if changed {
		s.value = value
	}
	s.mu.Unlock()

	if changed {
		s.base.notifySubscribers()
	}
}

// Update atomically reads and updates the value.
func (s *Signal[T]) Update(fn func(T) T) {
	s.mu.Lock()
	oldValue := s.value
	newValue := fn(oldValue)
	changed := !s.equals(oldValue, newValue)
	if changed {
		s.value = newValue
	}
	s.mu.Unlock()

	if changed {
		s.base.notifySubscribers()
	}
}

// WithEquals configures a custom equality function and returns the signal.
// Useful when DefaultEquals is too expensive or has the wrong semantics
// for T.
func (s *Signal[T]) WithEquals(fn func(T, T) bool) *Signal[T] {
	s.equal = fn
	return s
}

// ID returns the unique identifier for this signal.
func (s *Signal[T]) ID() uint64 {
	return s.base.id
}

func (s *Signal[T]) equals(a, b T) bool {
	if s.equal != nil {
		return s.equal(a, b)
	}
	return DefaultEquals(a, b)
}

// DefaultEquals is the runtime's default change-detection policy: == for
// common comparable kinds, reflect.DeepEqual for everything else. Note that
// DeepEqual is structural, so two distinct but structurally equal instances
// compare equal; supply a custom equality where identity semantics are
// required.
func DefaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		return av == any(b).(int)
	case int8:
		return av == any(b).(int8)
	case int16:
		return av == any(b).(int16)
	case int32:
		return av == any(b).(int32)
	case int64:
		return av == any(b).(int64)
	case uint:
		return av == any(b).(uint)
	case uint8:
		return av == any(b).(uint8)
	case uint16:
		return av == any(b).(uint16)
	case uint32:
		return av == any(b).(uint32)
	case uint64:
		return av == any(b).(uint64)
	case float32:
		return av == any(b).(float32)
	case float64:
		return av == any(b).(float64)
	case string:
		return av == any(b).(string)
	case bool:
		return av == any(b).(bool)
	default:
		return reflect.DeepEqual(a, b)
	}
}

// memoBase lets Signal recognize Memo listeners for source tracking.
// Needed because Memo is generic and cannot be type-asserted directly.
type memoBase interface {
	Listener
	addSource(source *signalBase)
}
