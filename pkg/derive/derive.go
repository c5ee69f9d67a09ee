// Package derive provides derived local state: component state that
// mirrors an upstream value by default, can be overridden locally through
// its setter, and snaps back to the upstream value on the very render in
// which the upstream changes.
//
// The classic use is "state that resets on prop change" — a draft field
// seeded from a saved value, a selection seeded from a route parameter.
// The naive version (watch the upstream in an effect, write state from the
// effect) costs an extra render per upstream change: the first render
// after the change still shows the stale override, and only the effect's
// write corrects it. UseState avoids that cascade entirely by making the
// read path self-correcting.
//
// How it works: each upstream change mints a fresh generation id via a
// keyed memo. The override is stored as a {generation, value} record in a
// hook-slot signal. On every render the record's generation is compared
// against the current one; a match means the override is still valid, a
// mismatch means the upstream moved on and the live upstream value is
// returned directly — in the same render, without waiting for any state
// write to land. The record itself is only replaced on the next setter
// call, which stamps it with the current generation.
package derive

import (
	"sync/atomic"

	"github.com/reflow-dev/reflow/pkg/reactive"
)

// record pairs an override value with the upstream generation it was
// written against. Replaced whole on every write, never mutated.
type record[T any] struct {
	gen   uint64
	value T
}

// genCounter mints generation ids. Global and monotonic; ids are only ever
// compared for equality within one hook instance.
var genCounter atomic.Uint64

// Option configures one UseState call site.
type Option[T any] func(*options[T])

type options[T any] struct {
	equal func(T, T) bool
}

// WithEquals sets the equality policy used both to detect upstream changes
// and to suppress no-op setter calls. The default is
// reactive.DefaultEquals, which is structural for non-comparable kinds;
// pass a pointer or key comparison here when identity semantics are
// wanted instead.
func WithEquals[T any](fn func(T, T) bool) Option[T] {
	return func(o *options[T]) {
		o.equal = fn
	}
}

// Setter updates the derived value. Its behavior is stable across renders
// while always resolving against the latest render's derived value.
//
// Setter methods are event-only: calling them during a render panics (via
// the underlying reactive.NewCallback contract).
type Setter[T any] struct {
	apply func(func(T) T)
}

// Set replaces the derived value. Setting a value equal to the current
// derived value (under the configured equality) schedules no re-render.
func (s Setter[T]) Set(v T) {
	s.apply(func(T) T { return v })
}

// Update replaces the derived value with fn applied to the current derived
// value.
func (s Setter[T]) Update(fn func(T) T) {
	s.apply(fn)
}

// UseState returns local state seeded from upstream. It must be called
// unconditionally on every render of the owning component, with the
// current upstream value each time.
//
// The returned value tracks upstream until the setter is used, holds the
// override while upstream stays put, and re-adopts upstream the moment it
// changes — with exactly one render per meaningful change.
//
// Example:
//
//	func EditorView(saved *reactive.Signal[string]) string {
//	    draft, setDraft := derive.UseState(saved.Get())
//	    // ... render draft; call setDraft.Set from event handlers
//	}
func UseState[T any](upstream T, opts ...Option[T]) (T, Setter[T]) {
	o := options[T]{equal: reactive.DefaultEquals[T]}
	for _, opt := range opts {
		opt(&o)
	}
	eq := o.equal

	// A fresh generation is minted exactly when upstream changes; on every
	// other render the memoized generation is returned unchanged.
	gen := reactive.NewKeyedMemo(upstream, func(T) uint64 {
		return genCounter.Add(1)
	}, reactive.KeyedEquals(eq))

	// The record lives in the component's state slot. Reading it here
	// subscribes the component, so adopting an override re-renders.
	// The record's equality must follow the configured policy so that
	// identity-equal writes notify correctly.
	rec := reactive.NewSignal(record[T]{gen: gen, value: upstream}).
		WithEquals(func(a, b record[T]) bool {
			return a.gen == b.gen && eq(a.value, b.value)
		})

	derived := upstream
	if cur := rec.Get(); cur.gen == gen {
		derived = cur.value
	}

	// The closure below is replaced every render, so gen and upstream are
	// always the committed render's values when the setter fires.
	apply := reactive.NewCallback(func(fn func(T) T) {
		prev := upstream
		if cur := rec.Peek(); cur.gen == gen {
			prev = cur.value
		}
		next := fn(prev)
		if eq(prev, next) {
			return
		}
		rec.Set(record[T]{gen: gen, value: next})
	})

	return derived, Setter[T]{apply: apply}
}
