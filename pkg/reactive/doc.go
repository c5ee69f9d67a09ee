// Package reactive provides the fine-grained reactive runtime that Reflow
// components are built on. Dependencies are tracked automatically at
// runtime: reading a signal during a tracked context (component render,
// memo computation, or effect execution) subscribes the current listener
// to that signal's changes.
//
// # Core Types
//
// Signal[T] is a reactive value container:
//
//	count := NewSignal(0)
//	value := count.Get()  // Read (subscribes current listener)
//	count.Set(5)          // Write (notifies subscribers)
//	count.Update(func(n int) int { return n + 1 })
//
// Memo[T] is a cached derived computation that tracks its own dependencies:
//
//	doubled := NewMemo(func() int { return count.Get() * 2 })
//
// NewKeyedMemo caches a computation against an explicit dependency value
// instead of tracked reads. The result is recomputed only when the
// dependency changes under the configured equality:
//
//	label := NewKeyedMemo(user, func(u User) string { return expensiveFormat(u) })
//
// NewCallback returns a callback whose identity is stable across renders
// of the same component but which always invokes the closure from the most
// recent render. Invoking it during the render phase panics; it exists for
// event handlers, not for render-time computation.
//
// Effects run side effects after the render that created them commits, and
// re-run when their dependencies change:
//
//	CreateEffect(func() Cleanup {
//	    fmt.Println("count is", count.Get())
//	    return nil
//	})
//
// # Hook Slots
//
// Constructors called during a component render (between Owner.StartRender
// and Owner.EndRender) store their result in the owner's hook slots, so the
// same instance is returned on every subsequent render. This requires the
// hook-order discipline: constructors must be called unconditionally and in
// the same order on every render. When DebugMode is set, order violations
// panic with a [REFLOW E002] error.
//
// # Thread Safety
//
// All primitives are safe for concurrent use. The tracking context is
// per-goroutine; spawning goroutines that create reactive state requires
// explicit propagation via WithOwner.
package reactive
