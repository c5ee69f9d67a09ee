// Package rtest provides testing helpers for Reflow components. It wraps
// a runtime.Root with assertions on rendered output and render counts so
// component tests stay short.
//
//	h := rtest.Mount(func() string {
//	    draft, setDraft := derive.UseState(saved.Get())
//	    ...
//	})
//	defer h.Close()
//
//	h.Dispatch(func() { setDraft.Set("x") })
//	h.ExpectContains(t, "x")
//	h.ExpectRenders(t, 2)
package rtest

import (
	"context"
	"strings"
	"testing"

	"github.com/reflow-dev/reflow/pkg/runtime"
)

// Harness drives a mounted component in tests.
type Harness struct {
	root *runtime.Root
}

// Mount mounts view and performs the initial render.
func Mount(view runtime.View) *Harness {
	return &Harness{root: runtime.Mount(view)}
}

// Dispatch runs fn as an event handler and flushes, returning whether a
// re-render happened.
func (h *Harness) Dispatch(fn func()) bool {
	return h.root.Dispatch(context.Background(), fn)
}

// Flush re-renders if the component is dirty.
func (h *Harness) Flush() bool {
	return h.root.Flush(context.Background())
}

// HTML returns the last rendered output.
func (h *Harness) HTML() string {
	return h.root.HTML()
}

// Renders returns the number of render passes so far.
func (h *Harness) Renders() int64 {
	return h.root.RenderCount()
}

// Close disposes the component scope.
func (h *Harness) Close() {
	h.root.Close()
}

// ExpectContains asserts that the rendered output contains expected.
func (h *Harness) ExpectContains(t *testing.T, expected string) {
	t.Helper()
	if html := h.HTML(); !strings.Contains(html, expected) {
		t.Errorf("expected rendered output to contain %q, got:\n%s", expected, html)
	}
}

// ExpectNotContains asserts that the rendered output does not contain
// unexpected.
func (h *Harness) ExpectNotContains(t *testing.T, unexpected string) {
	t.Helper()
	if html := h.HTML(); strings.Contains(html, unexpected) {
		t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, html)
	}
}

// ExpectRenders asserts the total number of render passes. Use it to pin
// down "exactly one render per change" behavior.
func (h *Harness) ExpectRenders(t *testing.T, want int64) {
	t.Helper()
	if got := h.Renders(); got != want {
		t.Errorf("expected %d render passes, got %d", want, got)
	}
}
