package rtest_test

import (
	"fmt"
	"testing"

	"github.com/reflow-dev/reflow/pkg/derive"
	"github.com/reflow-dev/reflow/pkg/reactive"
	"github.com/reflow-dev/reflow/pkg/rtest"
)

func TestHarnessDrivesComponent(t *testing.T) {
	count := reactive.NewSignal(0)

	h := rtest.Mount(func() string {
		return fmt.Sprintf("count=%d", count.Get())
	})
	defer h.Close()

	h.ExpectContains(t, "count=0")
	h.ExpectRenders(t, 1)

	if !h.Dispatch(func() { count.Set(3) }) {
		t.Fatal("expected the write to re-render")
	}
	h.ExpectContains(t, "count=3")
	h.ExpectNotContains(t, "count=0")
	h.ExpectRenders(t, 2)

	// A no-op write must not render.
	if h.Dispatch(func() { count.Set(3) }) {
		t.Error("equal write should not re-render")
	}
	h.ExpectRenders(t, 2)
}

func TestHarnessWithDerivedState(t *testing.T) {
	saved := reactive.NewSignal("a")

	var setDraft derive.Setter[string]
	h := rtest.Mount(func() string {
		draft, set := derive.UseState(saved.Get())
		setDraft = set
		return fmt.Sprintf("draft=%s", draft)
	})
	defer h.Close()

	h.Dispatch(func() { setDraft.Set("b") })
	h.ExpectContains(t, "draft=b")

	h.Dispatch(func() { saved.Set("c") })
	h.ExpectContains(t, "draft=c")
	h.ExpectRenders(t, 3)
}
