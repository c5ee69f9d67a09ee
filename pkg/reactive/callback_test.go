package reactive

import (
	"strings"
	"testing"
)

func TestCallbackStableIdentityReadsLatest(t *testing.T) {
	owner := NewOwner(nil)
	defer owner.Dispose()

	var got []string
	render := func(label string) func(string) {
		var cb func(string)
		WithOwner(owner, func() {
			owner.StartRender()
			cb = NewCallback(func(arg string) {
				got = append(got, label+":"+arg)
			})
			owner.EndRender()
		})
		return cb
	}

	cb1 := render("first")
	cb1("a")

	cb2 := render("second")
	// The wrapper from the first render must observe the second render's
	// closure.
	cb1("b")
	cb2("c")

	want := []string{"first:a", "second:b", "second:c"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestCallbackPanicsDuringRender(t *testing.T) {
	owner := NewOwner(nil)
	defer owner.Dispose()

	var cb func(int)
	WithOwner(owner, func() {
		owner.StartRender()
		cb = NewCallback(func(int) {})
		owner.EndRender()
	})

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic when callback is invoked during render")
		}
	}()

	WithOwner(owner, func() {
		owner.StartRender()
		defer owner.EndRender()
		cb(1)
	})
}

func TestCallbackOutsideRenderPassesThrough(t *testing.T) {
	called := false
	cb := NewCallback(func(int) { called = true })
	cb(1)
	if !called {
		t.Error("callback created outside render should invoke directly")
	}
}
