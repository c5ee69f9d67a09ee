package reactive

import (
	"sync"
	"testing"
)

func TestSignalBasic(t *testing.T) {
	count := NewSignal(0)

	if count.Get() != 0 {
		t.Errorf("expected initial value 0, got %d", count.Get())
	}

	count.Set(5)
	if count.Get() != 5 {
		t.Errorf("expected value 5, got %d", count.Get())
	}

	count.Update(func(n int) int { return n * 2 })
	if count.Get() != 10 {
		t.Errorf("expected value 10, got %d", count.Get())
	}
}

func TestSignalPeekDoesNotSubscribe(t *testing.T) {
	count := NewSignal(42)

	listener := newTestListener()
	WithListener(listener, func() {
		if v := count.Peek(); v != 42 {
			t.Errorf("expected 42, got %d", v)
		}
	})

	count.Set(100)
	if listener.getDirtyCount() != 0 {
		t.Errorf("Peek should not subscribe, got %d notifications", listener.getDirtyCount())
	}
}

func TestSignalSubscription(t *testing.T) {
	count := NewSignal(0)
	listener := newTestListener()

	WithListener(listener, func() {
		_ = count.Get()
	})

	count.Set(1)
	if listener.getDirtyCount() != 1 {
		t.Errorf("expected 1 notification, got %d", listener.getDirtyCount())
	}
}

func TestSignalEqualValueDoesNotNotify(t *testing.T) {
	count := NewSignal(7)
	listener := newTestListener()

	WithListener(listener, func() {
		_ = count.Get()
	})

	count.Set(7)
	if listener.getDirtyCount() != 0 {
		t.Errorf("setting an equal value should not notify, got %d", listener.getDirtyCount())
	}
}

func TestSignalWithEquals(t *testing.T) {
	type point struct{ X, Y int }

	// Equality on X only: changes to Y are invisible.
	p := NewSignal(point{1, 1}).WithEquals(func(a, b point) bool {
		return a.X == b.X
	})
	listener := newTestListener()

	WithListener(listener, func() {
		_ = p.Get()
	})

	p.Set(point{1, 99})
	if listener.getDirtyCount() != 0 {
		t.Errorf("custom equality should suppress notification, got %d", listener.getDirtyCount())
	}

	p.Set(point{2, 99})
	if listener.getDirtyCount() != 1 {
		t.Errorf("expected 1 notification after X changed, got %d", listener.getDirtyCount())
	}
}

func TestSignalDeduplicatesSubscribers(t *testing.T) {
	count := NewSignal(0)
	listener := newTestListener()

	WithListener(listener, func() {
		_ = count.Get()
		_ = count.Get()
	})

	count.Set(1)
	if listener.getDirtyCount() != 1 {
		t.Errorf("double read should subscribe once, got %d notifications", listener.getDirtyCount())
	}
}

func TestSignalConcurrentAccess(t *testing.T) {
	count := NewSignal(0)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				count.Update(func(n int) int { return n + 1 })
			}
		}()
	}
	wg.Wait()

	if count.Get() != 1000 {
		t.Errorf("expected 1000 after concurrent updates, got %d", count.Get())
	}
}

func TestDefaultEquals(t *testing.T) {
	if !DefaultEquals(3, 3) {
		t.Error("ints should compare equal")
	}
	if DefaultEquals("a", "b") {
		t.Error("distinct strings should not compare equal")
	}
	if !DefaultEquals([]int{1, 2}, []int{1, 2}) {
		t.Error("DeepEqual fallback should treat equal slices as equal")
	}

	// Structural, not identity: distinct pointers to equal values compare
	// equal under the default policy.
	a, b := &struct{ N int }{1}, &struct{ N int }{1}
	if !DefaultEquals(a, b) {
		t.Error("default policy is structural for pointers")
	}
}
