package reactive

import (
	"runtime"
	"sync"
)

// trackingContext holds the reactive state for a goroutine. Each goroutine
// has its own context so concurrent component renders do not interfere.
type trackingContext struct {
	// currentOwner owns newly created signals, memos, and effects.
	currentOwner *Owner

	// currentListener is what is currently tracking dependencies.
	// nil means reads do not create subscriptions.
	currentListener Listener

	// renderDepth is > 0 while a component render is in progress.
	// Hook constructors consult it to decide whether to use hook slots,
	// and NewCallback wrappers refuse to run while it is set.
	renderDepth int

	// batchDepth tracks nested Batch calls. When > 0, signal updates
	// queue notifications instead of firing immediately.
	batchDepth int

	// pendingUpdates accumulates listeners to notify when the outermost
	// batch completes. Deduplicated by ID before notification.
	pendingUpdates []Listener
}

// trackingContexts stores per-goroutine tracking contexts.
var trackingContexts sync.Map

// goroutineID extracts the current goroutine's ID from the runtime stack.
// Implementation detail; never exposed.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	// The stack dump starts with "goroutine <id> ".
	var id uint64
	for i := 10; i < n; i++ {
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

func getTrackingContext() *trackingContext {
	gid := goroutineID()

	if ctx, ok := trackingContexts.Load(gid); ok {
		return ctx.(*trackingContext)
	}

	ctx := &trackingContext{}
	trackingContexts.Store(gid, ctx)
	return ctx
}

func getCurrentListener() Listener {
	return getTrackingContext().currentListener
}

// setCurrentListener sets the current listener and returns the previous one
// so it can be restored.
func setCurrentListener(l Listener) Listener {
	ctx := getTrackingContext()
	old := ctx.currentListener
	ctx.currentListener = l
	return old
}

func getCurrentOwner() *Owner {
	return getTrackingContext().currentOwner
}

func setCurrentOwner(o *Owner) *Owner {
	ctx := getTrackingContext()
	old := ctx.currentOwner
	ctx.currentOwner = o
	return old
}

// beginRender marks the start of a render pass on this goroutine.
// Called by Owner.StartRender.
func beginRender() {
	getTrackingContext().renderDepth++
}

// endRender marks the end of a render pass. Called by Owner.EndRender.
func endRender() {
	ctx := getTrackingContext()
	if ctx.renderDepth > 0 {
		ctx.renderDepth--
	}
}

func isInRender() bool {
	return getTrackingContext().renderDepth > 0
}

// IsRenderPhase reports whether a component render is in progress on the
// current goroutine. Event-only callbacks use this to reject render-time
// invocation.
func IsRenderPhase() bool {
	return isInRender()
}

func getBatchDepth() int {
	return getTrackingContext().batchDepth
}

func incrementBatchDepth() {
	getTrackingContext().batchDepth++
}

// decrementBatchDepth returns true when the outermost batch completes.
func decrementBatchDepth() bool {
	ctx := getTrackingContext()
	ctx.batchDepth--
	return ctx.batchDepth == 0
}

func queuePendingUpdate(l Listener) {
	ctx := getTrackingContext()
	ctx.pendingUpdates = append(ctx.pendingUpdates, l)
}

func drainPendingUpdates() []Listener {
	ctx := getTrackingContext()
	updates := ctx.pendingUpdates
	ctx.pendingUpdates = nil
	return updates
}

// WithOwner runs fn with the given owner as the current owner. Use this
// when spawning goroutines that need to create reactive state belonging
// to a specific component scope.
func WithOwner(owner *Owner, fn func()) {
	old := setCurrentOwner(owner)
	defer setCurrentOwner(old)
	fn()
}

// WithListener runs fn with the given listener receiving dependency
// subscriptions for every signal read inside fn.
func WithListener(l Listener, fn func()) {
	old := setCurrentListener(l)
	defer setCurrentListener(old)
	fn()
}
