// Package runtime drives the render cycle for a mounted component tree.
// A Root re-renders its view whenever reactive state it read changes, runs
// pending effects after each render commits, and never renders more than
// once per meaningful change.
package runtime

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/reflow-dev/reflow/pkg/metrics"
	"github.com/reflow-dev/reflow/pkg/reactive"
)

// tracerName is the OpenTelemetry tracer for the render loop.
const tracerName = "reflow/runtime"

// defaultMaxPasses caps the number of render passes one Flush may take.
// Effects that keep writing state every pass would otherwise spin forever.
const defaultMaxPasses = 25

// View renders the component tree to its output form.
type View func() string

// Root mounts a View and owns its component scope. It implements
// reactive.Listener: any signal read during render subscribes the Root, so
// later writes mark it dirty and the next Flush re-renders.
type Root struct {
	id    uint64
	owner *reactive.Owner
	view  View

	// mu serializes render passes and protects html.
	mu   sync.Mutex
	html string

	dirty   atomic.Bool
	closed  atomic.Bool
	renders atomic.Int64

	// wake receives a token whenever the root becomes dirty, for push
	// transports waiting on changes.
	wake chan struct{}

	logger    *slog.Logger
	tracer    trace.Tracer
	maxPasses int
}

// Option configures a Root.
type Option func(*Root)

// WithLogger sets the logger. Defaults to slog.Default with a component
// attribute.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Root) {
		r.logger = logger
	}
}

// WithMaxPasses caps the render passes a single Flush may perform before
// giving up and logging a render-storm warning.
func WithMaxPasses(n int) Option {
	return func(r *Root) {
		if n > 0 {
			r.maxPasses = n
		}
	}
}

// Mount creates a Root for view and performs the initial render,
// including the post-commit effect run.
func Mount(view View, opts ...Option) *Root {
	r := &Root{
		id:        reactive.NextID(),
		owner:     reactive.NewOwner(nil),
		view:      view,
		wake:      make(chan struct{}, 1),
		logger:    slog.Default().With("component", "runtime"),
		tracer:    otel.Tracer(tracerName),
		maxPasses: defaultMaxPasses,
	}

	for _, opt := range opts {
		opt(r)
	}

	r.dirty.Store(true)
	r.Flush(context.Background())
	return r
}

// MarkDirty schedules a re-render. Implements reactive.Listener.
func (r *Root) MarkDirty() {
	if r.closed.Load() {
		return
	}
	r.dirty.Store(true)
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// ID implements reactive.Listener.
func (r *Root) ID() uint64 {
	return r.id
}

// Wake returns a channel that receives a token whenever the root becomes
// dirty. Transports select on it to learn when to Flush and push output.
func (r *Root) Wake() <-chan struct{} {
	return r.wake
}

// Flush re-renders while the root is dirty and returns whether any render
// happened. Effects run after each pass commits; if an effect writes state
// the loop renders again, up to the configured pass cap.
func (r *Root) Flush(ctx context.Context) bool {
	if r.closed.Load() {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	flushed := false
	for pass := 0; r.dirty.Swap(false); pass++ {
		if pass >= r.maxPasses {
			r.logger.Warn("render storm: pass budget exhausted, deferring",
				"passes", pass, "root", r.id)
			r.dirty.Store(true)
			break
		}
		r.renderPass(ctx, pass)
		flushed = true
	}

	return flushed
}

// renderPass performs one render and runs the effects it scheduled.
// Caller holds r.mu.
func (r *Root) renderPass(ctx context.Context, pass int) {
	_, span := r.tracer.Start(ctx, "reflow.render",
		trace.WithAttributes(
			attribute.Int64("reflow.root_id", int64(r.id)),
			attribute.Int("reflow.pass", pass),
		))
	defer span.End()

	start := time.Now()

	var out string
	reactive.WithOwner(r.owner, func() {
		reactive.WithListener(r, func() {
			r.owner.StartRender()
			defer r.owner.EndRender()
			out = r.view()
		})
	})
	r.html = out
	r.renders.Add(1)

	// Commit is done; effects observe the rendered state.
	reactive.WithOwner(r.owner, func() {
		r.owner.RunPendingEffects()
	})

	metrics.RecordRender(time.Since(start))
}

// Dispatch runs an event handler outside the render phase and then
// flushes. Returns whether the handler's writes caused a re-render.
func (r *Root) Dispatch(ctx context.Context, fn func()) bool {
	if r.closed.Load() {
		return false
	}
	fn()
	return r.Flush(ctx)
}

// HTML returns the output of the most recent render.
func (r *Root) HTML() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.html
}

// RenderCount returns the number of render passes performed. Tests use it
// to assert that a change cost exactly one render.
func (r *Root) RenderCount() int64 {
	return r.renders.Load()
}

// Close disposes the component scope. The root stops rendering; effects
// and cleanups registered during renders run their teardown.
func (r *Root) Close() {
	if r.closed.Swap(true) {
		return
	}
	r.owner.Dispose()
}
