package live

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/reflow-dev/reflow/pkg/metrics"
	"github.com/reflow-dev/reflow/pkg/reactive"
	"github.com/reflow-dev/reflow/pkg/runtime"
)

// Session is one live connection: a mounted component tree plus the event
// handlers it registered during mount.
type Session struct {
	id   uint64
	conn *websocket.Conn
	root *runtime.Root

	handlers   map[string]func(Event)
	handlersMu sync.RWMutex

	// send is drained by a single writer goroutine; the websocket
	// connection does not allow concurrent writes.
	send chan htmlFrame
	done chan struct{}

	closeOnce sync.Once

	logger *slog.Logger
	tracer trace.Tracer
}

func newSession(conn *websocket.Conn, logger *slog.Logger, tracer trace.Tracer) *Session {
	return &Session{
		id:       reactive.NextID(),
		conn:     conn,
		handlers: make(map[string]func(Event)),
		send:     make(chan htmlFrame, 16),
		done:     make(chan struct{}),
		logger:   logger.With("session", conn.RemoteAddr().String()),
		tracer:   tracer,
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() uint64 {
	return s.id
}

// HandleFunc registers a handler for a named client event. Call it during
// mount; handlers registered later are picked up on the next event.
func (s *Session) HandleFunc(event string, fn func(Event)) {
	s.handlersMu.Lock()
	defer s.handlersMu.Unlock()
	s.handlers[event] = fn
}

func (s *Session) handler(event string) func(Event) {
	s.handlersMu.RLock()
	defer s.handlersMu.RUnlock()
	return s.handlers[event]
}

// run owns the session lifecycle: it mounts the app, pushes the initial
// render, and pumps frames until the connection drops or ctx is done.
func (s *Session) run(ctx context.Context, app App) {
	s.root = runtime.Mount(app.Mount(s))
	defer s.root.Close()

	go s.writeLoop()
	defer s.close()

	s.push(s.root.HTML())

	// Out-of-band writes (timers, other sessions via shared signals) wake
	// the root without a client event; push those renders too.
	go s.wakeLoop(ctx)

	for {
		var frame eventFrame
		if err := s.conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("websocket read failed", "err", err)
				metrics.RecordWebSocketError("read")
			}
			return
		}
		s.dispatch(ctx, frame)
	}
}

// dispatch runs one client event through its handler and pushes the
// resulting render, if any.
func (s *Session) dispatch(ctx context.Context, frame eventFrame) {
	spanCtx, span := s.tracer.Start(ctx, "reflow.event",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("reflow.event", frame.Event),
			attribute.Int64("reflow.session_id", int64(s.id)),
		))
	defer span.End()

	start := time.Now()

	fn := s.handler(frame.Event)
	if fn == nil {
		s.logger.Warn("no handler for event", "event", frame.Event)
		span.SetStatus(codes.Error, "unknown event")
		metrics.RecordEvent(frame.Event, "unknown", time.Since(start))
		return
	}

	rendered := s.root.Dispatch(spanCtx, func() {
		fn(Event{Name: frame.Event, Data: frame.Data})
	})
	if rendered {
		s.push(s.root.HTML())
	}

	span.SetAttributes(attribute.Bool("reflow.rendered", rendered))
	span.SetStatus(codes.Ok, "")
	metrics.RecordEvent(frame.Event, "ok", time.Since(start))
}

// wakeLoop flushes and pushes renders triggered outside client events.
func (s *Session) wakeLoop(ctx context.Context) {
	for {
		select {
		case <-s.root.Wake():
			if s.root.Flush(ctx) {
				s.push(s.root.HTML())
			}
		case <-s.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Session) push(html string) {
	select {
	case s.send <- htmlFrame{Type: "html", HTML: html}:
	case <-s.done:
	}
}

// writeLoop is the sole writer on the connection.
func (s *Session) writeLoop() {
	for {
		select {
		case frame := <-s.send:
			if err := s.conn.WriteJSON(frame); err != nil {
				s.logger.Warn("websocket write failed", "err", err)
				metrics.RecordWebSocketError("write")
				s.close()
				return
			}
			metrics.RecordPatch()
		case <-s.done:
			return
		}
	}
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}
