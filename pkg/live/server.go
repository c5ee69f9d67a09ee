package live

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/reflow-dev/reflow/pkg/metrics"
	"github.com/reflow-dev/reflow/pkg/runtime"
)

// tracerName is the OpenTelemetry tracer for the live transport.
const tracerName = "reflow/live"

// App builds a per-session view. Mount is called once per connection and
// is where event handlers are registered via Session.HandleFunc.
type App interface {
	Mount(s *Session) runtime.View
}

// AppFunc adapts a function to the App interface.
type AppFunc func(s *Session) runtime.View

// Mount implements App.
func (f AppFunc) Mount(s *Session) runtime.View {
	return f(s)
}

// Config configures a live Server.
type Config struct {
	// Addr is the listen address (default ":8080").
	Addr string

	// CheckOrigin validates the Origin header during the WebSocket
	// upgrade. Default allows all origins; tighten in production.
	CheckOrigin func(r *http.Request) bool

	// ReadBufferSize and WriteBufferSize size the WebSocket buffers.
	ReadBufferSize  int
	WriteBufferSize int

	// ShutdownTimeout bounds graceful shutdown (default 5s).
	ShutdownTimeout time.Duration

	// ServeMetrics exposes Prometheus metrics on /metrics when set.
	ServeMetrics bool
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:            ":8080",
		CheckOrigin:     func(*http.Request) bool { return true },
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		ShutdownTimeout: 5 * time.Second,
	}
}

// Server accepts live connections and runs one Session per connection.
type Server struct {
	app    App
	config *Config

	upgrader websocket.Upgrader
	router   chi.Router

	sessions   map[uint64]*Session
	sessionsMu sync.Mutex

	httpServer *http.Server

	logger *slog.Logger
	tracer trace.Tracer
}

// New creates a Server for app. A nil config uses DefaultConfig, and unset
// config fields fall back to their defaults.
func New(app App, config *Config) *Server {
	defaults := DefaultConfig()
	if config == nil {
		config = defaults
	} else {
		if config.Addr == "" {
			config.Addr = defaults.Addr
		}
		if config.CheckOrigin == nil {
			config.CheckOrigin = defaults.CheckOrigin
		}
		if config.ReadBufferSize == 0 {
			config.ReadBufferSize = defaults.ReadBufferSize
		}
		if config.WriteBufferSize == 0 {
			config.WriteBufferSize = defaults.WriteBufferSize
		}
		if config.ShutdownTimeout == 0 {
			config.ShutdownTimeout = defaults.ShutdownTimeout
		}
	}

	s := &Server{
		app:    app,
		config: config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		sessions: make(map[uint64]*Session),
		logger:   slog.Default().With("component", "live"),
		tracer:   otel.Tracer(tracerName),
	}

	r := chi.NewRouter()
	r.Get("/", s.handleIndex)
	r.Get("/live", s.handleWebSocket)
	if config.ServeMetrics {
		r.Handle("/metrics", promhttp.Handler())
	}
	s.router = r

	return s
}

// Handler returns the server's http.Handler for mounting in an external
// router or an httptest server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down
// gracefully within the configured timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	s.logger.Info("listening", "addr", s.config.Addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

// handleWebSocket upgrades the connection and runs a session on it.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err)
		metrics.RecordWebSocketError("upgrade")
		return
	}

	sess := newSession(conn, s.logger, s.tracer)

	s.sessionsMu.Lock()
	s.sessions[sess.ID()] = sess
	s.sessionsMu.Unlock()
	metrics.RecordSessionOpen()

	defer func() {
		s.sessionsMu.Lock()
		delete(s.sessions, sess.ID())
		s.sessionsMu.Unlock()
		metrics.RecordSessionClose()
	}()

	sess.run(r.Context(), s.app)
}

// SessionCount returns the number of connected sessions.
func (s *Server) SessionCount() int {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	return len(s.sessions)
}

// indexShell is the thin client: it renders pushed HTML frames and
// forwards clicks and input events carrying data-event / data-input
// attributes.
const indexShell = `<!doctype html>
<html>
<head><meta charset="utf-8"><title>Reflow</title></head>
<body>
<div id="app"></div>
<script>
(function () {
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + "/live");
  var app = document.getElementById("app");
  ws.onmessage = function (m) {
    var frame = JSON.parse(m.data);
    if (frame.type === "html") { app.innerHTML = frame.html; }
  };
  app.addEventListener("click", function (e) {
    var t = e.target.closest("[data-event]");
    if (t) { ws.send(JSON.stringify({event: t.dataset.event})); }
  });
  app.addEventListener("input", function (e) {
    var t = e.target;
    if (t.dataset && t.dataset.input) {
      ws.send(JSON.stringify({event: t.dataset.input, data: {value: t.value}}));
    }
  });
})();
</script>
</body>
</html>
`

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexShell))
}
