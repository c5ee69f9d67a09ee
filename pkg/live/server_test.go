package live_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/reflow-dev/reflow/pkg/derive"
	"github.com/reflow-dev/reflow/pkg/live"
	"github.com/reflow-dev/reflow/pkg/reactive"
	"github.com/reflow-dev/reflow/pkg/runtime"
)

// counterApp mounts a per-session counter with an "inc" event.
func counterApp() live.App {
	return live.AppFunc(func(s *live.Session) runtime.View {
		count := reactive.NewSignal(0)
		s.HandleFunc("inc", func(live.Event) {
			count.Update(func(n int) int { return n + 1 })
		})
		s.HandleFunc("set", func(e live.Event) {
			count.Set(e.Int("value"))
		})
		return func() string {
			return fmt.Sprintf(`<p data-event="inc">count=%d</p>`, count.Get())
		}
	})
}

type frame struct {
	Type string `json:"type"`
	HTML string `json:"html"`
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/live"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var f frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return f
}

func TestSessionLifecycle(t *testing.T) {
	srv := live.New(counterApp(), nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn := dial(t, ts)

	initial := readFrame(t, conn)
	if initial.Type != "html" {
		t.Fatalf("expected an html frame, got %q", initial.Type)
	}
	if !strings.Contains(initial.HTML, "count=0") {
		t.Errorf("unexpected initial render: %q", initial.HTML)
	}

	if err := conn.WriteJSON(map[string]any{"event": "inc"}); err != nil {
		t.Fatal(err)
	}
	if f := readFrame(t, conn); !strings.Contains(f.HTML, "count=1") {
		t.Errorf("expected count=1 after inc, got %q", f.HTML)
	}

	if err := conn.WriteJSON(map[string]any{"event": "set", "data": map[string]any{"value": 41}}); err != nil {
		t.Fatal(err)
	}
	if f := readFrame(t, conn); !strings.Contains(f.HTML, "count=41") {
		t.Errorf("expected count=41 after set, got %q", f.HTML)
	}

	// An unknown event is logged and dropped; the connection stays usable.
	if err := conn.WriteJSON(map[string]any{"event": "nope"}); err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteJSON(map[string]any{"event": "inc"}); err != nil {
		t.Fatal(err)
	}
	if f := readFrame(t, conn); !strings.Contains(f.HTML, "count=42") {
		t.Errorf("expected count=42, got %q", f.HTML)
	}
}

func TestSessionCountTracksConnections(t *testing.T) {
	srv := live.New(counterApp(), nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn := dial(t, ts)
	readFrame(t, conn)

	if got := srv.SessionCount(); got != 1 {
		t.Errorf("expected 1 session, got %d", got)
	}

	conn.Close()
	deadline := time.Now().Add(5 * time.Second)
	for srv.SessionCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("session was not reaped after disconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	srv := live.New(counterApp(), nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	a := dial(t, ts)
	b := dial(t, ts)
	readFrame(t, a)
	readFrame(t, b)

	if err := a.WriteJSON(map[string]any{"event": "inc"}); err != nil {
		t.Fatal(err)
	}
	if f := readFrame(t, a); !strings.Contains(f.HTML, "count=1") {
		t.Errorf("session a: got %q", f.HTML)
	}

	// Session b still sees its own untouched state.
	if err := b.WriteJSON(map[string]any{"event": "inc"}); err != nil {
		t.Fatal(err)
	}
	if f := readFrame(t, b); !strings.Contains(f.HTML, "count=1") {
		t.Errorf("session b: got %q", f.HTML)
	}
}

// A session whose view derives local state from a session signal: editing
// produces an override, saving moves the upstream and discards it.
func TestDerivedStateOverLive(t *testing.T) {
	app := live.AppFunc(func(s *live.Session) runtime.View {
		saved := reactive.NewSignal("hello")
		return func() string {
			draft, setDraft := derive.UseState(saved.Get())
			s.HandleFunc("edit", reactive.NewCallback(func(e live.Event) {
				setDraft.Set(e.String("value"))
			}))
			s.HandleFunc("save", reactive.NewCallback(func(live.Event) {
				saved.Set(draft)
			}))
			return fmt.Sprintf(`<textarea data-input="edit">%s</textarea>`, draft)
		}
	})

	srv := live.New(app, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn := dial(t, ts)
	if f := readFrame(t, conn); !strings.Contains(f.HTML, ">hello<") {
		t.Fatalf("unexpected initial render: %q", f.HTML)
	}

	err := conn.WriteJSON(map[string]any{
		"event": "edit",
		"data":  map[string]any{"value": "hello, world"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if f := readFrame(t, conn); !strings.Contains(f.HTML, ">hello, world<") {
		t.Errorf("expected the override to render, got %q", f.HTML)
	}

	if err := conn.WriteJSON(map[string]any{"event": "save"}); err != nil {
		t.Fatal(err)
	}
	if f := readFrame(t, conn); !strings.Contains(f.HTML, ">hello, world<") {
		t.Errorf("expected the saved value to render, got %q", f.HTML)
	}
}

func TestIndexServesShell(t *testing.T) {
	srv := live.New(counterApp(), nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("unexpected content type %q", ct)
	}
}
