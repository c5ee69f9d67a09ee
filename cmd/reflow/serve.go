package main

import (
	"fmt"
	"html"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/reflow-dev/reflow/internal/config"
	"github.com/reflow-dev/reflow/pkg/derive"
	"github.com/reflow-dev/reflow/pkg/live"
	"github.com/reflow-dev/reflow/pkg/metrics"
	"github.com/reflow-dev/reflow/pkg/reactive"
	"github.com/reflow-dev/reflow/pkg/runtime"
)

func serveCmd() *cobra.Command {
	var (
		addr      string
		dir       string
		enableMet bool
		debug     bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo draft editor",
		Long: `Serve starts a live server hosting a small draft editor that
demonstrates derived state: the draft mirrors the saved value, diverges
while you type, and snaps back when the saved value changes.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(dir)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("metrics") {
				cfg.Metrics = enableMet
			}
			if cmd.Flags().Changed("debug") {
				cfg.Debug = debug
			}

			if cfg.Debug {
				reactive.DebugMode = true
				slog.SetLogLoggerLevel(slog.LevelDebug)
			}
			if cfg.Metrics {
				metrics.Enable()
			}

			server := live.New(draftEditor(), &live.Config{
				Addr:         cfg.Addr,
				ServeMetrics: cfg.Metrics,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			slog.Info("starting demo server", "app", cfg.Name, "addr", cfg.Addr)
			return server.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&dir, "dir", ".", "directory containing "+config.FileName)
	cmd.Flags().BoolVar(&enableMet, "metrics", false, "expose Prometheus metrics on /metrics")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable dev-mode validation and debug logging")

	return cmd
}

// draftEditor is the demo component: a text draft seeded from the saved
// value. Typing diverges the draft, Save publishes it, and publishing a
// new saved value resets any open draft in a single render.
func draftEditor() live.App {
	return live.AppFunc(func(s *live.Session) runtime.View {
		saved := reactive.NewSignal("Welcome to Reflow")

		return func() string {
			upstream := saved.Get()
			draft, setDraft := derive.UseState(upstream)
			chars := reactive.NewKeyedMemo(draft, func(d string) int { return len(d) })

			s.HandleFunc("draft", reactive.NewCallback(func(e live.Event) {
				setDraft.Set(e.String("value"))
			}))
			s.HandleFunc("save", reactive.NewCallback(func(live.Event) {
				saved.Set(draft)
			}))
			s.HandleFunc("revert", reactive.NewCallback(func(live.Event) {
				setDraft.Set(saved.Peek())
			}))

			status := "saved"
			if draft != upstream {
				status = "draft"
			}

			return fmt.Sprintf(`<h1>Draft editor</h1>
<p>Saved: <strong>%s</strong></p>
<input data-input="draft" value="%s">
<p>%d characters, %s</p>
<button data-event="save">Save</button>
<button data-event="revert">Revert</button>`,
				html.EscapeString(upstream), html.EscapeString(draft), chars, status)
		}
	})
}
