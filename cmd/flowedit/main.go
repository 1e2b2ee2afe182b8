package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rendis/flowedit/internal/canvas"
	"github.com/rendis/flowedit/internal/collection"
	"github.com/rendis/flowedit/internal/editor"
	"github.com/rendis/flowedit/internal/events"
	"github.com/rendis/flowedit/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "flowedit",
		Short:         "flowedit - interactive workflow diagram editor",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.SetVersionTemplate("flowedit {{ .Version }}\n")
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "settings file (default ~/.flowedit/settings.toml)")

	root.AddCommand(
		runCmd(opts),
		demoCmd(opts),
		inspectCmd(opts),
	)
	return root
}

// app wires one editor session: canvas, editor, event hub and the
// collection feeding the canvas.
type app struct {
	cfg     Config
	log     *slog.Logger
	hub     *events.MemoryHub
	canvas  *canvas.Canvas
	editor  *editor.Editor
	items   *collection.Collection
	adapter *collection.Adapter
}

func newApp(cfg Config, logOut io.Writer, notifier editor.Notifier) *app {
	log := logging.New(logOut, cfg.LogLevel, cfg.LogFormat)
	a := &app{
		cfg: cfg,
		log: log,
		hub: events.NewMemoryHub(cfg.EventBuffer),
	}
	a.canvas = canvas.New(append(cfg.canvasOptions(), canvas.WithLogger(log))...)

	edOpts := []editor.Option{editor.WithHub(a.hub), editor.WithLogger(log)}
	if notifier != nil {
		edOpts = append(edOpts, editor.WithNotifier(notifier))
	}
	a.editor = editor.New(a.canvas, edOpts...)

	a.items = collection.New(sampleFlow()...)
	a.adapter = collection.NewAdapter(a.canvas)
	a.adapter.SetSource(a.items)
	a.canvas.Flush()
	return a
}

// logEvents drains hub events into the debug log until ctx is done.
func (a *app) logEvents(ctx context.Context) error {
	ch, cancel, err := a.hub.Subscribe(ctx, events.Filter{EditorID: a.editor.ID()})
	if err != nil {
		return fmt.Errorf("subscribe events: %w", err)
	}
	go func() {
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				a.log.Debug("editor event", "event", ev.EventType, "node_id", ev.NodeID, "link_id", ev.LinkID)
			}
		}
	}()
	return nil
}

func (a *app) close() {
	a.adapter.Close()
}
