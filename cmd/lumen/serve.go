package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/lumen/internal/config"
	"github.com/vango-dev/lumen/internal/dev"
	"github.com/vango-dev/lumen/pkg/metrics"
)

func serveCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [manifest]",
		Short: "Serve a live preview of the root component",
		Long: `Serve renders the root component and keeps it running. Connected
browsers receive every new render over a WebSocket and can assign root
state or dispatch events back to the running document.

With --watch the manifest is reloaded whenever the file changes.

Examples:
  lumen serve app.yaml
  lumen serve --addr 0.0.0.0:8080 --watch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := c.load(cmd, manifestArg(args), map[string]string{
				"root":          "root",
				"preview.addr":  "addr",
				"preview.watch": "watch",
			})
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.serve(ctx)
		},
	}

	cmd.Flags().String("addr", "", "listen address (default "+config.DefaultAddr+")")
	cmd.Flags().BoolP("watch", "w", false, "reload when the manifest changes")
	cmd.Flags().String("root", "", "root component selector (default from manifest)")

	return cmd
}

func (c *cli) serve(ctx context.Context) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.New(metrics.WithRegistry(reg))

	session := dev.NewSession(dev.SessionOptions{
		Manifest:   c.cfg.Manifest,
		Root:       c.cfg.Root,
		Logger:     c.logger,
		Observer:   collector,
		TracerName: c.cfg.Tracing.TracerName,
	})
	hub := dev.NewHub(session, c.logger)
	if err := session.Start(ctx); err != nil {
		return err
	}

	if c.cfg.Preview.Watch {
		w := dev.NewWatcher(c.cfg.Manifest, 0, c.logger)
		go func() {
			err := w.Run(ctx, func() {
				if err := session.Reload(ctx); err != nil {
					c.logger.Error("reload failed", "err", err)
					hub.NotifyError(err)
				}
			})
			if err != nil {
				c.logger.Error("watcher stopped", "err", err)
			}
		}()
	}

	srv := dev.NewServer(session, hub, dev.ServerOptions{
		Addr:        c.cfg.Preview.Addr,
		MetricsPath: c.cfg.Preview.MetricsPath,
		Gatherer:    reg,
		Logger:      c.logger,
	})
	return srv.ListenAndServe(ctx)
}
