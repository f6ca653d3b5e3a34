package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stacktile/pkg/config"
	"github.com/matzehuels/stacktile/pkg/observability"
	"github.com/matzehuels/stacktile/pkg/server"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
		watch   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout API over HTTP",
		Long: `Serve the layout API over HTTP.

The server arranges scenes posted to /v1/arrange and manages per-workspace
pane configuration under /v1/workspaces. The cache and workspace store
backends come from the configuration file.

With --watch, changes to the log level in the configuration file are applied
while the server runs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Server.Addr
			}
			return c.runServe(cmd.Context(), addr, noCache, watch)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload the log level when the config file changes")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache bool, watch bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	observability.SetLayoutHooks(observability.NewLogHooks(c.Logger))
	observability.SetCacheHooks(observability.NewLogHooks(c.Logger))
	observability.SetServerHooks(observability.NewLogHooks(c.Logger))
	defer observability.Reset()

	if watch {
		go c.watchConfig(ctx)
	}

	srv := server.New(server.Options{
		Runner:     runner,
		ResizeStep: c.Config.Layout.ResizeStep,
		Logger:     c.Logger,
	})
	printInfo("Serving on %s", StyleHighlight.Render(addr))
	return srv.ListenAndServe(ctx, addr)
}

// watchConfig applies log level changes from the config file until ctx is
// done. Backend changes need a restart.
func (c *CLI) watchConfig(ctx context.Context) {
	err := config.Watch(ctx, c.configPath, func(cfg config.Config, err error) {
		if err != nil {
			c.Logger.Warn("config reload failed", "err", err)
			return
		}
		if !c.verbose {
			c.SetLogLevel(cfg.LogLevel())
		}
		c.Logger.Info("config reloaded", "log_level", cfg.Log.Level)
	})
	if err != nil {
		c.Logger.Warn("config watch stopped", "err", err)
	}
}
