package cli

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ultiview/printwatch/internal/alerting"
	"github.com/ultiview/printwatch/internal/config"
	"github.com/ultiview/printwatch/internal/grouping"
	"github.com/ultiview/printwatch/internal/logger"
	"github.com/ultiview/printwatch/internal/poller"
	"github.com/ultiview/printwatch/internal/printer"
	"github.com/ultiview/printwatch/internal/server"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the monitoring daemon",
		Long: `Start the PrintWatch daemon: poll the configured printer controller's log
stream, maintain deduplicated log entries and alerts, and serve the JSON API.

Press Ctrl+C to stop.`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.NewLoader().LoadConfig(cfgFile)
	if err != nil {
		return err
	}

	log := logger.NewDefault(logLevel(cfg.Logging.Level), cfg.Logging.Pretty)

	groups := grouping.NewEngine(
		grouping.WithBufferSize(cfg.Retention.LogBuffer),
		grouping.WithGroupMaxAge(cfg.Retention.GroupMaxAge),
	)
	alerts := alerting.NewService(
		alerting.WithHistorySize(cfg.Retention.History),
	)

	// The server's config-update handler swaps the client inside this
	// reference, so the poller follows address changes without a restart.
	client := printer.NewRef(printer.NewClient(printer.Options{
		Address:    cfg.Printer.Address,
		CameraPort: cfg.Printer.CameraPort,
		HTTPClient: &http.Client{Timeout: cfg.Printer.Timeout},
		Logger:     logger.Component(log, "printer"),
	}))

	srv := server.New(server.Options{
		Config:     cfg,
		ConfigPath: configSavePath(),
		Groups:     groups,
		Alerts:     alerts,
		Printer:    client,
		Logger:     logger.Component(log, "server"),
	})

	p := poller.New(client, groups, alerts, poller.Config{
		Interval:        cfg.Poll.Interval,
		CleanupInterval: cfg.Poll.CleanupInterval,
		BatchSize:       cfg.Poll.BatchSize,
		AlertMaxAge:     cfg.Retention.AlertMaxAge,
	}, logger.Component(log, "poller"))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	g.Go(func() error { return p.Run(gctx) })

	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

// configSavePath is where the config-update endpoint persists changes.
func configSavePath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.ConfigPaths[0]
}
