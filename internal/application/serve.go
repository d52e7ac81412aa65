package application

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"pricetrack/internal/server"
	"pricetrack/internal/transport/bot"
	"pricetrack/internal/transport/bot/handler"
	"pricetrack/pkg/application/modules"
	"pricetrack/pkg/logx"
)

// Serve exposes the artifact over HTTP next to the metrics and probe servers.
// With SCAN_INTERVAL set it also keeps the supplementary store fresh, and
// with BOT_ADMIN_ID it answers operator commands.
func (a *App) Serve(ctx context.Context) error {
	ctx = startRun(ctx, "serve")

	g, ctx := errgroup.WithContext(ctx)

	api := server.NewServer(server.NewSeriesServer(a.artifact))

	modules.HTTPServer{
		ListenAddress:   a.cfg.Server.ListenAddress,
		Handler:         api.Handler(),
		ShutdownTimeout: a.cfg.Server.ShutdownTimeout,
	}.Run(ctx, g)

	modules.MetricServer{
		ListenAddress: a.cfg.Server.MetricsListenAddress,
		Gatherer:      a.metrics.Registry(),
	}.Run(ctx, g)

	modules.ProbeServer{
		Name:          AppName,
		Version:       a.version,
		ListenAddress: a.cfg.Server.ProbeListenAddress,
		Checks: []modules.ReadyCheck{
			{Name: "artifact", Check: func(ctx context.Context) error {
				_, err := a.artifact.Read(ctx)
				return err
			}},
			{Name: "supplementary", Check: func(ctx context.Context) error {
				_, err := a.supplementary.Load(ctx)
				return err
			}},
		},
	}.Run(ctx, g)

	scanner := a.scanner()

	if interval := a.cfg.Server.ScanInterval; interval > 0 {
		scanner.WithInterval(interval)

		g.Go(func() error {
			if err := scanner.Run(ctx); err != nil {
				return fmt.Errorf("scanner.Run: %w", err)
			}

			return nil
		})
	}

	if a.cfg.Bot.CommandsEnabled() {
		commands, err := bot.New(ctx, a.cfg.Bot.Token, a.cfg.Bot.AdminID,
			handler.New(a.artifact, scanner, a.catalog.PrimaryID))
		if err != nil {
			logger(ctx).Warn("command bot disabled", logx.Error(err))
		} else {
			g.Go(func() error {
				return commands.Run(ctx)
			})
		}
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("errgroup.Wait: %w", err)
	}

	return nil
}
