package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rs/xid"

	"pricetrack/internal/config"
	"pricetrack/internal/domain/service/series"
	"pricetrack/internal/infrastructure/notifier"
	"pricetrack/internal/infrastructure/persistence"
	"pricetrack/internal/infrastructure/web"
	"pricetrack/internal/metrics"
	"pricetrack/internal/worker"
	"pricetrack/pkg/contextx"
	"pricetrack/pkg/logx"
	pkgmetrics "pricetrack/pkg/metrics"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals // skip

const AppName = "pricetrack"

// Notifier is told about every successful build.
type Notifier interface {
	NotifyBuild(ctx context.Context, report series.Report) error
}

// App holds what every command shares: configuration, the catalog, the
// polite HTTP client, the file stores and the run metrics.
type App struct {
	cfg     config.Config
	catalog series.Catalog
	version string

	metrics       *metrics.Run
	fetcher       *web.Fetcher
	artifact      *persistence.ArtifactFile
	supplementary *persistence.SupplementaryFile
	notifier      Notifier
}

func New(cfg config.Config) (*App, error) {
	catalog, err := config.LoadCatalog(cfg.Files.Catalog)
	if err != nil {
		return nil, fmt.Errorf("config.LoadCatalog: %w", err)
	}

	app := &App{
		cfg:     cfg,
		catalog: catalog,
		version: "dev",
		metrics: metrics.NewRun(),
		fetcher: web.NewFetcher(web.Options{
			UserAgent:         cfg.HTTP.UserAgent,
			Timeout:           cfg.HTTP.Timeout,
			Retries:           cfg.HTTP.Retries,
			RetryBackoff:      cfg.HTTP.RetryBackoff,
			RequestsPerSecond: cfg.HTTP.RequestsPerSecond,
			MaxBodyBytes:      cfg.HTTP.MaxBodyBytes,
			LogBodyMaxLen:     cfg.HTTP.LogBodyMaxLen,
			LogLevel:          slog.LevelDebug,
		}),
		artifact:      persistence.NewArtifactFile(cfg.Files.Artifact),
		supplementary: persistence.NewSupplementaryFile(cfg.Files.Supplementary),
	}

	if cfg.Bot.Enabled() {
		bot, err := notifier.NewTelegramBot(cfg.Bot.Token, cfg.Bot.ChatID)
		if err != nil {
			return nil, fmt.Errorf("notifier.NewTelegramBot: %w", err)
		}

		app.notifier = bot
	}

	return app, nil
}

func (a *App) WithVersion(version string) *App {
	a.version = version
	return a
}

// WithNotifier replaces the configured notifier; nil disables notifications.
func (a *App) WithNotifier(n Notifier) *App {
	a.notifier = n
	return a
}

func (a *App) Catalog() series.Catalog {
	return a.catalog
}

// startRun tags ctx and its logger with a fresh run id.
func startRun(ctx context.Context, command string) context.Context {
	runID := contextx.RunID(xid.New().String())

	ctx = contextx.WithRunID(ctx, runID)

	return contextx.WithLogger(ctx, logger(ctx).With(
		logx.Stringer(logx.FieldRunID, runID),
		slog.String("command", command),
	))
}

// finishRun records the duration and, for batch commands, leaves the
// metrics for the node exporter.
func (a *App) finishRun(ctx context.Context, command string, started time.Time) {
	a.metrics.Finished(command, time.Since(started).Seconds())

	path := a.cfg.Files.MetricsTextfile
	if path == "" {
		return
	}

	if err := pkgmetrics.WriteTextfile(path, a.metrics.Registry()); err != nil {
		logger(ctx).Warn("metrics textfile not written", logx.FieldURL, path, logx.Error(err))
	}
}

func (a *App) scanner() *worker.MarketScanner {
	return worker.NewMarketScanner(a.catalog, a.fetcher, a.supplementary).
		WithRateControl(a.cfg.Server.ScanRequestInterval).
		WithMaxListings(a.cfg.Server.MaxListings).
		WithMetrics(a.metrics)
}
