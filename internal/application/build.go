package application

import (
	"context"
	"fmt"
	"time"

	"pricetrack/internal/domain/service/fx"
	"pricetrack/internal/domain/service/merge"
	"pricetrack/internal/domain/service/series"
	"pricetrack/internal/domain/service/snapshot"
	"pricetrack/internal/domain/value"
	"pricetrack/internal/infrastructure/frankfurter"
	"pricetrack/internal/infrastructure/persistence"
	"pricetrack/internal/infrastructure/wayback"
	"pricetrack/pkg/logx"
)

// BuildOptions are the command-line switches of the build command. Empty
// values fall back to the configuration.
type BuildOptions struct {
	Historical bool
	SampleMode string
	SampleCap  int
}

// Build produces the canonical series once and writes it everywhere it is
// published.
func (a *App) Build(ctx context.Context, opts BuildOptions) (series.Report, error) {
	ctx = startRun(ctx, "build")
	started := time.Now()

	defer a.finishRun(ctx, "build", started)

	seriesOpts, err := a.seriesOptions(opts)
	if err != nil {
		return series.Report{}, err
	}

	writers := []series.ArtifactWriter{a.artifact}

	if a.cfg.S3.Enabled() {
		publisher, err := persistence.NewS3Publisher(ctx, persistence.S3Options{
			Bucket:          a.cfg.S3.Bucket,
			Key:             a.cfg.S3.Key,
			Region:          a.cfg.S3.Region,
			Endpoint:        a.cfg.S3.Endpoint,
			AccessKeyID:     a.cfg.S3.AccessKeyID,
			SecretAccessKey: a.cfg.S3.SecretAccessKey,
			PathStyle:       a.cfg.S3.PathStyle,
			CacheControl:    a.cfg.S3.CacheControl,
		})
		if err != nil {
			return series.Report{}, fmt.Errorf("persistence.NewS3Publisher: %w", err)
		}

		writers = append(writers, publisher)
	}

	archive := wayback.NewClient(a.fetcher, a.cfg.Archive.CDXURL, a.cfg.Archive.WebURL)

	rates := frankfurter.NewClient(a.fetcher, a.cfg.FX.BaseURL)
	if a.cfg.FX.Provider != "" {
		rates = rates.WithName(a.cfg.FX.Provider)
	}

	converter := fx.NewConverter(rates, a.catalog.Product.CurrencyDisplay).
		WithCacheTTL(a.cfg.FX.CacheTTL).
		WithMetrics(a.metrics)

	builder := series.NewBuilder(
		a.catalog,
		a.fetcher,
		snapshot.NewLocator(archive),
		archive,
		a.supplementary,
		merge.NewMerger(converter),
		writers...,
	).WithMetrics(a.metrics)

	report, err := builder.Build(ctx, seriesOpts)
	if err != nil {
		return report, fmt.Errorf("builder.Build: %w", err)
	}

	a.metrics.SeriesWritten(len(report.Document.Series), float64(time.Now().Unix()))

	if a.notifier != nil {
		if err := a.notifier.NotifyBuild(ctx, report); err != nil {
			logger(ctx).Warn("build notification failed", logx.Error(err))
		}
	}

	return report, nil
}

func (a *App) seriesOptions(opts BuildOptions) (series.Options, error) {
	modeName := opts.SampleMode
	if modeName == "" {
		modeName = a.cfg.Archive.SampleMode
	}

	mode, err := snapshot.ParseMode(modeName)
	if err != nil {
		return series.Options{}, err
	}

	sampleCap := opts.SampleCap
	if sampleCap <= 0 {
		sampleCap = a.cfg.Archive.SampleCap
	}

	out := series.Options{
		IncludeHistorical: opts.Historical,
		Sampling:          snapshot.Sampling{Mode: mode, Max: sampleCap},
		Concurrency:       a.cfg.Archive.Concurrency,
	}

	if a.cfg.Archive.From != "" {
		if out.From, err = value.ParseDate(a.cfg.Archive.From); err != nil {
			return series.Options{}, fmt.Errorf("ARCHIVE_FROM: %w", err)
		}
	}

	if a.cfg.Archive.To != "" {
		if out.To, err = value.ParseDate(a.cfg.Archive.To); err != nil {
			return series.Options{}, fmt.Errorf("ARCHIVE_TO: %w", err)
		}
	}

	return out, nil
}
