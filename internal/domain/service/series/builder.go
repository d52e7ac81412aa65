// Package series runs one build of the canonical price series: live price,
// optional archive history, supplementary points, conversion, merge, write.
package series

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"pricetrack/internal/domain"
	"pricetrack/internal/domain/entity"
	"pricetrack/internal/domain/service/merge"
	"pricetrack/internal/domain/service/snapshot"
	"pricetrack/internal/domain/value"
	"pricetrack/pkg/contextx"
	"pricetrack/pkg/errcodes"
	"pricetrack/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals // skip

const defaultConcurrency = 4

// Origins reported to Metrics.
const (
	OriginLive          = "live"
	OriginArchive       = "archive"
	OriginSupplementary = "supplementary"
)

type PageFetcher interface {
	Fetch(ctx context.Context, url string) (entity.Page, error)
}

type SnapshotLocator interface {
	List(ctx context.Context, q snapshot.Query) ([]entity.Snapshot, error)
}

// SnapshotFetcher returns the archived page; Page.URL is the public
// snapshot address recorded on the points.
type SnapshotFetcher interface {
	FetchSnapshot(ctx context.Context, s entity.Snapshot) (entity.Page, error)
}

type SupplementaryStore interface {
	Load(ctx context.Context) ([]entity.Observation, error)
}

type PointMerger interface {
	Merge(ctx context.Context, primary, historical, supplementary []entity.Observation) (merge.Result, error)
}

type ArtifactWriter interface {
	Write(ctx context.Context, doc entity.Document) error
}

// Metrics observes a build. Implementations must be safe for concurrent use.
type Metrics interface {
	Points(source, origin string, n int)
	Skipped(reason string)
	SnapshotFetched(ok bool)
}

// Options are the per-invocation switches.
type Options struct {
	IncludeHistorical bool
	Sampling          snapshot.Sampling
	From              value.Date
	To                value.Date
	Concurrency       int
}

type Builder struct {
	catalog       Catalog
	pages         PageFetcher
	locator       SnapshotLocator
	snapshots     SnapshotFetcher
	supplementary SupplementaryStore
	merger        PointMerger
	writers       []ArtifactWriter
	metrics       Metrics
	now           func() time.Time
}

func NewBuilder(
	catalog Catalog,
	pages PageFetcher,
	locator SnapshotLocator,
	snapshots SnapshotFetcher,
	supplementary SupplementaryStore,
	merger PointMerger,
	writers ...ArtifactWriter,
) *Builder {
	return &Builder{
		catalog:       catalog,
		pages:         pages,
		locator:       locator,
		snapshots:     snapshots,
		supplementary: supplementary,
		merger:        merger,
		writers:       writers,
		metrics:       nopMetrics{},
		now:           time.Now,
	}
}

func (b *Builder) WithMetrics(m Metrics) *Builder {
	b.metrics = m
	return b
}

func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build runs the pipeline once. Only a failure to fetch the primary live
// page, a merge cancellation or a failed artifact write is returned as an
// error; everything else degrades to fewer points and a warning.
func (b *Builder) Build(ctx context.Context, opts Options) (Report, error) {
	started := b.now()
	today := value.DateOf(started)

	report := Report{Started: started}
	if runID, err := contextx.RunIDFromContext(ctx); err == nil {
		report.RunID = runID.String()
	}

	primary, ok := b.catalog.Primary()
	if !ok {
		return Report{}, domain.NewError(errcodes.InvalidCatalog, fmt.Sprintf("primary source %q is not configured", b.catalog.PrimaryID))
	}

	live, err := b.fetchLive(ctx, primary, today)
	if err != nil {
		return Report{}, err
	}

	for _, src := range b.catalog.Sources {
		if !src.Live || src.Listing || src.Descriptor.ID == primary.Descriptor.ID {
			continue
		}

		points, err := b.fetchLive(ctx, src, today)
		if err != nil {
			b.warn(ctx, "secondary source skipped", src.Descriptor.ID, errcodes.SourceUnavailable, err)
			continue
		}

		live = append(live, points...)
	}

	report.Live = len(live)

	var historical []entity.Observation
	if opts.IncludeHistorical {
		historical = b.fetchHistory(ctx, opts)
	}

	report.Historical = len(historical)

	supplementary, err := b.supplementary.Load(ctx)
	if err != nil {
		b.warn(ctx, "supplementary points unavailable", "", errcodes.InvalidSupplementaryPoint, err)
		supplementary = nil
	}

	report.Supplementary = len(supplementary)
	b.countPoints(supplementary, OriginSupplementary)

	merged, err := b.merger.Merge(ctx, live, historical, supplementary)
	if err != nil {
		return Report{}, fmt.Errorf("merger.Merge: %w", err)
	}

	for _, s := range merged.Skipped {
		b.metrics.Skipped(s.Reason.String())
	}

	report.Skipped = len(merged.Skipped)
	report.Duplicates = merged.Duplicates

	report.Document = entity.Document{
		Product: b.catalog.Product,
		Sources: b.catalog.Descriptors(),
		Series:  merged.Series,
	}

	for _, w := range b.writers {
		if err := w.Write(ctx, report.Document); err != nil {
			return Report{}, fmt.Errorf("artifactWriter.Write: %w", err)
		}
	}

	report.Summarize(primary.Descriptor.ID)
	report.Log(ctx)

	return report, nil
}

func (b *Builder) fetchLive(ctx context.Context, src Source, today value.Date) ([]entity.Observation, error) {
	page, err := b.pages.Fetch(ctx, src.Descriptor.URL)
	if err != nil {
		if domain.HasCode(err, errcodes.SourceUnavailable) {
			return nil, err
		}

		return nil, domain.WrapError(err, errcodes.SourceUnavailable, fmt.Sprintf("fetch %s", src.Descriptor.ID))
	}

	points := Observe(src, page, today, "")
	if len(points) == 0 {
		logger(ctx).Warn("no price found on live page",
			logx.FieldSourceID, src.Descriptor.ID,
			logx.FieldURL, page.URL,
		)
	}

	b.countPoints(points, OriginLive)

	return points, nil
}

type snapshotJob struct {
	source Source
	snap   entity.Snapshot
}

// fetchHistory selects snapshots for every historical source first, then
// fetches the whole selection with bounded concurrency. Each job owns its
// slot in results.
func (b *Builder) fetchHistory(ctx context.Context, opts Options) []entity.Observation {
	var jobs []snapshotJob

	for _, src := range b.catalog.Sources {
		if !src.Historical() {
			continue
		}

		snaps, err := b.locator.List(ctx, snapshot.Query{
			URLPattern: src.ArchivePattern,
			From:       opts.From,
			To:         opts.To,
		})
		if err != nil {
			b.warn(ctx, "no history for source", src.Descriptor.ID, errcodes.SnapshotIndexUnavailable, err)
			continue
		}

		sampled := snapshot.Sample(snaps, opts.Sampling)

		logger(ctx).Info("snapshots selected",
			logx.FieldSourceID, src.Descriptor.ID,
			"available", len(snaps),
			logx.FieldCount, len(sampled),
		)

		for _, s := range sampled {
			jobs = append(jobs, snapshotJob{source: src, snap: s})
		}
	}

	results := make([][]entity.Observation, len(jobs))

	g := new(errgroup.Group)
	g.SetLimit(cmpOr(opts.Concurrency, defaultConcurrency))

	for i, job := range jobs {
		g.Go(func() error {
			page, err := b.snapshots.FetchSnapshot(ctx, job.snap)
			if err != nil {
				b.metrics.SnapshotFetched(false)
				b.warn(ctx, "snapshot skipped", job.source.Descriptor.ID, errcodes.SnapshotUnavailable, err,
					slog.String(logx.FieldSnapshot, job.snap.Timestamp))

				return nil
			}

			b.metrics.SnapshotFetched(true)
			results[i] = Observe(job.source, page, job.snap.Date, job.snap.Timestamp)

			return nil
		})
	}

	_ = g.Wait()

	var out []entity.Observation

	for i, points := range results {
		b.metrics.Points(jobs[i].source.Descriptor.ID, OriginArchive, len(points))
		out = append(out, points...)
	}

	return out
}

func (b *Builder) warn(ctx context.Context, msg, sourceID string, reason errcodes.ErrorCode, err error, attrs ...any) {
	b.metrics.Skipped(reason.String())

	if errors.Is(err, context.Canceled) {
		return
	}

	args := append([]any{
		logx.FieldSourceID, sourceID,
		logx.FieldReason, reason.String(),
		logx.Error(err),
	}, attrs...)

	logger(ctx).Warn(msg, args...)
}

func (b *Builder) countPoints(points []entity.Observation, origin string) {
	counts := map[string]int{}
	for _, p := range points {
		counts[p.SourceID]++
	}

	for source, n := range counts {
		b.metrics.Points(source, origin, n)
	}
}

func cmpOr(v, fallback int) int {
	if v > 0 {
		return v
	}

	return fallback
}

type nopMetrics struct{}

func (nopMetrics) Points(string, string, int) {}
func (nopMetrics) Skipped(string)             {}
func (nopMetrics) SnapshotFetched(bool)       {}
