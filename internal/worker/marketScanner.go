package worker

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"pricetrack/internal/domain"
	"pricetrack/internal/domain/entity"
	"pricetrack/internal/domain/service/series"
	"pricetrack/internal/domain/value"
	"pricetrack/internal/metrics"
	"pricetrack/pkg/contextx"
	"pricetrack/pkg/errcodes"
	"pricetrack/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals // skip

type PageFetcher interface {
	Fetch(ctx context.Context, url string) (entity.Page, error)
}

// ListingStore persists listing points, replacing those of refreshed sources.
type ListingStore interface {
	Refresh(ctx context.Context, fresh []entity.Observation) ([]entity.Observation, error)
}

type Metrics interface {
	Points(source, origin string, n int)
	Skipped(reason string)
}

type ScanReport struct {
	Scanned int
	Failed  int
	Fresh   int
	Stored  int
	Sources map[string]int
}

// MarketScanner re-reads marketplace search pages and turns every plausible
// listing price into a supplementary point dated today.
type MarketScanner struct {
	catalog series.Catalog
	pages   PageFetcher
	store   ListingStore
	metrics Metrics
	now     func() time.Time

	maxListings int
	interval    time.Duration

	// mu serializes scans started by the ticker and by operator commands.
	mu              sync.Mutex
	requestInterval time.Duration
	lastRequest     time.Time
}

func NewMarketScanner(
	catalog series.Catalog,
	pages PageFetcher,
	store ListingStore,
) *MarketScanner {
	return &MarketScanner{
		catalog:         catalog,
		pages:           pages,
		store:           store,
		metrics:         nopMetrics{},
		now:             time.Now,
		interval:        6 * time.Hour, //nolint:mnd // skip
		requestInterval: 2 * time.Second,
	}
}

func (w *MarketScanner) WithMaxListings(n int) *MarketScanner {
	w.maxListings = n
	return w
}

// WithRateControl spaces page requests by at least interval.
func (w *MarketScanner) WithRateControl(interval time.Duration) *MarketScanner {
	w.requestInterval = interval
	return w
}

func (w *MarketScanner) WithInterval(interval time.Duration) *MarketScanner {
	w.interval = interval
	return w
}

func (w *MarketScanner) WithMetrics(m Metrics) *MarketScanner {
	w.metrics = m
	return w
}

func (w *MarketScanner) WithClock(now func() time.Time) *MarketScanner {
	w.now = now
	return w
}

// Run scans immediately and then once per interval until ctx is done.
func (w *MarketScanner) Run(ctx context.Context) error {
	logger(ctx).Info("market scanner started", "interval", w.interval.String())

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if _, err := w.ScanOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger(ctx).Error("scan failed", logx.Error(err))
		}

		select {
		case <-ctx.Done():
			logger(ctx).Info("market scanner stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// ScanOnce reads every listing source once and refreshes the store with the
// sources that produced points. A source that fails or yields nothing keeps
// its stored points.
func (w *MarketScanner) ScanOnce(ctx context.Context) (ScanReport, error) {
	return w.ScanSources(ctx)
}

// ScanSources is ScanOnce limited to the given listing sources. An id that
// is not a listing source is a validation error and nothing is scanned.
func (w *MarketScanner) ScanSources(ctx context.Context, ids ...string) (ScanReport, error) {
	sources, err := w.listings(ids)
	if err != nil {
		return ScanReport{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	report := ScanReport{Sources: map[string]int{}}
	today := value.DateOf(w.now())

	var fresh []entity.Observation

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("worker.ScanSources: %w", err)
		}

		points, err := w.scanOne(ctx, src, today)
		if err != nil {
			report.Failed++
			w.metrics.Skipped("ListingUnavailable")
			logger(ctx).Warn("listing scan failed",
				logx.FieldSourceID, src.Descriptor.ID,
				logx.Error(err),
			)

			continue
		}

		report.Scanned++
		report.Sources[src.Descriptor.ID] = len(points)
		w.metrics.Points(src.Descriptor.ID, metrics.OriginListing, len(points))

		fresh = append(fresh, points...)
	}

	report.Fresh = len(fresh)

	if len(fresh) == 0 {
		logger(ctx).Info("scan finished without fresh listings", "failed", report.Failed)
		return report, nil
	}

	stored, err := w.store.Refresh(ctx, fresh)
	if err != nil {
		return report, fmt.Errorf("store.Refresh: %w", err)
	}

	report.Stored = len(stored)

	logger(ctx).Info("scan cycle completed",
		"scanned", report.Scanned,
		"failed", report.Failed,
		"fresh", report.Fresh,
		"stored", report.Stored,
	)

	return report, nil
}

func (w *MarketScanner) listings(ids []string) ([]series.Source, error) {
	all := w.catalog.Listings()
	if len(ids) == 0 {
		return all, nil
	}

	out := make([]series.Source, 0, len(ids))

	for _, id := range ids {
		idx := slices.IndexFunc(all, func(src series.Source) bool { return src.Descriptor.ID == id })
		if idx < 0 {
			return nil, domain.NewError(errcodes.ValidationError, fmt.Sprintf("%q is not a listing source", id))
		}

		if !slices.ContainsFunc(out, func(src series.Source) bool { return src.Descriptor.ID == id }) {
			out = append(out, all[idx])
		}
	}

	return out, nil
}

func (w *MarketScanner) scanOne(ctx context.Context, src series.Source, today value.Date) ([]entity.Observation, error) {
	if err := w.waitForNextSlot(ctx); err != nil {
		return nil, err
	}

	page, err := w.pages.Fetch(ctx, src.Descriptor.URL)
	if err != nil {
		return nil, fmt.Errorf("pages.Fetch: %w", err)
	}

	points := series.Observe(src, page, today, "")

	// Listing pages only carry asking prices.
	points = slices.DeleteFunc(points, func(o entity.Observation) bool {
		return o.Kind != value.KindSale
	})

	if w.maxListings > 0 && len(points) > w.maxListings {
		points = points[:w.maxListings]
	}

	logger(ctx).Debug("listings extracted",
		logx.FieldSourceID, src.Descriptor.ID,
		logx.FieldCount, len(points),
	)

	return points, nil
}

func (w *MarketScanner) waitForNextSlot(ctx context.Context) error {
	if w.lastRequest.IsZero() {
		w.lastRequest = time.Now()
		return nil
	}

	elapsed := time.Since(w.lastRequest)
	if elapsed >= w.requestInterval {
		w.lastRequest = time.Now()
		return nil
	}

	wait := w.requestInterval - elapsed

	select {
	case <-time.After(wait):
		w.lastRequest = time.Now()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type nopMetrics struct{}

func (nopMetrics) Points(string, string, int) {}
func (nopMetrics) Skipped(string)             {}
