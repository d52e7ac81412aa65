// Package metrics holds the counters of a pipeline run.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pricetrack"

// Origins of observations.
const (
	OriginLive          = "live"
	OriginArchive       = "archive"
	OriginSupplementary = "supplementary"
	OriginListing       = "listing"
)

// Run groups the counters of build and scan runs. All methods are safe for
// concurrent use.
type Run struct {
	registry *prometheus.Registry

	points       *prometheus.CounterVec
	skipped      *prometheus.CounterVec
	fxLookups    *prometheus.CounterVec
	snapshots    *prometheus.CounterVec
	seriesSize   prometheus.Gauge
	lastSuccess  prometheus.Gauge
	runDurations *prometheus.HistogramVec
}

func NewRun() *Run {
	r := &Run{
		registry: prometheus.NewRegistry(),
		points: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_total",
			Help:      "Observations extracted, by source and origin.",
		}, []string{"source", "origin"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_total",
			Help:      "Items dropped during a run, by reason.",
		}, []string{"reason"}),
		fxLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fx_lookups_total",
			Help:      "Exchange rate lookups, by cache outcome.",
		}, []string{"cache"}),
		snapshots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_fetches_total",
			Help:      "Archived page fetches, by result.",
		}, []string{"result"}),
		seriesSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "series_points",
			Help:      "Points in the last written series.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
		runDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of runs, by command.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"command"}),
	}

	r.registry.MustRegister(
		r.points,
		r.skipped,
		r.fxLookups,
		r.snapshots,
		r.seriesSize,
		r.lastSuccess,
		r.runDurations,
	)

	return r
}

// Registry exposes the collectors for /metrics and textfile export.
func (r *Run) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Run) Points(source, origin string, n int) {
	r.points.WithLabelValues(source, origin).Add(float64(n))
}

func (r *Run) Skipped(reason string) {
	r.skipped.WithLabelValues(reason).Inc()
}

func (r *Run) FXLookup(cached bool) {
	label := "miss"
	if cached {
		label = "hit"
	}

	r.fxLookups.WithLabelValues(label).Inc()
}

func (r *Run) SnapshotFetched(ok bool) {
	label := "error"
	if ok {
		label = "ok"
	}

	r.snapshots.WithLabelValues(label).Inc()
}

func (r *Run) SeriesWritten(points int, unixTime float64) {
	r.seriesSize.Set(float64(points))
	r.lastSuccess.Set(unixTime)
}

func (r *Run) Finished(command string, seconds float64) {
	r.runDurations.WithLabelValues(command).Observe(seconds)
}
