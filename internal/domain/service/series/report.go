package series

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"pricetrack/internal/domain/entity"
	"pricetrack/internal/domain/value"
	"pricetrack/pkg/logx"
)

// SourceSummary describes one source's points in display currency.
type SourceSummary struct {
	SourceID   string
	Points     int
	Min        decimal.Decimal
	Max        decimal.Decimal
	Latest     decimal.Decimal
	LatestDate value.Date
}

// Report is the outcome of a build.
type Report struct {
	RunID         string
	Started       time.Time
	Document      entity.Document
	Live          int
	Historical    int
	Supplementary int
	Skipped       int
	Duplicates    int
	Summaries     []SourceSummary

	// PrimaryLatest is the newest sale point of the primary source. On a
	// shared date the live read beats an archived one, then the lower amount.
	PrimaryLatest *entity.PricePoint
	// AllTimeLow is set when PrimaryLatest is the cheapest sale point of
	// the whole series.
	AllTimeLow bool
}

// Summarize fills Summaries and the all-time-low flag from the document.
func (r *Report) Summarize(primaryID string) {
	index := map[string]int{}
	r.Summaries = nil
	r.PrimaryLatest = nil
	r.AllTimeLow = false

	var lowest decimal.Decimal

	for i, p := range r.Document.Series {
		amount := p.Display.Amount

		if p.Kind == value.KindSale && (lowest.IsZero() || amount.LessThan(lowest)) {
			lowest = amount
		}

		if p.SourceID == primaryID && p.Kind == value.KindSale && newerPrimary(r.PrimaryLatest, p) {
			r.PrimaryLatest = &r.Document.Series[i]
		}

		idx, ok := index[p.SourceID]
		if !ok {
			index[p.SourceID] = len(r.Summaries)
			r.Summaries = append(r.Summaries, SourceSummary{
				SourceID:   p.SourceID,
				Points:     1,
				Min:        amount,
				Max:        amount,
				Latest:     amount,
				LatestDate: p.Date,
			})

			continue
		}

		s := &r.Summaries[idx]
		s.Points++
		s.Min = decimal.Min(s.Min, amount)
		s.Max = decimal.Max(s.Max, amount)

		if !p.Date.Before(s.LatestDate) {
			s.Latest = amount
			s.LatestDate = p.Date
		}
	}

	if r.PrimaryLatest != nil {
		r.AllTimeLow = !r.PrimaryLatest.Display.Amount.GreaterThan(lowest)
	}
}

func (r *Report) Log(ctx context.Context) {
	for _, s := range r.Summaries {
		logger(ctx).Info("source summary",
			logx.FieldSourceID, s.SourceID,
			logx.FieldCount, s.Points,
			slog.String("min", s.Min.StringFixed(2)),
			slog.String("max", s.Max.StringFixed(2)),
			slog.String("latest", s.Latest.StringFixed(2)),
			logx.FieldDate, s.LatestDate.String(),
		)
	}

	logger(ctx).Info("series built",
		logx.FieldRunID, r.RunID,
		logx.FieldCount, len(r.Document.Series),
		"live", r.Live,
		"historical", r.Historical,
		"supplementary", r.Supplementary,
		"skipped", r.Skipped,
		"duplicates", r.Duplicates,
		"all-time-low", r.AllTimeLow,
	)
}

// newerPrimary orders primary sales by date, then a live read over an
// archived one. The series is sorted by amount within a day, so on a full tie
// the cheaper point already held stays.
func newerPrimary(current *entity.PricePoint, p entity.PricePoint) bool {
	switch {
	case current == nil, current.Date.Before(p.Date):
		return true
	case p.Date.Before(current.Date):
		return false
	default:
		return current.Wayback != "" && p.Wayback == ""
	}
}
