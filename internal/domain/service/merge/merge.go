// Package merge combines observations from every origin into the canonical
// series: supplementary bursts are spread over days, duplicates dropped,
// amounts converted and the result ordered.
package merge

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"

	"pricetrack/internal/domain"
	"pricetrack/internal/domain/entity"
	"pricetrack/internal/domain/value"
	"pricetrack/pkg/contextx"
	"pricetrack/pkg/errcodes"
	"pricetrack/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals // skip

// Converter expresses a native price in the display currency.
type Converter interface {
	Convert(ctx context.Context, date value.Date, m entity.Money) (entity.DisplayPrice, error)
}

// Skipped is an input that did not make it into the series.
type Skipped struct {
	Observation entity.Observation
	Reason      errcodes.ErrorCode
	Err         error
}

type Result struct {
	Series     []entity.PricePoint
	Skipped    []Skipped
	Duplicates int
}

type Merger struct {
	conv Converter
}

func NewMerger(conv Converter) *Merger {
	return &Merger{conv: conv}
}

// Merge concatenates primary, historical and supplementary observations in
// that order. The first occurrence of a dedup key wins. Points whose
// conversion fails are skipped and reported, never fatal. Only a cancelled
// context makes Merge fail.
func (m *Merger) Merge(
	ctx context.Context,
	primary, historical, supplementary []entity.Observation,
) (Result, error) {
	var result Result

	// Exact repeats inside the supplementary input must not form a same-day
	// group, or the spread would turn one listing into a trend.
	uniqueSupplementary := lo.UniqBy(supplementary, entity.Observation.Key)
	result.Duplicates = len(supplementary) - len(uniqueSupplementary)

	all := make([]entity.Observation, 0, len(primary)+len(historical)+len(uniqueSupplementary))
	all = append(all, primary...)
	all = append(all, historical...)
	all = append(all, SpreadSameDay(uniqueSupplementary)...)

	valid := make([]entity.Observation, 0, len(all))

	for _, o := range all {
		if err := Validate(o); err != nil {
			result.Skipped = append(result.Skipped, Skipped{Observation: o, Reason: errcodes.InvalidSupplementaryPoint, Err: err})
			continue
		}

		valid = append(valid, o)
	}

	unique := lo.UniqBy(valid, entity.Observation.Key)
	result.Duplicates += len(valid) - len(unique)

	result.Series = make([]entity.PricePoint, 0, len(unique))

	for _, o := range unique {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("merge.Merge: %w", err)
		}

		display, err := m.conv.Convert(ctx, o.Date, o.Price)
		if err != nil {
			logger(ctx).Warn("point skipped, no display price",
				logx.FieldSourceID, o.SourceID,
				logx.FieldDate, o.Date.String(),
				logx.Error(err),
			)

			code, _ := domain.GetCode(err)
			result.Skipped = append(result.Skipped, Skipped{Observation: o, Reason: cmp.Or(code, errcodes.RateUnavailable), Err: err})

			continue
		}

		result.Series = append(result.Series, entity.PricePoint{Observation: o, Display: display})
	}

	Sort(result.Series)

	return result, nil
}

// Validate reports the first missing or invalid required field.
func Validate(o entity.Observation) error {
	switch {
	case o.Date.IsZero():
		return domain.NewError(errcodes.InvalidSupplementaryPoint, "date is required")
	case o.Kind != value.KindSale && o.Kind != value.KindMSRP:
		return domain.NewError(errcodes.InvalidSupplementaryPoint, fmt.Sprintf("unknown kind %q", o.Kind))
	case !o.Price.Amount.IsPositive():
		return domain.NewError(errcodes.InvalidSupplementaryPoint, "amount must be positive")
	case o.Price.Currency == "":
		return domain.NewError(errcodes.InvalidSupplementaryPoint, "currency is required")
	case o.SourceID == "":
		return domain.NewError(errcodes.InvalidSupplementaryPoint, "sourceId is required")
	case o.URL == "":
		return domain.NewError(errcodes.InvalidSupplementaryPoint, "url is required")
	}

	return nil
}

// Sort orders the series by date, then native amount, then the remaining
// key fields so that equal inputs always produce equal output.
func Sort(series []entity.PricePoint) {
	slices.SortStableFunc(series, func(a, b entity.PricePoint) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}

		if c := a.Price.Amount.Cmp(b.Price.Amount); c != 0 {
			return c
		}

		return cmp.Or(
			strings.Compare(a.SourceID, b.SourceID),
			strings.Compare(string(a.Kind), string(b.Kind)),
			strings.Compare(string(a.Price.Currency), string(b.Price.Currency)),
			strings.Compare(a.URL, b.URL),
		)
	})
}
