package merge

import (
	"slices"

	"pricetrack/internal/domain/entity"
	"pricetrack/internal/domain/value"
)

type dayKey struct {
	sourceID string
	date     value.Date
}

// SpreadSameDay re-dates every group of observations sharing (sourceId,
// date) so the group covers consecutive days ending on the shared date, the
// cheapest on the earliest day. Singletons are untouched. Group order follows
// first appearance; the input slice is not modified.
func SpreadSameDay(points []entity.Observation) []entity.Observation {
	groups := make(map[dayKey][]entity.Observation, len(points))
	order := make([]dayKey, 0, len(points))

	for _, p := range points {
		k := dayKey{sourceID: p.SourceID, date: p.Date}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}

		groups[k] = append(groups[k], p)
	}

	out := make([]entity.Observation, 0, len(points))

	for _, k := range order {
		group := groups[k]
		if len(group) == 1 {
			out = append(out, group[0])
			continue
		}

		slices.SortStableFunc(group, func(a, b entity.Observation) int {
			return a.Price.Amount.Cmp(b.Price.Amount)
		})

		for i, p := range group {
			p.Date = k.date.AddDays(i - (len(group) - 1))
			out = append(out, p)
		}
	}

	return out
}

// Refresh replaces stored observations of every source present in fresh.
// Sources absent from fresh keep their stored points, in stored order.
func Refresh(stored, fresh []entity.Observation) []entity.Observation {
	refreshed := make(map[string]bool)
	for _, p := range fresh {
		refreshed[p.SourceID] = true
	}

	out := make([]entity.Observation, 0, len(stored)+len(fresh))

	for _, p := range stored {
		if !refreshed[p.SourceID] {
			out = append(out, p)
		}
	}

	return append(out, fresh...)
}
