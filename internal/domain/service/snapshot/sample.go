package snapshot

import (
	"fmt"

	"pricetrack/internal/domain/entity"
)

// Mode selects how a long capture history is thinned out.
type Mode string

const (
	ModeAll     Mode = "all"
	ModeEven    Mode = "even"
	ModeMonthly Mode = "monthly"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeAll, ModeEven, ModeMonthly:
		return m, nil
	case "":
		return ModeEven, nil
	default:
		return "", fmt.Errorf("snapshot.ParseMode: unknown mode %q", s)
	}
}

// Sampling is applied to the sorted, day-collapsed list.
type Sampling struct {
	Mode Mode
	Max  int // upper bound for even and monthly; zero means unbounded
}

// Sample selects snapshots according to s. The input must be sorted oldest
// first. Selection is deterministic. ModeAll keeps every capture regardless
// of Max.
func Sample(snaps []entity.Snapshot, s Sampling) []entity.Snapshot {
	switch s.Mode {
	case ModeAll:
		return snaps
	case ModeMonthly:
		return SampleEven(FirstPerMonth(snaps), s.Max)
	default:
		return SampleEven(snaps, s.Max)
	}
}

// SampleEven picks max indices spread evenly over snaps, always including
// the first and the last element. With max <= 0 or max >= len(snaps) the
// input is returned as is.
func SampleEven(snaps []entity.Snapshot, maxCount int) []entity.Snapshot {
	n := len(snaps)
	if maxCount <= 0 || maxCount >= n {
		return snaps
	}

	if maxCount == 1 {
		return []entity.Snapshot{snaps[n-1]}
	}

	out := make([]entity.Snapshot, 0, maxCount)
	last := -1

	for i := range maxCount {
		// Rounded i*(n-1)/(maxCount-1), strictly increasing since n > maxCount.
		idx := (i*(n-1) + (maxCount-1)/2) / (maxCount - 1)
		if idx == last {
			continue
		}

		out = append(out, snaps[idx])
		last = idx
	}

	return out
}

// FirstPerMonth keeps the earliest snapshot of each calendar month.
func FirstPerMonth(snaps []entity.Snapshot) []entity.Snapshot {
	out := make([]entity.Snapshot, 0, len(snaps))

	for _, s := range snaps {
		if k := len(out); k > 0 && out[k-1].Date.Year == s.Date.Year && out[k-1].Date.Month == s.Date.Month {
			continue
		}

		out = append(out, s)
	}

	return out
}
