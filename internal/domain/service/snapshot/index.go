// Package snapshot turns a web-archive capture index into an ordered list of
// dated snapshot references and samples it.
package snapshot

import (
	"fmt"
	"slices"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"pricetrack/internal/domain"
	"pricetrack/internal/domain/entity"
	"pricetrack/internal/domain/value"
	"pricetrack/pkg/errcodes"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

const timestampLayout = "20060102150405"

// ParseTimestamp reads an archive timestamp. Shorter prefixes such as
// "20240610" are accepted, as the archive does.
func ParseTimestamp(ts string) (time.Time, error) {
	if len(ts) < len("20060102") || len(ts) > len(timestampLayout) {
		return time.Time{}, fmt.Errorf("snapshot.ParseTimestamp: bad length %q", ts)
	}

	t, err := time.Parse(timestampLayout[:len(ts)], ts)
	if err != nil {
		return time.Time{}, fmt.Errorf("snapshot.ParseTimestamp: %w", err)
	}

	return t, nil
}

// ParseIndex decodes a capture index response: a JSON array whose first row
// names the columns, followed by one row per capture. An empty body or an
// empty array means no captures. Rows with an unreadable timestamp are
// dropped. The result keeps index order.
func ParseIndex(raw []byte) ([]entity.Snapshot, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, nil
	}

	var rows [][]string
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, domain.WrapError(err, errcodes.SnapshotIndexUnavailable, "malformed capture index")
	}

	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	tsCol := slices.Index(header, "timestamp")
	urlCol := slices.Index(header, "original")

	if tsCol < 0 {
		return nil, domain.NewError(errcodes.SnapshotIndexUnavailable, "capture index has no timestamp column")
	}

	out := make([]entity.Snapshot, 0, len(rows)-1)

	for _, row := range rows[1:] {
		if tsCol >= len(row) {
			continue
		}

		t, err := ParseTimestamp(row[tsCol])
		if err != nil {
			continue
		}

		s := entity.Snapshot{Timestamp: row[tsCol], Date: value.DateOf(t)}
		if urlCol >= 0 && urlCol < len(row) {
			s.OriginalURL = row[urlCol]
		}

		out = append(out, s)
	}

	return out, nil
}

// CollapseByDay sorts snapshots oldest first and keeps the earliest capture
// of each calendar day.
func CollapseByDay(snaps []entity.Snapshot) []entity.Snapshot {
	sorted := slices.Clone(snaps)
	slices.SortStableFunc(sorted, func(a, b entity.Snapshot) int {
		return strings.Compare(a.Timestamp, b.Timestamp)
	})

	out := make([]entity.Snapshot, 0, len(sorted))

	for _, s := range sorted {
		if n := len(out); n > 0 && out[n-1].Date == s.Date {
			continue
		}

		out = append(out, s)
	}

	return out
}
