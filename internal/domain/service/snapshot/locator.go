package snapshot

import (
	"context"

	"pricetrack/internal/domain"
	"pricetrack/internal/domain/entity"
	"pricetrack/internal/domain/value"
	"pricetrack/pkg/contextx"
	"pricetrack/pkg/errcodes"
	"pricetrack/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals // skip

// Query selects captures of a URL or URL prefix ("example.com/item*").
// Zero dates leave the range open.
type Query struct {
	URLPattern string
	From       value.Date
	To         value.Date
}

func (q Query) covers(d value.Date) bool {
	if !q.From.IsZero() && d.Before(q.From) {
		return false
	}

	return q.To.IsZero() || !q.To.Before(d)
}

// IndexClient returns the raw capture index for a query. Implementations
// ask the archive for successful captures only, collapsed by content digest.
type IndexClient interface {
	CaptureIndex(ctx context.Context, q Query) ([]byte, error)
}

type Locator struct {
	client IndexClient
}

func NewLocator(client IndexClient) *Locator {
	return &Locator{client: client}
}

// List returns one snapshot per calendar day, oldest first. Any failure to
// read the index is reported with errcodes.SnapshotIndexUnavailable.
func (l *Locator) List(ctx context.Context, q Query) ([]entity.Snapshot, error) {
	raw, err := l.client.CaptureIndex(ctx, q)
	if err != nil {
		if domain.HasCode(err, errcodes.SnapshotIndexUnavailable) {
			return nil, err
		}

		return nil, domain.WrapError(err, errcodes.SnapshotIndexUnavailable, "capture index request failed")
	}

	snaps, err := ParseIndex(raw)
	if err != nil {
		return nil, err
	}

	inRange := snaps[:0]

	for _, s := range snaps {
		if q.covers(s.Date) {
			inRange = append(inRange, s)
		}
	}

	out := CollapseByDay(inRange)

	logger(ctx).Debug("capture index read",
		logx.FieldURL, q.URLPattern,
		"captures", len(snaps),
		logx.FieldCount, len(out),
	)

	return out, nil
}
