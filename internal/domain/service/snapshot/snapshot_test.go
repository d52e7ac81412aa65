package snapshot_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"pricetrack/internal/domain"
	"pricetrack/internal/domain/entity"
	"pricetrack/internal/domain/service/snapshot"
	"pricetrack/internal/domain/value"
	"pricetrack/pkg/errcodes"
)

const index = `[
 ["urlkey","timestamp","original","mimetype","statuscode","digest","length"],
 ["ca,shop)/bag","20240312101500","https://shop.ca/bag","text/html","200","AAA","100"],
 ["ca,shop)/bag","20240115083000","https://shop.ca/bag","text/html","200","BBB","100"],
 ["ca,shop)/bag","20240115221000","https://shop.ca/bag?x=1","text/html","200","CCC","100"],
 ["ca,shop)/bag","garbage","https://shop.ca/bag","text/html","200","DDD","100"],
 ["ca,shop)/bag","20240601000000","https://shop.ca/bag","text/html","200","EEE","100"]
]`

func TestParseIndex(t *testing.T) {
	rq := require.New(t)

	snaps, err := snapshot.ParseIndex([]byte(index))
	rq.NoError(err)
	rq.Len(snaps, 4)
	rq.Equal("20240312101500", snaps[0].Timestamp)
	rq.Equal(value.MustParseDate("2024-03-12"), snaps[0].Date)
	rq.Equal("https://shop.ca/bag", snaps[0].OriginalURL)
}

func TestParseIndex_Empty(t *testing.T) {
	for _, raw := range []string{"", "  \n", "[]"} {
		snaps, err := snapshot.ParseIndex([]byte(raw))
		require.NoError(t, err)
		require.Empty(t, snaps)
	}
}

func TestParseIndex_Malformed(t *testing.T) {
	tests := []string{
		`{"error":"rate limited"}`,
		`<html>503</html>`,
		`[["urlkey","original"],["a","b"]]`,
	}

	for _, raw := range tests {
		_, err := snapshot.ParseIndex([]byte(raw))
		require.Error(t, err, raw)
		require.True(t, domain.HasCode(err, errcodes.SnapshotIndexUnavailable), raw)
	}
}

func TestCollapseByDay(t *testing.T) {
	rq := require.New(t)

	snaps, err := snapshot.ParseIndex([]byte(index))
	rq.NoError(err)

	got := snapshot.CollapseByDay(snaps)

	rq.Len(got, 3)
	rq.Equal("20240115083000", got[0].Timestamp, "first capture of the day wins")
	rq.Equal("20240312101500", got[1].Timestamp)
	rq.Equal("20240601000000", got[2].Timestamp)
}

func monthly(n int) []entity.Snapshot {
	out := make([]entity.Snapshot, 0, n)
	start := value.MustParseDate("2022-01-15")

	for i := range n {
		d := value.DateOf(start.Time().AddDate(0, i, 0))
		out = append(out, entity.Snapshot{
			Timestamp: fmt.Sprintf("%04d%02d%02d120000", d.Year, d.Month, d.Day),
			Date:      d,
		})
	}

	return out
}

func TestSampleEven_Spread(t *testing.T) {
	rq := require.New(t)

	all := monthly(30)
	got := snapshot.SampleEven(all, 10)

	rq.Len(got, 10)
	rq.Equal(all[0], got[0])
	rq.Equal(all[29], got[9])

	for i := 1; i < len(got); i++ {
		rq.True(got[i-1].Date.Before(got[i].Date))

		gap := got[i].Date.Time().Sub(got[i-1].Date.Time()).Hours() / 24 / 30
		rq.InDelta(3.2, gap, 1.3, "gap between picks %d and %d", i-1, i)
	}

	rq.NotEqual(all[:10], got, "must not be a contiguous prefix")
}

func TestSampleEven_Bounds(t *testing.T) {
	rq := require.New(t)

	all := monthly(5)

	rq.Equal(all, snapshot.SampleEven(all, 0))
	rq.Equal(all, snapshot.SampleEven(all, 5))
	rq.Equal(all, snapshot.SampleEven(all, 50))
	rq.Equal([]entity.Snapshot{all[4]}, snapshot.SampleEven(all, 1))
	rq.Equal([]entity.Snapshot{all[0], all[4]}, snapshot.SampleEven(all, 2))
	rq.Empty(snapshot.SampleEven(nil, 3))
}

func TestSample_Monthly(t *testing.T) {
	rq := require.New(t)

	snaps := []entity.Snapshot{
		{Timestamp: "20240102000000", Date: value.MustParseDate("2024-01-02")},
		{Timestamp: "20240120000000", Date: value.MustParseDate("2024-01-20")},
		{Timestamp: "20240205000000", Date: value.MustParseDate("2024-02-05")},
		{Timestamp: "20250101000000", Date: value.MustParseDate("2025-01-01")},
	}

	got := snapshot.Sample(snaps, snapshot.Sampling{Mode: snapshot.ModeMonthly})
	rq.Len(got, 3)
	rq.Equal("20240102000000", got[0].Timestamp)
	rq.Equal("20240205000000", got[1].Timestamp)
	rq.Equal("20250101000000", got[2].Timestamp)

	got = snapshot.Sample(snaps, snapshot.Sampling{Mode: snapshot.ModeMonthly, Max: 2})
	rq.Equal([]entity.Snapshot{snaps[0], snaps[3]}, got)
}

func TestSample_AllIgnoresCap(t *testing.T) {
	rq := require.New(t)

	all := monthly(30)

	rq.Equal(all, snapshot.Sample(all, snapshot.Sampling{Mode: snapshot.ModeAll, Max: 10}))
	rq.Len(snapshot.Sample(all, snapshot.Sampling{Mode: snapshot.ModeEven, Max: 10}), 10)
}

func TestParseMode(t *testing.T) {
	rq := require.New(t)

	m, err := snapshot.ParseMode("")
	rq.NoError(err)
	rq.Equal(snapshot.ModeEven, m)

	m, err = snapshot.ParseMode("monthly")
	rq.NoError(err)
	rq.Equal(snapshot.ModeMonthly, m)

	_, err = snapshot.ParseMode("weekly")
	rq.Error(err)
}

type indexClientFunc func(ctx context.Context, q snapshot.Query) ([]byte, error)

func (f indexClientFunc) CaptureIndex(ctx context.Context, q snapshot.Query) ([]byte, error) {
	return f(ctx, q)
}

func TestLocator_List(t *testing.T) {
	rq := require.New(t)

	var seen snapshot.Query

	locator := snapshot.NewLocator(indexClientFunc(func(_ context.Context, q snapshot.Query) ([]byte, error) {
		seen = q
		return []byte(index), nil
	}))

	q := snapshot.Query{
		URLPattern: "shop.ca/bag*",
		From:       value.MustParseDate("2024-02-01"),
	}

	got, err := locator.List(context.Background(), q)
	rq.NoError(err)
	rq.Equal(q, seen)
	rq.Len(got, 2)
	rq.Equal("20240312101500", got[0].Timestamp)
	rq.Equal("20240601000000", got[1].Timestamp)
}

func TestLocator_ListUnavailable(t *testing.T) {
	rq := require.New(t)

	locator := snapshot.NewLocator(indexClientFunc(func(context.Context, snapshot.Query) ([]byte, error) {
		return nil, errors.New("dial tcp: connection refused")
	}))

	_, err := locator.List(context.Background(), snapshot.Query{URLPattern: "x"})
	rq.Error(err)
	rq.True(domain.HasCode(err, errcodes.SnapshotIndexUnavailable))
}
