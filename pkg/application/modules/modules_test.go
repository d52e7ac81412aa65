package modules_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"pricetrack/pkg/application/modules"
)

func TestHTTPServerStopsWithContext(t *testing.T) {
	rq := require.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	modules.HTTPServer{
		ListenAddress: "127.0.0.1:10011",
		Handler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("ok"))
		}),
		ShutdownTimeout: time.Second,
	}.Run(ctx, g)

	// Wait for server to start.
	time.Sleep(500 * time.Millisecond)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://127.0.0.1:10011/", http.NoBody)
	rq.NoError(err)

	resp, err := http.DefaultClient.Do(req)
	rq.NoError(err)

	body, err := io.ReadAll(resp.Body)
	rq.NoError(err)
	rq.NoError(resp.Body.Close())
	rq.Equal("ok", string(body))

	cancel()

	rq.NoError(g.Wait())
}

func TestProbeServerNamesFailingCheck(t *testing.T) {
	rq := require.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	var notBuilt atomic.Bool

	modules.ProbeServer{
		Name:          "pricetrack",
		Version:       "test",
		ListenAddress: "127.0.0.1:10012",
		Checks: []modules.ReadyCheck{
			{Name: "artifact", Check: func(context.Context) error {
				if notBuilt.Load() {
					return errors.New("series has not been built yet")
				}

				return nil
			}},
			{Name: "supplementary", Check: func(context.Context) error { return nil }},
		},
	}.Run(ctx, g)

	// Wait for server to start.
	time.Sleep(500 * time.Millisecond)

	get := func() (int, string) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://127.0.0.1:10012/ready", http.NoBody)
		rq.NoError(err)

		resp, err := http.DefaultClient.Do(req)
		rq.NoError(err)

		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		rq.NoError(err)

		return resp.StatusCode, string(body)
	}

	status, _ := get()
	rq.Equal(http.StatusOK, status)

	notBuilt.Store(true)

	status, body := get()
	rq.Equal(http.StatusServiceUnavailable, status)
	rq.Contains(body, "artifact: series has not been built yet")

	cancel()

	rq.NoError(g.Wait())
}

func TestProbeServerDisabled(t *testing.T) {
	rq := require.New(t)

	var g errgroup.Group

	modules.ProbeServer{Name: "pricetrack"}.Run(context.Background(), &g)

	rq.NoError(g.Wait())
}
