package logx_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"pricetrack/pkg/logx"
)

func TestParseLevel(t *testing.T) {
	rq := require.New(t)

	rq.Equal(slog.LevelDebug, logx.ParseLevel("DEBUG"))
	rq.Equal(slog.LevelWarn, logx.ParseLevel("warning"))
	rq.Equal(slog.LevelError, logx.ParseLevel("error"))
	rq.Equal(slog.LevelInfo, logx.ParseLevel(""))
	rq.Equal(slog.LevelInfo, logx.ParseLevel("verbose"))
}

func TestNewWritesFileSink(t *testing.T) {
	rq := require.New(t)

	path := filepath.Join(t.TempDir(), "pricetrack.log")

	log := logx.New(logx.Options{Level: "info", File: path, NoColor: true})
	log.Info("run finished", slog.String(logx.FieldSourceID, "retailer"))
	log.Debug("hidden")

	rq.True(log.Enabled(context.Background(), slog.LevelInfo))
	rq.False(log.Enabled(context.Background(), slog.LevelDebug))

	b, err := os.ReadFile(path)
	rq.NoError(err)
	rq.Contains(string(b), `"msg":"run finished"`)
	rq.Contains(string(b), `"source-id":"retailer"`)
	rq.NotContains(string(b), "hidden")
}
