package logx

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"
)

var Error = tint.Err //nolint:gochecknoglobals

func Stringer(name string, value fmt.Stringer) slog.Attr {
	return slog.String(name, value.String())
}

// Options describes where and how verbosely to log.
type Options struct {
	Level      string
	File       string
	FileMaxMB  int
	FileMaxAge int
	NoColor    bool
}

// New builds the process logger: colored console output on stderr and, when
// File is set, a rotated plain-text copy.
func New(opts Options) *slog.Logger {
	level := ParseLevel(opts.Level)

	console := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    opts.NoColor,
	})

	if opts.File == "" {
		return slog.New(console)
	}

	var sink io.Writer = &lumberjack.Logger{
		Filename: opts.File,
		MaxSize:  max(opts.FileMaxMB, 1),
		MaxAge:   opts.FileMaxAge,
		Compress: true,
	}

	return slog.New(fanout{
		console,
		slog.NewJSONHandler(sink, &slog.HandlerOptions{Level: level}),
	})
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
