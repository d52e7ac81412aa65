package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"pricetrack/internal/application"
	"pricetrack/internal/config"
	"pricetrack/pkg/contextx"
	"pricetrack/pkg/logx"
)

var version = "dev" //nolint:gochecknoglobals // set by -ldflags

const usage = `usage:
  pricetrack build [-historical] [-sample-mode even|monthly|all] [-sample-cap N]
  pricetrack scan [sourceId...]
  pricetrack serve
`

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config load:", err)
		os.Exit(1)
	}

	log := logx.New(logx.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		FileMaxMB:  cfg.Log.FileMaxMB,
		FileMaxAge: cfg.Log.FileMaxAge,
		NoColor:    cfg.Log.NoColor,
	}).With(slog.String(logx.FieldAppName, application.AppName), slog.String(logx.FieldAppVersion, version))
	slog.SetDefault(log)

	ctx = contextx.WithLogger(ctx, log)

	if err := run(ctx, cfg, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2) //nolint:mnd // skip
		}

		log.Error("application failed", logx.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return flag.ErrHelp
	}

	app, err := application.New(cfg)
	if err != nil {
		return fmt.Errorf("application.New: %w", err)
	}

	app.WithVersion(version)

	switch command, rest := args[0], args[1:]; command {
	case "build":
		return runBuild(ctx, app, rest)
	case "scan":
		if _, err := app.Scan(ctx, rest...); err != nil {
			return fmt.Errorf("app.Scan: %w", err)
		}

		return nil
	case "serve":
		return app.Serve(ctx)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n%s", command, usage)
		return flag.ErrHelp
	}
}

func runBuild(ctx context.Context, app *application.App, args []string) error {
	var opts application.BuildOptions

	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	fs.BoolVar(&opts.Historical, "historical", false, "also read archived snapshots")
	fs.StringVar(&opts.SampleMode, "sample-mode", "", "snapshot selection: even, monthly or all")
	fs.IntVar(&opts.SampleCap, "sample-cap", 0, "maximum number of snapshots per source for even and monthly")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := app.Build(ctx, opts); err != nil {
		return fmt.Errorf("app.Build: %w", err)
	}

	return nil
}
