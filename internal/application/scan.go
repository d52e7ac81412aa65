package application

import (
	"context"
	"fmt"
	"time"

	"pricetrack/internal/worker"
)

// Scan reads the given marketplace listing sources once, all of them when
// none is given, and refreshes the supplementary store.
func (a *App) Scan(ctx context.Context, sourceIDs ...string) (worker.ScanReport, error) {
	ctx = startRun(ctx, "scan")
	started := time.Now()

	defer a.finishRun(ctx, "scan", started)

	report, err := a.scanner().ScanSources(ctx, sourceIDs...)
	if err != nil {
		return report, fmt.Errorf("scanner.ScanSources: %w", err)
	}

	return report, nil
}
