package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
)

// WriteTextfile stores the gathered metrics in the node-exporter textfile
// format. Batch commands call it once before exiting.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { //nolint:mnd // skip
		return fmt.Errorf("os.MkdirAll: %w", err)
	}

	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("prometheus.WriteToTextfile: %w", err)
	}

	return nil
}
