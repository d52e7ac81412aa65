// Package modules runs long-lived servers inside one errgroup so that the
// first failure stops the whole process.
package modules

import "pricetrack/pkg/contextx"

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals
