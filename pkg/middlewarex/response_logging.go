package middlewarex

import (
	"bytes"
	"cmp"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/zenazn/goji/web/mutil"

	"pricetrack/pkg/logx"
)

// ResponseLogging logs status and duration of every response. Bodies are
// only kept for errors: successful answers are whole series artifacts.
//
// The trouble with optional interfaces:
// https://blog.merovius.de/posts/2017-07-30-the-trouble-with-optional-interfaces/
func ResponseLogging(
	sensitiveDataMasker logx.SensitiveDataMaskerInterface,
	logFieldMaxLen int,
) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			start := time.Now()
			lw := mutil.WrapWriter(w)

			var buf bytes.Buffer

			lw.Tee(&buf)

			next.ServeHTTP(lw, r)

			// lw.Status() is 0 when the handler never called WriteHeader.
			status := cmp.Or(lw.Status(), http.StatusOK)

			attrs := []any{
				slog.Int(logx.FieldResponseStatus, status),
				slog.Int("bytes", lw.BytesWritten()),
				slog.Int64(logx.FieldDurationMs, time.Since(start).Milliseconds()),
			}

			if status >= http.StatusBadRequest {
				headers, err := responseHeaders(w)
				if err != nil {
					logger(ctx).Error("responseHeaders", logx.Error(err))
				}

				dump := buf.Bytes()
				if len(dump) > logFieldMaxLen {
					dump = dump[:logFieldMaxLen]
				}

				attrs = append(attrs,
					slog.String(logx.FieldResponseHeaders, string(sensitiveDataMasker.Mask(headers))),
					slog.String(logx.FieldResponseBody, string(sensitiveDataMasker.Mask(dump))),
				)
			}

			logger(ctx).Info(logx.FieldHTTPResponse, attrs...)
		})
	}
}

func responseHeaders(w http.ResponseWriter) ([]byte, error) {
	var buf bytes.Buffer

	if err := w.Header().WriteSubset(&buf, nil); err != nil {
		return nil, fmt.Errorf("header.WriteSubset: %w", err)
	}

	return buf.Bytes(), nil
}
