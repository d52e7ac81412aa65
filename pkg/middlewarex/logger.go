package middlewarex

import (
	"log/slog"
	"net/http"

	"pricetrack/pkg/contextx"
	"pricetrack/pkg/logx"
)

// Logger attaches a request-scoped logger to the context. It runs after
// TraceID; a request that bypassed it is logged with an empty trace id.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		attrs := []any{
			logx.Stringer(logx.FieldTraceID, contextx.TraceIDOrDefault(ctx, "")),
			slog.String(logx.FieldHTTPMethod, r.Method),
			slog.String(logx.FieldHTTPPath, r.URL.Path),
			slog.String(logx.FieldIP, r.RemoteAddr),
		}

		if r.URL.RawQuery != "" {
			attrs = append(attrs, slog.String("query", r.URL.RawQuery))
		}

		if ua := r.UserAgent(); ua != "" {
			attrs = append(attrs, slog.String(logx.FieldUserAgent, ua))
		}

		ctx = contextx.WithLogger(ctx, logger(ctx).With(attrs...))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
