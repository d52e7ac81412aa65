package middlewarex

import (
	"net/http"

	"github.com/rs/xid"

	"pricetrack/pkg/contextx"
)

const (
	headerNameTraceID   = "X-Trace-Id"
	headerNameRequestID = "X-Request-Id"

	maxTraceIDLen = 64
)

// TraceID reuses a caller's trace id from X-Trace-Id or X-Request-Id and
// generates one otherwise. Ids that could break log lines are replaced.
func TraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(headerNameTraceID)
		if traceID == "" {
			traceID = r.Header.Get(headerNameRequestID)
		}

		if !validTraceID(traceID) {
			traceID = xid.New().String()
		}

		ctx := contextx.WithTraceID(r.Context(), contextx.TraceID(traceID))

		w.Header().Set(headerNameTraceID, traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func validTraceID(id string) bool {
	if id == "" || len(id) > maxTraceIDLen {
		return false
	}

	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.':
		default:
			return false
		}
	}

	return true
}
