package middlewarex_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/xid"
	"github.com/stretchr/testify/require"

	"pricetrack/pkg/contextx"
	"pricetrack/pkg/logx"
	"pricetrack/pkg/middlewarex"
)

func chain(h http.Handler) http.Handler {
	masker := logx.NewSensitiveDataMasker()

	h = middlewarex.ResponseLogging(masker, 256)(h)
	h = middlewarex.RequestLogging(masker, 256)(h)
	h = middlewarex.Recovery(h)
	h = middlewarex.Logger(h)

	return middlewarex.TraceID(h)
}

func TestRecoveryRepliesWithErrorBody(t *testing.T) {
	rq := require.New(t)

	h := chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/series", http.NoBody)
	req.Header.Set("X-Trace-Id", "trace-1")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	rq.Equal(http.StatusInternalServerError, rec.Code)
	rq.Equal("trace-1", rec.Header().Get("X-Trace-Id"))
	rq.JSONEq(`{"code":"InternalServerError","message":"","supportId":"trace-1"}`, rec.Body.String())
}

func TestTraceIDIsGeneratedAndPropagated(t *testing.T) {
	rq := require.New(t)

	var seen contextx.TraceID

	h := chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := contextx.TraceIDFromContext(r.Context())
		rq.NoError(err)

		seen = id

		_, _ = w.Write([]byte(`{"series":[]}`))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/series", http.NoBody))

	rq.Equal(http.StatusOK, rec.Code)
	rq.NotEmpty(seen)
	rq.Equal(seen.String(), rec.Header().Get("X-Trace-Id"))
	rq.Equal(`{"series":[]}`, rec.Body.String())
}

func TestTraceIDFromCaller(t *testing.T) {
	cases := []struct {
		name    string
		headers map[string]string
		want    string // empty means a generated id
	}{
		{name: "trace header", headers: map[string]string{"X-Trace-Id": "abc-123"}, want: "abc-123"},
		{name: "request id fallback", headers: map[string]string{"X-Request-Id": "req.7"}, want: "req.7"},
		{name: "trace header wins", headers: map[string]string{"X-Trace-Id": "t1", "X-Request-Id": "r1"}, want: "t1"},
		{name: "newline replaced", headers: map[string]string{"X-Trace-Id": "a\nb"}},
		{name: "too long replaced", headers: map[string]string{"X-Trace-Id": strings.Repeat("a", 65)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			h := middlewarex.TraceID(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

			req := httptest.NewRequest(http.MethodGet, "/v1/sources", http.NoBody)
			for k, v := range tc.headers {
				req.Header[k] = []string{v}
			}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			got := rec.Header().Get("X-Trace-Id")
			if tc.want != "" {
				rq.Equal(tc.want, got)
				return
			}

			_, err := xid.FromString(got)
			rq.NoError(err, "generated id %q", got)
		})
	}
}
