package httpx_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"pricetrack/pkg/httpx"
)

func TestUserAgentRoundTripper(t *testing.T) {
	rq := require.New(t)

	testCases := []struct {
		name      string
		userAgent string
		header    string
		want      string
	}{
		{
			name:      "Sets agent",
			userAgent: "pricetrack/1.0 (+https://example.org/pricetrack)",
			want:      "pricetrack/1.0 (+https://example.org/pricetrack)",
		},
		{
			name:      "Keeps explicit agent",
			userAgent: "pricetrack/1.0",
			header:    "custom/2.0",
			want:      "custom/2.0",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			var got string

			httpServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.Header.Get("User-Agent")
				w.WriteHeader(http.StatusNoContent)
			}))
			defer httpServer.Close()

			client := &http.Client{
				Transport: httpx.NewUserAgentRoundTripper(http.DefaultTransport, tc.userAgent),
			}

			req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, httpServer.URL, http.NoBody)
			rq.NoError(err)

			if tc.header != "" {
				req.Header.Set("User-Agent", tc.header)
			}

			resp, err := client.Do(req)
			rq.NoError(err)
			resp.Body.Close()

			rq.Equal(tc.want, got)
			rq.Equal(tc.header, req.Header.Get("User-Agent"))
		})
	}
}
