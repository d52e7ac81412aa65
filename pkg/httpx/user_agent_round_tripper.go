package httpx

import (
	"net/http"
)

// UserAgentRoundTripper stamps every outgoing request with a fixed User-Agent
// so the sites we read can identify the tool.
type UserAgentRoundTripper struct {
	next      http.RoundTripper
	userAgent string
}

func NewUserAgentRoundTripper(next http.RoundTripper, userAgent string) UserAgentRoundTripper {
	return UserAgentRoundTripper{
		next:      next,
		userAgent: userAgent,
	}
}

func (rt UserAgentRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if rt.userAgent == "" || req.Header.Get("User-Agent") != "" {
		return rt.next.RoundTrip(req) //nolint:wrapcheck
	}

	// RoundTrippers must not modify the caller's request.
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", rt.userAgent)

	return rt.next.RoundTrip(req) //nolint:wrapcheck
}
