// Package rest holds the wire types of the read API that are not the series
// artifact itself.
package rest

type Source struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	URL        string `json:"url"`
	Currency   string `json:"currency"`
	Points     int    `json:"points"`
	LatestDate string `json:"latestDate,omitempty"`
}

type SourcesResponse struct {
	Sources []Source `json:"sources"`
}

// Error is the body of every non-2xx response.
type Error struct {
	// Code is a stable machine-readable identifier.
	Code ErrorCode `json:"code"`

	// Message is meant for people.
	Message string `json:"message"`

	// SupportID is the trace id of the request.
	SupportID string `json:"supportId"`
}

type ErrorCode string
