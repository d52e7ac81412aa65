// Package wayback reads the Internet Archive capture index and archived pages.
package wayback

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"pricetrack/internal/domain"
	"pricetrack/internal/domain/entity"
	"pricetrack/internal/domain/service/snapshot"
	"pricetrack/internal/domain/value"
	"pricetrack/pkg/errcodes"
)

const (
	DefaultCDXURL = "https://web.archive.org/cdx/search/cdx"
	DefaultWebURL = "https://web.archive.org/web"
)

// Getter performs a GET and returns the body of a 2xx answer.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

type Client struct {
	getter Getter
	cdxURL string
	webURL string
}

func NewClient(getter Getter, cdxURL, webURL string) *Client {
	if cdxURL == "" {
		cdxURL = DefaultCDXURL
	}

	if webURL == "" {
		webURL = DefaultWebURL
	}

	return &Client{
		getter: getter,
		cdxURL: cdxURL,
		webURL: strings.TrimSuffix(webURL, "/"),
	}
}

// IndexURL builds the capture index query: successful captures only,
// collapsed by content digest, timestamp and original URL columns.
func (c *Client) IndexURL(q snapshot.Query) string {
	params := url.Values{}
	params.Set("url", q.URLPattern)
	params.Set("output", "json")
	params.Set("fl", "timestamp,original")
	params.Set("filter", "statuscode:200")
	params.Set("collapse", "digest")

	if !q.From.IsZero() {
		params.Set("from", compact(q.From))
	}

	if !q.To.IsZero() {
		params.Set("to", compact(q.To))
	}

	return c.cdxURL + "?" + params.Encode()
}

func (c *Client) CaptureIndex(ctx context.Context, q snapshot.Query) ([]byte, error) {
	body, err := c.getter.Get(ctx, c.IndexURL(q))
	if err != nil {
		return nil, domain.WrapError(err, errcodes.SnapshotIndexUnavailable, "capture index request failed")
	}

	return body, nil
}

// PublicURL is the address a person would open to view the capture.
func (c *Client) PublicURL(s entity.Snapshot) string {
	return fmt.Sprintf("%s/%s/%s", c.webURL, s.Timestamp, s.OriginalURL)
}

// rawURL asks for the page as captured, without the archive's toolbar and
// link rewriting.
func (c *Client) rawURL(s entity.Snapshot) string {
	return fmt.Sprintf("%s/%sid_/%s", c.webURL, s.Timestamp, s.OriginalURL)
}

// FetchSnapshot downloads the raw capture. The returned page carries the
// public snapshot URL.
func (c *Client) FetchSnapshot(ctx context.Context, s entity.Snapshot) (entity.Page, error) {
	body, err := c.getter.Get(ctx, c.rawURL(s))
	if err != nil {
		return entity.Page{}, domain.WrapError(err, errcodes.SnapshotUnavailable, "snapshot "+s.Timestamp)
	}

	return entity.Page{URL: c.PublicURL(s), Body: body}, nil
}

func compact(d value.Date) string {
	return strings.ReplaceAll(d.String(), "-", "")
}
