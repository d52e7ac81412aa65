package entity

import "pricetrack/internal/domain/value"

// Snapshot references one archived capture of a page.
type Snapshot struct {
	Timestamp   string     // 14-digit archive timestamp, yyyyMMddhhmmss
	Date        value.Date // calendar date of Timestamp
	OriginalURL string
}

// Page is a fetched document together with the URL it was read from.
type Page struct {
	URL  string
	Body []byte
}
