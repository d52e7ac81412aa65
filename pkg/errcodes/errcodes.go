package errcodes

// ErrorCode is a stable machine-readable error identifier.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

const (
	InternalServerError ErrorCode = "InternalServerError"
	TimeoutExceeded     ErrorCode = "TimeoutExceeded"
	ValidationError     ErrorCode = "ValidationError"
	NotFound            ErrorCode = "NotFound"

	// Pipeline.
	SourceUnavailable         ErrorCode = "SourceUnavailable"         // live page unreachable or non-2xx
	SnapshotIndexUnavailable  ErrorCode = "SnapshotIndexUnavailable"  // archive index down or malformed
	SnapshotUnavailable       ErrorCode = "SnapshotUnavailable"       // one archived page failed
	RateUnavailable           ErrorCode = "RateUnavailable"           // no FX rate for (date, pair)
	InvalidSupplementaryPoint ErrorCode = "InvalidSupplementaryPoint" // missing required fields
	InvalidCatalog            ErrorCode = "InvalidCatalog"
	ArtifactNotFound          ErrorCode = "ArtifactNotFound"
	PriceNotFound             ErrorCode = "PriceNotFound"
)
