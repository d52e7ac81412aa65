package handler

import (
	"context"

	"pricetrack/internal/domain/entity"
	"pricetrack/internal/worker"
)

type artifactReader interface {
	Read(context.Context) (entity.Document, error)
}

type listingScanner interface {
	ScanSources(ctx context.Context, ids ...string) (worker.ScanReport, error)
}

type Handler struct {
	artifact  artifactReader
	scanner   listingScanner
	primaryID string
}

// New builds the command handler. A nil scanner disables /scan.
func New(artifact artifactReader, scanner listingScanner, primaryID string) *Handler {
	return &Handler{
		artifact:  artifact,
		scanner:   scanner,
		primaryID: primaryID,
	}
}
