package persistence

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"pricetrack/internal/domain"
	"pricetrack/internal/domain/entity"
	"pricetrack/pkg/errcodes"
	"pricetrack/pkg/logx"
)

// ArtifactFile is the canonical series document on local disk.
type ArtifactFile struct {
	path string
}

func NewArtifactFile(path string) *ArtifactFile {
	return &ArtifactFile{path: path}
}

func (a *ArtifactFile) Path() string {
	return a.path
}

func (a *ArtifactFile) Write(ctx context.Context, doc entity.Document) error {
	b, err := EncodeDocument(doc)
	if err != nil {
		return err
	}

	if err := writeFileAtomic(a.path, b); err != nil {
		return fmt.Errorf("persistence.ArtifactFile.Write: %w", err)
	}

	logger(ctx).Info("series written",
		logx.FieldURL, a.path,
		logx.FieldCount, len(doc.Series),
	)

	return nil
}

func (a *ArtifactFile) Read(_ context.Context) (entity.Document, error) {
	raw, err := os.ReadFile(a.path)
	if errors.Is(err, fs.ErrNotExist) {
		return entity.Document{}, domain.WrapError(err, errcodes.ArtifactNotFound, "series has not been built yet")
	}

	if err != nil {
		return entity.Document{}, fmt.Errorf("os.ReadFile: %w", err)
	}

	var doc entity.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return entity.Document{}, fmt.Errorf("json.Unmarshal: %w", err)
	}

	return doc, nil
}

// EncodeDocument renders the artifact as indented JSON with empty lists
// instead of nulls.
func EncodeDocument(doc entity.Document) ([]byte, error) {
	if doc.Sources == nil {
		doc.Sources = []entity.SourceDescriptor{}
	}

	if doc.Series == nil {
		doc.Series = []entity.PricePoint{}
	}

	if doc.Product.Notes == nil {
		doc.Product.Notes = []string{}
	}

	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("json.MarshalIndent: %w", err)
	}

	return append(b, '\n'), nil
}
