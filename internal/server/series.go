package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pricetrack/internal/domain"
	"pricetrack/internal/domain/entity"
	"pricetrack/internal/domain/value"
	"pricetrack/pkg/errcodes"
	"pricetrack/pkg/httpx/reply"
	"pricetrack/pkg/lox"
	"pricetrack/pkg/rest"
)

type artifactReader interface {
	Read(context.Context) (entity.Document, error)
}

type SeriesServer struct {
	artifact artifactReader
}

func NewSeriesServer(artifact artifactReader) SeriesServer {
	return SeriesServer{
		artifact: artifact,
	}
}

// getV1Series returns the artifact, optionally narrowed by kind and date.
func (s SeriesServer) getV1Series(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	filter, err := parseFilter(r)
	if err != nil {
		return err
	}

	doc, err := s.artifact.Read(ctx)
	if err != nil {
		return fmt.Errorf("artifact.Read: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, filter.apply(doc))

	return nil
}

func (s SeriesServer) getV1Sources(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	doc, err := s.artifact.Read(ctx)
	if err != nil {
		return fmt.Errorf("artifact.Read: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTSources(doc))

	return nil
}

func (s SeriesServer) getV1SourceSeries(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	filter, err := parseFilter(r)
	if err != nil {
		return err
	}

	doc, err := s.artifact.Read(ctx)
	if err != nil {
		return fmt.Errorf("artifact.Read: %w", err)
	}

	sourceID := chi.URLParam(r, "sourceId")

	descriptor, ok := doc.Source(sourceID)
	if !ok {
		return domain.NewError(errcodes.NotFound, fmt.Sprintf("unknown source %q", sourceID))
	}

	filter.sourceID = sourceID
	doc = filter.apply(doc)
	doc.Sources = []entity.SourceDescriptor{descriptor}

	reply.JSON(ctx, w, http.StatusOK, doc)

	return nil
}

type seriesFilter struct {
	sourceID string
	kind     value.Kind
	from     value.Date
	to       value.Date
}

func parseFilter(r *http.Request) (seriesFilter, error) {
	var (
		f   seriesFilter
		err error
		q   = r.URL.Query()
	)

	if k := q.Get("kind"); k != "" {
		if f.kind, err = value.ParseKind(k); err != nil {
			return f, domain.WrapError(err, errcodes.ValidationError, "kind must be sale or msrp")
		}
	}

	if d := q.Get("from"); d != "" {
		if f.from, err = value.ParseDate(d); err != nil {
			return f, domain.WrapError(err, errcodes.ValidationError, "from must be a YYYY-MM-DD date")
		}
	}

	if d := q.Get("to"); d != "" {
		if f.to, err = value.ParseDate(d); err != nil {
			return f, domain.WrapError(err, errcodes.ValidationError, "to must be a YYYY-MM-DD date")
		}
	}

	if !f.from.IsZero() && !f.to.IsZero() && f.to.Before(f.from) {
		return f, domain.NewError(errcodes.ValidationError, "to is before from")
	}

	return f, nil
}

func (f seriesFilter) empty() bool {
	return f.sourceID == "" && f.kind == "" && f.from.IsZero() && f.to.IsZero()
}

// apply keeps the order of the artifact.
func (f seriesFilter) apply(doc entity.Document) entity.Document {
	if f.empty() {
		return doc
	}

	series := make([]entity.PricePoint, 0, len(doc.Series))

	for _, p := range doc.Series {
		switch {
		case f.sourceID != "" && p.SourceID != f.sourceID,
			f.kind != "" && p.Kind != f.kind,
			!f.from.IsZero() && p.Date.Before(f.from),
			!f.to.IsZero() && f.to.Before(p.Date):
			continue
		}

		series = append(series, p)
	}

	doc.Series = series

	return doc
}

func newRESTSources(doc entity.Document) rest.SourcesResponse {
	stats := map[string]*rest.Source{}
	out := lox.Map(doc.Sources, newRESTSource)

	for i := range out {
		stats[out[i].ID] = &out[i]
	}

	for _, p := range doc.Series {
		s, ok := stats[p.SourceID]
		if !ok {
			continue
		}

		s.Points++

		if s.LatestDate == "" || p.Date.String() >= s.LatestDate {
			s.LatestDate = p.Date.String()
		}
	}

	return rest.SourcesResponse{Sources: out}
}
