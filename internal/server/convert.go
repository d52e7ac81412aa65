package server

import (
	"pricetrack/internal/domain/entity"
	"pricetrack/pkg/rest"
)

func newRESTSource(d entity.SourceDescriptor) rest.Source {
	return rest.Source{
		ID:       d.ID,
		Name:     d.Name,
		URL:      d.URL,
		Currency: d.Currency.String(),
	}
}
