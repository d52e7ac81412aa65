package series

import (
	"pricetrack/internal/domain/entity"
	"pricetrack/internal/domain/service/extractor"
)

// Source is a configured data origin together with how to read it.
type Source struct {
	Descriptor entity.SourceDescriptor
	Rules      extractor.Rules

	// Live sources are fetched on every build.
	Live bool
	// ArchivePattern enables historical snapshots for the source.
	ArchivePattern string
	// Listing marks marketplace search pages; they feed the supplementary
	// store through the scanner, not the build.
	Listing bool
}

func (s Source) Historical() bool {
	return s.ArchivePattern != ""
}

// Catalog is everything a run needs to know about the tracked product.
type Catalog struct {
	Product   entity.Product
	Sources   []Source
	PrimaryID string
}

func (c Catalog) Source(id string) (Source, bool) {
	for _, s := range c.Sources {
		if s.Descriptor.ID == id {
			return s, true
		}
	}

	return Source{}, false
}

func (c Catalog) Primary() (Source, bool) {
	return c.Source(c.PrimaryID)
}

func (c Catalog) Descriptors() []entity.SourceDescriptor {
	out := make([]entity.SourceDescriptor, 0, len(c.Sources))
	for _, s := range c.Sources {
		out = append(out, s.Descriptor)
	}

	return out
}

// Listings returns the marketplace listing sources in catalog order.
func (c Catalog) Listings() []Source {
	var out []Source

	for _, s := range c.Sources {
		if s.Listing {
			out = append(out, s)
		}
	}

	return out
}
