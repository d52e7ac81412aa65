package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"

	"pricetrack/internal/domain"
	"pricetrack/internal/domain/entity"
	"pricetrack/internal/domain/service/extractor"
	"pricetrack/internal/domain/service/series"
	"pricetrack/internal/domain/value"
	"pricetrack/pkg/errcodes"
	"pricetrack/pkg/lox"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

type catalogDTO struct {
	Product   productDTO  `json:"product"`
	PrimaryID string      `json:"primaryId" validate:"required"`
	Sources   []sourceDTO `json:"sources"   validate:"required,min=1,unique=ID,dive"`
}

type productDTO struct {
	Name            string   `json:"name"            validate:"required"`
	Brand           string   `json:"brand"`
	Line            string   `json:"line"`
	Color           string   `json:"color"`
	CurrencyDisplay string   `json:"currencyDisplay" validate:"required,len=3,uppercase"`
	Notes           []string `json:"notes"`
}

type sourceDTO struct {
	ID             string   `json:"id"             validate:"required"`
	Name           string   `json:"name"           validate:"required"`
	URL            string   `json:"url"            validate:"required,url"`
	Currency       string   `json:"currency"       validate:"required,len=3,uppercase"`
	Live           bool     `json:"live"`
	ArchivePattern string   `json:"archivePattern"`
	Listing        bool     `json:"listing"`
	Rules          rulesDTO `json:"rules"`
}

type rulesDTO struct {
	Strategies  []string  `json:"strategies"  validate:"required,min=1,dive,oneof=structured labeled embedded-json generic"`
	SaneRange   *rangeDTO `json:"saneRange"`
	MSRPLabels  []string  `json:"msrpLabels"  validate:"dive,required"`
	LabelWindow int       `json:"labelWindow" validate:"gte=0"`
}

type rangeDTO struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// LoadCatalog reads and validates the product catalog.
func LoadCatalog(path string) (series.Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return series.Catalog{}, fmt.Errorf("os.ReadFile: %w", err)
	}

	return ParseCatalog(raw)
}

func ParseCatalog(raw []byte) (series.Catalog, error) {
	var dto catalogDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return series.Catalog{}, domain.WrapError(err, errcodes.InvalidCatalog, "catalog is not valid JSON")
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(dto); err != nil {
		return series.Catalog{}, domain.WrapError(err, errcodes.InvalidCatalog, "catalog failed validation")
	}

	sources, err := lox.MapErr(dto.Sources, newSource)
	if err != nil {
		return series.Catalog{}, domain.WrapError(err, errcodes.InvalidCatalog, "catalog source is invalid")
	}

	catalog := series.Catalog{
		Product: entity.Product{
			Name:            dto.Product.Name,
			Brand:           dto.Product.Brand,
			Line:            dto.Product.Line,
			Color:           dto.Product.Color,
			CurrencyDisplay: value.Currency(dto.Product.CurrencyDisplay),
			Notes:           dto.Product.Notes,
		},
		Sources:   sources,
		PrimaryID: dto.PrimaryID,
	}

	primary, ok := catalog.Primary()
	if !ok {
		return series.Catalog{}, domain.NewError(errcodes.InvalidCatalog,
			fmt.Sprintf("primary source %q is not in the catalog", dto.PrimaryID))
	}

	if !primary.Live {
		return series.Catalog{}, domain.NewError(errcodes.InvalidCatalog,
			fmt.Sprintf("primary source %q must be live", dto.PrimaryID))
	}

	return catalog, nil
}

func newSource(dto sourceDTO) (series.Source, error) {
	strategies, err := lox.MapErr(dto.Rules.Strategies, extractor.Lookup)
	if err != nil {
		return series.Source{}, fmt.Errorf("source %s: %w", dto.ID, err)
	}

	currency := value.Currency(dto.Currency)

	rules := extractor.Rules{
		Currency:    currency,
		Strategies:  strategies,
		MSRPLabels:  dto.Rules.MSRPLabels,
		LabelWindow: dto.Rules.LabelWindow,
	}

	if r := dto.Rules.SaneRange; r != nil {
		if !r.Max.IsZero() && r.Min.GreaterThan(r.Max) {
			return series.Source{}, fmt.Errorf("source %s: sane range min %s exceeds max %s", dto.ID, r.Min, r.Max)
		}

		rules.SaneRange = extractor.Range{Min: r.Min, Max: r.Max}
	}

	return series.Source{
		Descriptor: entity.SourceDescriptor{
			ID:       dto.ID,
			Name:     dto.Name,
			URL:      dto.URL,
			Currency: currency,
		},
		Rules:          rules,
		Live:           dto.Live,
		ArchivePattern: dto.ArchivePattern,
		Listing:        dto.Listing,
	}, nil
}
