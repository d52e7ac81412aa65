package persistence

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"

	"pricetrack/internal/domain"
	"pricetrack/internal/domain/entity"
	"pricetrack/internal/domain/service/merge"
	"pricetrack/internal/domain/value"
	"pricetrack/pkg/errcodes"
	"pricetrack/pkg/logx"
)

type moneyDTO struct {
	Amount   *decimal.Decimal `json:"amount"   validate:"required"`
	Currency string           `json:"currency" validate:"required,len=3,uppercase"`
}

type supplementaryDTO struct {
	Date     string    `json:"date"     validate:"required,datetime=2006-01-02"`
	Kind     string    `json:"kind"     validate:"required,oneof=sale msrp"`
	Price    *moneyDTO `json:"price"    validate:"required"`
	SourceID string    `json:"sourceId" validate:"required"`
	URL      string    `json:"url"      validate:"required"`
	Wayback  string    `json:"wayback,omitempty"`
}

func (d supplementaryDTO) toDomain() (entity.Observation, error) {
	date, err := value.ParseDate(d.Date)
	if err != nil {
		return entity.Observation{}, err
	}

	o := entity.Observation{
		Date:     date,
		Kind:     value.Kind(d.Kind),
		Price:    entity.Money{Amount: *d.Price.Amount, Currency: value.Currency(d.Price.Currency)},
		SourceID: d.SourceID,
		URL:      d.URL,
		Wayback:  d.Wayback,
	}

	return o, merge.Validate(o)
}

// SupplementaryFile stores out-of-band points as a JSON array.
type SupplementaryFile struct {
	path     string
	validate *validator.Validate
	mu       sync.Mutex
}

func NewSupplementaryFile(path string) *SupplementaryFile {
	return &SupplementaryFile{
		path:     path,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Load returns every well-formed entry. A missing file is an empty store;
// malformed entries are skipped with a warning.
func (s *SupplementaryFile) Load(ctx context.Context) ([]entity.Observation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx)
}

func (s *SupplementaryFile) load(ctx context.Context) ([]entity.Observation, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("os.ReadFile: %w", err)
	}

	var entries []jsoniter.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, domain.WrapError(err, errcodes.InvalidSupplementaryPoint, "supplementary file is not a JSON array")
	}

	out := make([]entity.Observation, 0, len(entries))

	for i, entry := range entries {
		o, err := s.decode(entry)
		if err != nil {
			logger(ctx).Warn("supplementary entry skipped",
				"index", i,
				logx.FieldReason, errcodes.InvalidSupplementaryPoint.String(),
				logx.Error(err),
			)

			continue
		}

		out = append(out, o)
	}

	return out, nil
}

func (s *SupplementaryFile) decode(entry jsoniter.RawMessage) (entity.Observation, error) {
	var dto supplementaryDTO
	if err := json.Unmarshal(entry, &dto); err != nil {
		return entity.Observation{}, fmt.Errorf("json.Unmarshal: %w", err)
	}

	if err := s.validate.Struct(dto); err != nil {
		return entity.Observation{}, fmt.Errorf("validate.Struct: %w", err)
	}

	return dto.toDomain()
}

// Save replaces the whole store.
func (s *SupplementaryFile) Save(_ context.Context, points []entity.Observation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.save(points)
}

func (s *SupplementaryFile) save(points []entity.Observation) error {
	if points == nil {
		points = []entity.Observation{}
	}

	b, err := json.MarshalIndent(points, "", "  ")
	if err != nil {
		return fmt.Errorf("json.MarshalIndent: %w", err)
	}

	return writeFileAtomic(s.path, append(b, '\n'))
}

// Refresh drops stored points of every source present in fresh, adds fresh
// and persists the result.
func (s *SupplementaryFile) Refresh(ctx context.Context, fresh []entity.Observation) ([]entity.Observation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	updated := merge.Refresh(stored, fresh)

	if err := s.save(updated); err != nil {
		return nil, err
	}

	return updated, nil
}
