package tests

import (
	"math/rand/v2"

	"github.com/shopspring/decimal"
)

// Randomizer produces varied but plausible test inputs.
type Randomizer struct {
	Float64 func() float64
	Bool    func() bool
	// Amount returns a price in [minimum, maximum) with two decimals.
	Amount func(minimum, maximum float64) decimal.Decimal
}

func NewRandomizer() Randomizer {
	random := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint:gosec // for tests

	return Randomizer{
		Float64: random.Float64,
		Bool:    func() bool { return random.IntN(2) == 0 }, //nolint:mnd // skip
		Amount: func(minimum, maximum float64) decimal.Decimal {
			return decimal.NewFromFloat(minimum + random.Float64()*(maximum-minimum)).Round(2) //nolint:mnd // skip
		},
	}
}
