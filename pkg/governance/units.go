package governance

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// Decimals is the fixed-point precision of the OceanGuard token.
const Decimals = 18

var ErrInvalidAmount = errors.New("invalid amount")

// ParseUnits converts a human decimal string ("1.5") into base units.
func ParseUnits(amount string) (*big.Int, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}

	if d.IsNegative() {
		return nil, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, amount)
	}

	shifted := d.Shift(Decimals)
	if !shifted.Equal(shifted.Truncate(0)) {
		return nil, fmt.Errorf("%w: %q has more than %d decimals", ErrInvalidAmount, amount, Decimals)
	}

	return shifted.BigInt(), nil
}

// FormatUnits converts base units into a human decimal string. A nil value
// formats as "0".
func FormatUnits(v *big.Int) string {
	if v == nil {
		return "0"
	}

	return decimal.NewFromBigInt(v, -Decimals).String()
}
