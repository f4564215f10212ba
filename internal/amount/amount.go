// Package amount converts between human-readable token amounts and the
// integer base units the engine accounts in.
package amount

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Decimals is the number of fractional digits of one whole unit.
const Decimals = 9

var maxUnits = decimal.NewFromUint64(math.MaxUint64)

// Parse turns "0.01" into 10_000_000 base units. Negative values, more than
// Decimals fractional digits and overflow are rejected.
func Parse(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("amount %q is negative", s)
	}
	units := d.Shift(Decimals)
	if !units.IsInteger() {
		return 0, fmt.Errorf("amount %q has more than %d decimal places", s, Decimals)
	}
	if units.GreaterThan(maxUnits) {
		return 0, fmt.Errorf("amount %q overflows uint64 base units", s)
	}
	return units.BigInt().Uint64(), nil
}

// Format renders base units as a decimal string without trailing zeros.
func Format(units uint64) string {
	return decimal.NewFromUint64(units).Shift(-Decimals).String()
}

// FormatFixed renders base units with exactly places fractional digits,
// rounding half away from zero.
func FormatFixed(units uint64, places int32) string {
	return decimal.NewFromUint64(units).Shift(-Decimals).StringFixed(places)
}
