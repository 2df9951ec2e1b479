// Package units converts between human decimal amounts and on-chain base
// units for tokens with arbitrary decimals.
package units

import (
	"math/big"
	"strings"

	"github.com/pkg/errors"
)

// ToBaseUnits converts a decimal string in display units (e.g. "1.5") to an
// integer amount in the token's base units.
//
// Parameters:
// - amount: the decimal string, optionally with a fractional part.
// - decimals: the number of decimals the token uses.
//
// Returns:
// - *big.Int: the amount in base units.
// - error: an error if the string is not a valid non-negative decimal or
// carries more fractional digits than the token supports.
func ToBaseUnits(amount string, decimals uint8) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, errors.New("empty amount")
	}
	if strings.HasPrefix(amount, "-") {
		return nil, errors.Errorf("negative amount %q", amount)
	}

	whole := amount
	frac := ""
	if i := strings.IndexByte(amount, '.'); i >= 0 {
		whole, frac = amount[:i], amount[i+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > int(decimals) {
		return nil, errors.Errorf("amount %q has more than %d decimal places", amount, decimals)
	}

	digits := whole + frac + strings.Repeat("0", int(decimals)-len(frac))
	result, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, errors.Errorf("invalid decimal amount %q", amount)
	}
	return result, nil
}

// FromBaseUnits converts an integer base-unit amount back to a decimal
// string in display units. Trailing fractional zeros are trimmed.
func FromBaseUnits(amount *big.Int, decimals uint8) string {
	if amount == nil || amount.Sign() == 0 {
		return "0"
	}

	digits := amount.String()
	if decimals == 0 {
		return digits
	}

	if len(digits) <= int(decimals) {
		digits = strings.Repeat("0", int(decimals)-len(digits)+1) + digits
	}

	split := len(digits) - int(decimals)
	whole, frac := digits[:split], digits[split:]
	frac = strings.TrimRight(frac, "0")
	if frac == "" {
		return whole
	}
	return whole + "." + frac
}
