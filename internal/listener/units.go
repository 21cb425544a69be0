package listener

import (
	"math/big"
	"strings"
)

// FormatUnits renders a base-unit amount in display units, trimming
// trailing zeros from the fractional part. 1000e18 with 18 decimals
// renders as "1000".
func FormatUnits(amount *big.Int, decimals int) string {
	if amount == nil || decimals <= 0 {
		if amount == nil {
			return "0"
		}
		return amount.String()
	}

	neg := amount.Sign() < 0
	div := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, frac := new(big.Int).QuoRem(new(big.Int).Abs(amount), div, new(big.Int))

	out := whole.String()
	if frac.Sign() > 0 {
		fracStr := frac.String()
		if len(fracStr) < decimals {
			fracStr = strings.Repeat("0", decimals-len(fracStr)) + fracStr
		}
		fracStr = strings.TrimRight(fracStr, "0")
		out += "." + fracStr
	}
	if neg {
		out = "-" + out
	}
	return out
}
