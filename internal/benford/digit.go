package benford

import (
	"math"
	"strconv"
)

// ExtractFirstDigit returns the leading significant decimal digit (1-9) of a
// monetary amount. ok is false for non-positive or non-finite amounts, which
// are excluded from digit analysis rather than treated as errors.
//
// The amount is rendered with strconv.FormatFloat in plain decimal notation
// (no exponent, no grouping) and scanned left to right for the first digit
// strictly greater than zero, so values below 1 such as 0.0034 yield 3.
func ExtractFirstDigit(amount float64) (int, bool) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, false
	}

	s := strconv.FormatFloat(math.Abs(amount), 'f', -1, 64)
	for i := 0; i < len(s); i++ {
		if s[i] >= '1' && s[i] <= '9' {
			return int(s[i] - '0'), true
		}
	}

	return 0, false
}
