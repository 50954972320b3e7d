package benford

import (
	"math"
)

// DigitFrequency is the observed-vs-expected record for one leading digit.
type DigitFrequency struct {
	Digit     int     `json:"digit"`
	Count     int     `json:"count"`
	Observed  float64 `json:"observed"`  // percent of totalValid
	Expected  float64 `json:"expected"`  // canonical Benford percent
	Deviation float64 `json:"deviation"` // |observed - expected|, percentage points
}

// CalculateDigitFrequencies aggregates leading-digit counts over a numeric
// population. The result always has exactly 9 entries, digits 1..9 ascending,
// regardless of input order. Amounts that yield no leading digit are silently
// excluded; when nothing qualifies, all observed percentages are zero.
func CalculateDigitFrequencies(amounts []float64) []DigitFrequency {
	var counts [9]int
	totalValid := 0

	for _, amount := range amounts {
		digit, ok := ExtractFirstDigit(amount)
		if !ok {
			continue
		}
		counts[digit-1]++
		totalValid++
	}

	frequencies := make([]DigitFrequency, 9)
	for i := 0; i < 9; i++ {
		observed := 0.0
		if totalValid > 0 {
			observed = 100 * float64(counts[i]) / float64(totalValid)
		}
		expected := ExpectedPercentages[i]
		frequencies[i] = DigitFrequency{
			Digit:     i + 1,
			Count:     counts[i],
			Observed:  observed,
			Expected:  expected,
			Deviation: math.Abs(observed - expected),
		}
	}

	return frequencies
}

// TotalValidCount sums the per-digit counts, i.e. the number of amounts that
// produced a valid leading digit.
func TotalValidCount(frequencies []DigitFrequency) int {
	total := 0
	for _, f := range frequencies {
		total += f.Count
	}
	return total
}
