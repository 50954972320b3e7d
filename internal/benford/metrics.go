package benford

// CalculateChiSquare computes the chi-square goodness-of-fit statistic of the
// observed digit counts against the expected Benford counts for a population
// of totalCount valid amounts.
func CalculateChiSquare(frequencies []DigitFrequency, totalCount int) float64 {
	chiSquare := 0.0
	for _, f := range frequencies {
		expectedCount := f.Expected / 100 * float64(totalCount)
		if expectedCount == 0 {
			continue
		}
		diff := float64(f.Count) - expectedCount
		chiSquare += diff * diff / expectedCount
	}
	return chiSquare
}

// CalculateMAD computes the mean absolute deviation of the observed digit
// proportions from the Benford proportions. The per-digit deviations are
// stored in percentage points, so the mean is divided by 100 to land on the
// scale the Nigrini conformity thresholds are expressed in.
func CalculateMAD(frequencies []DigitFrequency) float64 {
	if len(frequencies) == 0 {
		return 0
	}
	sum := 0.0
	for _, f := range frequencies {
		sum += f.Deviation
	}
	return sum / float64(len(frequencies)) / 100
}

// AssessCompliance maps a MAD value onto the Nigrini (2012) conformity
// ladder. The thresholds are evaluated in ascending order; the first match
// wins.
func AssessCompliance(mad float64) (assessment string, risk RiskLevel) {
	switch {
	case mad < madCloseConformity:
		return "compliant", RiskLow
	case mad < madAcceptableConformity:
		return "acceptable", RiskLow
	case mad < madMarginalConformity:
		return "acceptable", RiskMedium
	case mad < madNonconformity:
		return "suspicious", RiskHigh
	default:
		return "highly_suspicious", RiskCritical
	}
}
