package benford

// ExpectedPercentages holds the canonical Benford leading-digit distribution
// for digits 1-9, in percent. Index 0 corresponds to digit 1. This table is
// process-wide immutable data; nothing may write to it at runtime.
var ExpectedPercentages = [9]float64{30.1, 17.6, 12.5, 9.7, 7.9, 6.7, 5.8, 5.1, 4.6}

// Nigrini (2012) MAD conformity boundaries. The ladder is evaluated in
// ascending order and the first match wins.
const (
	madCloseConformity      = 0.006
	madAcceptableConformity = 0.012
	madMarginalConformity   = 0.015
	madNonconformity        = 0.022
)

// Sample-size and output limits.
const (
	// MinVendorSampleSize is the smallest vendor partition worth analyzing.
	// Below this the per-vendor digit distribution is statistical noise.
	MinVendorSampleSize = 10

	// VerySmallSampleSize and SmallSampleSize drive population-level
	// confidence warnings.
	VerySmallSampleSize = 50
	SmallSampleSize     = 100

	// MaxFlaggedTransactions caps the flagger output.
	MaxFlaggedTransactions = 50
)

// RiskLevel grades how strongly a population, vendor or transaction deviates
// from the expected distribution.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// riskRank is the single ordering used everywhere a risk level is compared:
// vendor ranking, flag ordering and severity merging all consult this map.
var riskRank = map[RiskLevel]int{
	RiskLow:      0,
	RiskMedium:   1,
	RiskHigh:     2,
	RiskCritical: 3,
}

// maxRisk returns the more severe of two risk levels.
func maxRisk(a, b RiskLevel) RiskLevel {
	if riskRank[b] > riskRank[a] {
		return b
	}
	return a
}
