package benford

import (
	"errors"
	"fmt"

	"github.com/veeraabhiram66/ExpenseAudit-AI-sub001/internal/ledger"
)

// ErrNoAnalyzableData is returned when no transaction in the dataset produces
// a valid leading digit. Callers must not interpret a result alongside it.
var ErrNoAnalyzableData = errors.New("no analyzable data: no transaction yields a valid leading digit")

// AnalysisResult is the engine's sole output. All fields are populated in one
// pass; the engine never returns a partial result.
type AnalysisResult struct {
	TotalTransactions int `json:"total_transactions"`
	ValidTransactions int `json:"valid_transactions"`

	DigitFrequencies []DigitFrequency `json:"digit_frequencies"`
	ChiSquare        float64          `json:"chi_square"`
	MAD              float64          `json:"mad"`

	OverallAssessment string    `json:"overall_assessment"`
	RiskLevel         RiskLevel `json:"risk_level"`

	SuspiciousVendors   []VendorAnalysis     `json:"suspicious_vendors"`
	FlaggedTransactions []FlaggedTransaction `json:"flagged_transactions"`

	Warnings []string `json:"warnings,omitempty"`
}

// Analyze runs the full Benford screen over a cleaned dataset: one
// population-level distribution, the per-vendor profiles and the
// per-transaction flags, merged into a single immutable result.
//
// The computation is pure and synchronous; it only reads the dataset and owns
// everything it returns. Cancellation, if needed, is the caller's concern.
func Analyze(dataset *ledger.CleanedDataset) (*AnalysisResult, error) {
	rows := dataset.Transactions

	amounts := make([]float64, len(rows))
	for i, tx := range rows {
		amounts[i] = tx.Amount
	}

	frequencies := CalculateDigitFrequencies(amounts)
	validCount := TotalValidCount(frequencies)
	if validCount == 0 {
		return nil, fmt.Errorf("Analyze: %w", ErrNoAnalyzableData)
	}

	chiSquare := CalculateChiSquare(frequencies, validCount)
	mad := CalculateMAD(frequencies)
	assessment, risk := AssessCompliance(mad)

	vendors := AnalyzeVendors(rows)
	flagged, flagMatches := FlagSuspiciousTransactions(rows)

	warnings := make([]string, 0)
	switch {
	case validCount < VerySmallSampleSize:
		warnings = append(warnings, fmt.Sprintf(
			"Sample of %d valid transactions is very small; Benford analysis is unreliable below %d",
			validCount, VerySmallSampleSize))
	case validCount < SmallSampleSize:
		warnings = append(warnings, fmt.Sprintf(
			"Sample of %d valid transactions is small; more data is recommended for a dependable signal",
			validCount))
	}
	if mad >= madNonconformity {
		warnings = append(warnings, fmt.Sprintf(
			"Population MAD %.4f indicates substantial deviation from the Benford distribution", mad))
	}
	if suspicious := countSuspiciousVendors(vendors); suspicious > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"%d vendor(s) show suspicious transaction patterns", suspicious))
	}
	// The volume check uses the match count before truncation, so large
	// datasets still warn when the kept list is capped.
	if len(rows) > 0 && flagMatches*10 > len(rows) {
		warnings = append(warnings, fmt.Sprintf(
			"%d flagged transactions exceed 10%% of the dataset; review data quality before drawing conclusions",
			flagMatches))
	}

	return &AnalysisResult{
		TotalTransactions:   len(rows),
		ValidTransactions:   validCount,
		DigitFrequencies:    frequencies,
		ChiSquare:           chiSquare,
		MAD:                 mad,
		OverallAssessment:   assessment,
		RiskLevel:           risk,
		SuspiciousVendors:   vendors,
		FlaggedTransactions: flagged,
		Warnings:            warnings,
	}, nil
}

// countSuspiciousVendors counts vendors that either carry a high or critical
// risk level or matched at least one pattern rule.
func countSuspiciousVendors(vendors []VendorAnalysis) int {
	n := 0
	for _, v := range vendors {
		if riskRank[v.RiskLevel] >= riskRank[RiskHigh] || len(v.SuspiciousPatterns) > 0 {
			n++
		}
	}
	return n
}
