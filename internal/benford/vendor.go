package benford

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/veeraabhiram66/ExpenseAudit-AI-sub001/internal/ledger"
)

// VendorAnalysis is the per-vendor deviation profile produced for every
// vendor with at least MinVendorSampleSize transactions.
type VendorAnalysis struct {
	Vendor             string          `json:"vendor"`
	TransactionCount   int             `json:"transaction_count"`
	MAD                float64         `json:"mad"`
	ChiSquare          float64         `json:"chi_square"`
	RiskLevel          RiskLevel       `json:"risk_level"`
	SuspiciousPatterns []string        `json:"suspicious_patterns"`
	DigitDistribution  map[int]float64 `json:"digit_distribution"`
}

// vendorStats is the precomputed material the pattern rules read.
type vendorStats struct {
	amounts     []float64
	frequencies []DigitFrequency
}

// vendorPatternRule is one heuristic detector. Rules run in the order they
// appear in vendorPatternRules so the emitted findings are deterministic.
type vendorPatternRule struct {
	name  string
	check func(stats vendorStats) (finding string, fired bool)
}

var vendorPatternRules = []vendorPatternRule{
	{
		name: "high_digit_concentration",
		check: func(stats vendorStats) (string, bool) {
			pct := 0.0
			for _, f := range stats.frequencies {
				if f.Digit >= 7 {
					pct += f.Observed
				}
			}
			if pct <= 20 {
				return "", false
			}
			return fmt.Sprintf("High concentration of digits 7-9 (%.1f%% of transactions)", pct), true
		},
	},
	{
		name: "round_number_concentration",
		check: func(stats vendorStats) (string, bool) {
			round := 0
			for _, amount := range stats.amounts {
				abs := math.Abs(amount)
				if math.Mod(abs, 10) == 0 || math.Mod(abs, 100) == 0 {
					round++
				}
			}
			pct := 100 * float64(round) / float64(len(stats.amounts))
			if pct <= 30 {
				return "", false
			}
			return fmt.Sprintf("Unusual concentration of round-number amounts (%.1f%%)", pct), true
		},
	},
	{
		name: "single_digit_dominance",
		check: func(stats vendorStats) (string, bool) {
			for _, f := range stats.frequencies {
				if f.Observed > 50 {
					return fmt.Sprintf("Digit %d dominates with %.1f%% of transactions", f.Digit, f.Observed), true
				}
			}
			return "", false
		},
	},
}

// AnalyzeVendors partitions transactions by vendor identity and profiles each
// partition against the Benford distribution. Vendors are matched on their
// trimmed name; rows without a vendor are excluded from partitioning. The
// result is ordered by risk level descending, then MAD descending - the
// contract downstream listings rely on.
func AnalyzeVendors(rows []ledger.Transaction) []VendorAnalysis {
	groups := make(map[string][]*ledger.Transaction)
	order := make([]string, 0)

	for i := range rows {
		vendor := strings.TrimSpace(rows[i].Vendor)
		if vendor == "" {
			continue
		}
		if _, seen := groups[vendor]; !seen {
			order = append(order, vendor)
		}
		groups[vendor] = append(groups[vendor], &rows[i])
	}

	analyses := make([]VendorAnalysis, 0, len(groups))
	for _, vendor := range order {
		group := groups[vendor]
		if len(group) < MinVendorSampleSize {
			continue
		}

		amounts := make([]float64, len(group))
		for i, tx := range group {
			amounts[i] = tx.Amount
		}

		frequencies := CalculateDigitFrequencies(amounts)
		totalValid := TotalValidCount(frequencies)
		mad := CalculateMAD(frequencies)
		chiSquare := CalculateChiSquare(frequencies, totalValid)
		_, risk := AssessCompliance(mad)

		stats := vendorStats{amounts: amounts, frequencies: frequencies}
		patterns := make([]string, 0)
		for _, rule := range vendorPatternRules {
			if finding, fired := rule.check(stats); fired {
				patterns = append(patterns, finding)
			}
		}

		distribution := make(map[int]float64, 9)
		for _, f := range frequencies {
			distribution[f.Digit] = f.Observed
		}

		analyses = append(analyses, VendorAnalysis{
			Vendor:             vendor,
			TransactionCount:   len(group),
			MAD:                mad,
			ChiSquare:          chiSquare,
			RiskLevel:          risk,
			SuspiciousPatterns: patterns,
			DigitDistribution:  distribution,
		})
	}

	sort.SliceStable(analyses, func(i, j int) bool {
		if riskRank[analyses[i].RiskLevel] != riskRank[analyses[j].RiskLevel] {
			return riskRank[analyses[i].RiskLevel] > riskRank[analyses[j].RiskLevel]
		}
		return analyses[i].MAD > analyses[j].MAD
	})

	return analyses
}
