package benford

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/veeraabhiram66/ExpenseAudit-AI-sub001/internal/ledger"
)

// FlaggedTransaction marks one row that matched at least one per-transaction
// heuristic, with the joined findings and the highest severity among them.
type FlaggedTransaction struct {
	Index      int       `json:"index"` // position in the cleaned row collection
	Amount     float64   `json:"amount"`
	Vendor     string    `json:"vendor,omitempty"`
	FirstDigit int       `json:"first_digit"`
	Reason     string    `json:"reason"`
	RiskLevel  RiskLevel `json:"risk_level"`
}

// flagContext is the population-wide material precomputed once before the
// per-row rules run.
type flagContext struct {
	frequencies     []DigitFrequency
	mean            float64
	median          float64
	duplicateCounts map[duplicateKey]int
}

type duplicateKey struct {
	vendor string
	amount float64
}

// flagRule is one per-transaction heuristic. Rules run in the order they
// appear in flagRules; the row's risk level is the highest severity among the
// rules that fired.
type flagRule struct {
	name     string
	severity RiskLevel
	check    func(tx ledger.Transaction, digit int, pop flagContext) (finding string, fired bool)
}

var flagRules = []flagRule{
	{
		name:     "unusually_high_amount",
		severity: RiskHigh,
		check: func(tx ledger.Transaction, _ int, pop flagContext) (string, bool) {
			if tx.Amount > 10*pop.mean || tx.Amount > 50*pop.median {
				return "Unusually high amount", true
			}
			return "", false
		},
	},
	{
		name:     "large_round_number",
		severity: RiskMedium,
		check: func(tx ledger.Transaction, _ int, _ flagContext) (string, bool) {
			if tx.Amount > 1000 && (math.Mod(tx.Amount, 100) == 0 || math.Mod(tx.Amount, 1000) == 0) {
				return "Large round number", true
			}
			return "", false
		},
	},
	{
		name:     "overrepresented_first_digit",
		severity: RiskHigh,
		check: func(_ ledger.Transaction, digit int, pop flagContext) (string, bool) {
			f := pop.frequencies[digit-1]
			if f.Observed > 2*f.Expected {
				return fmt.Sprintf("Overrepresented first digit (%d)", digit), true
			}
			return "", false
		},
	},
	{
		name:     "high_amount_suspicious_digit",
		severity: RiskHigh,
		check: func(tx ledger.Transaction, digit int, _ flagContext) (string, bool) {
			if digit >= 7 && tx.Amount > 5000 {
				return "High amount with suspicious first digit", true
			}
			return "", false
		},
	},
	{
		name:     "duplicate_vendor_amounts",
		severity: RiskCritical,
		check: func(tx ledger.Transaction, _ int, pop flagContext) (string, bool) {
			key := duplicateKey{vendor: strings.TrimSpace(tx.Vendor), amount: tx.Amount}
			// The count includes the row itself; a group of 4 or more fires.
			if pop.duplicateCounts[key] > 3 {
				return "Multiple identical amounts from same vendor", true
			}
			return "", false
		},
	},
}

// FlagSuspiciousTransactions evaluates every row against the population-level
// heuristics, independent of vendor partitioning. Rows that yield no leading
// digit are never flagged (though they still feed the duplicate counts). The
// result is ordered by severity descending then amount descending and
// truncated to MaxFlaggedTransactions; matched reports how many rows fired
// before truncation.
func FlagSuspiciousTransactions(rows []ledger.Transaction) (result []FlaggedTransaction, matched int) {
	amounts := make([]float64, len(rows))
	for i, tx := range rows {
		amounts[i] = tx.Amount
	}

	pop := flagContext{
		frequencies:     CalculateDigitFrequencies(amounts),
		mean:            mean(amounts),
		median:          median(amounts),
		duplicateCounts: make(map[duplicateKey]int, len(rows)),
	}
	for _, tx := range rows {
		key := duplicateKey{vendor: strings.TrimSpace(tx.Vendor), amount: tx.Amount}
		pop.duplicateCounts[key]++
	}

	flagged := make([]FlaggedTransaction, 0)
	for i, tx := range rows {
		digit, ok := ExtractFirstDigit(tx.Amount)
		if !ok {
			continue
		}

		findings := make([]string, 0)
		risk := RiskLow
		for _, rule := range flagRules {
			if finding, fired := rule.check(tx, digit, pop); fired {
				findings = append(findings, finding)
				risk = maxRisk(risk, rule.severity)
			}
		}
		if len(findings) == 0 {
			continue
		}

		flagged = append(flagged, FlaggedTransaction{
			Index:      i,
			Amount:     tx.Amount,
			Vendor:     tx.Vendor,
			FirstDigit: digit,
			Reason:     strings.Join(findings, "; "),
			RiskLevel:  risk,
		})
	}

	sort.SliceStable(flagged, func(i, j int) bool {
		if riskRank[flagged[i].RiskLevel] != riskRank[flagged[j].RiskLevel] {
			return riskRank[flagged[i].RiskLevel] > riskRank[flagged[j].RiskLevel]
		}
		return flagged[i].Amount > flagged[j].Amount
	})

	matched = len(flagged)
	if len(flagged) > MaxFlaggedTransactions {
		flagged = flagged[:MaxFlaggedTransactions]
	}
	return flagged, matched
}

func mean(amounts []float64) float64 {
	if len(amounts) == 0 {
		return 0
	}
	sum := 0.0
	for _, a := range amounts {
		sum += a
	}
	return sum / float64(len(amounts))
}

// median sorts a copy of the amounts; the caller's ordering is never touched.
func median(amounts []float64) float64 {
	if len(amounts) == 0 {
		return 0
	}
	sorted := make([]float64, len(amounts))
	copy(sorted, amounts)
	sort.Float64s(sorted)
	return sorted[len(sorted)/2]
}
