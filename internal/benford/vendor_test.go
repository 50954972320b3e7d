package benford

import (
	"strings"
	"testing"

	"github.com/veeraabhiram66/ExpenseAudit-AI-sub001/internal/ledger"
)

func vendorRows(vendor string, amounts ...float64) []ledger.Transaction {
	rows := make([]ledger.Transaction, len(amounts))
	for i, a := range amounts {
		rows[i] = ledger.Transaction{Amount: a, Vendor: vendor}
	}
	return rows
}

func TestAnalyzeVendors_SampleSizeThreshold(t *testing.T) {
	amounts := []float64{12, 23, 34, 45, 56, 67, 78, 89, 91, 102}

	t.Run("nine transactions excluded", func(t *testing.T) {
		rows := vendorRows("Acme Supplies", amounts[:9]...)
		if got := AnalyzeVendors(rows); len(got) != 0 {
			t.Errorf("expected no analyses for a 9-row vendor, got %d", len(got))
		}
	})

	t.Run("ten transactions included", func(t *testing.T) {
		rows := vendorRows("Acme Supplies", amounts...)
		got := AnalyzeVendors(rows)
		if len(got) != 1 {
			t.Fatalf("expected 1 analysis for a 10-row vendor, got %d", len(got))
		}
		if got[0].Vendor != "Acme Supplies" || got[0].TransactionCount != 10 {
			t.Errorf("unexpected analysis: %+v", got[0])
		}
	})
}

func TestAnalyzeVendors_IgnoresUnnamedVendors(t *testing.T) {
	rows := vendorRows("", 12, 23, 34, 45, 56, 67, 78, 89, 91, 102)
	rows = append(rows, vendorRows("   ", 11, 21, 31, 41, 51, 61, 71, 81, 92, 103)...)

	if got := AnalyzeVendors(rows); len(got) != 0 {
		t.Errorf("expected no analyses for unnamed vendors, got %d", len(got))
	}
}

func TestAnalyzeVendors_TrimsVendorIdentity(t *testing.T) {
	rows := vendorRows("  Globex  ", 12, 23, 34, 45, 56)
	rows = append(rows, vendorRows("Globex", 67, 78, 89, 91, 102)...)

	got := AnalyzeVendors(rows)
	if len(got) != 1 {
		t.Fatalf("expected trimmed names to merge into 1 partition, got %d", len(got))
	}
	if got[0].Vendor != "Globex" || got[0].TransactionCount != 10 {
		t.Errorf("unexpected analysis: %+v", got[0])
	}
}

func TestAnalyzeVendors_UniformRoundAmounts(t *testing.T) {
	// 100 identical round transactions: the classic invoice-mill signature.
	amounts := make([]float64, 100)
	for i := range amounts {
		amounts[i] = 1000
	}
	rows := vendorRows("Shelf Co", amounts...)

	got := AnalyzeVendors(rows)
	if len(got) != 1 {
		t.Fatalf("expected 1 analysis, got %d", len(got))
	}
	v := got[0]

	if v.RiskLevel != RiskCritical {
		t.Errorf("risk = %q, want %q (MAD %v)", v.RiskLevel, RiskCritical, v.MAD)
	}
	if v.MAD < madNonconformity {
		t.Errorf("MAD = %v, want >= %v", v.MAD, madNonconformity)
	}

	var sawRound, sawDominance, sawHighDigits bool
	for _, p := range v.SuspiciousPatterns {
		switch {
		case strings.Contains(p, "round-number"):
			sawRound = true
			if !strings.Contains(p, "100.0%") {
				t.Errorf("round-number finding should cite 100.0%%, got %q", p)
			}
		case strings.Contains(p, "Digit 1 dominates"):
			sawDominance = true
		case strings.Contains(p, "digits 7-9"):
			sawHighDigits = true
		}
	}
	if !sawRound {
		t.Error("expected a round-number concentration finding")
	}
	if !sawDominance {
		t.Error("expected a single-digit dominance finding")
	}
	if sawHighDigits {
		t.Error("high-digit concentration should not fire for all-1000 amounts")
	}
	if v.DigitDistribution[1] != 100 {
		t.Errorf("digit 1 distribution = %v, want 100", v.DigitDistribution[1])
	}
}

func TestAnalyzeVendors_HighDigitConcentration(t *testing.T) {
	// 7 of 10 amounts lead with 7-9: well over the 20% trigger.
	rows := vendorRows("Nightfall Ltd",
		701.5, 812.3, 950.0, 7333, 881, 9021, 77.7, 123, 245, 367)

	got := AnalyzeVendors(rows)
	if len(got) != 1 {
		t.Fatalf("expected 1 analysis, got %d", len(got))
	}

	found := false
	for _, p := range got[0].SuspiciousPatterns {
		if strings.Contains(p, "digits 7-9") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a high-digit concentration finding, got %v", got[0].SuspiciousPatterns)
	}
}

func TestAnalyzeVendors_Ranking(t *testing.T) {
	// Benford-conforming vendor ranks below heavily skewed vendors; among the
	// skewed, higher MAD wins.
	rows := make([]ledger.Transaction, 0)
	for _, a := range benfordAmounts() {
		rows = append(rows, ledger.Transaction{Amount: a, Vendor: "Benford Corp"})
	}
	rows = append(rows, vendorRows("All Nines", 900, 901, 902, 903, 904, 905, 906, 907, 908, 909)...)
	rows = append(rows, vendorRows("All Ones", 100, 101, 102, 103, 104, 105, 106, 107, 108, 109)...)

	got := AnalyzeVendors(rows)
	if len(got) != 3 {
		t.Fatalf("expected 3 analyses, got %d", len(got))
	}

	if got[2].Vendor != "Benford Corp" {
		t.Errorf("conforming vendor should rank last, got order %q, %q, %q",
			got[0].Vendor, got[1].Vendor, got[2].Vendor)
	}
	if got[0].Vendor != "All Nines" {
		t.Errorf("vendor with the larger MAD should rank first, got %q", got[0].Vendor)
	}
	for i := 0; i < len(got)-1; i++ {
		if riskRank[got[i].RiskLevel] < riskRank[got[i+1].RiskLevel] {
			t.Errorf("risk order violated at %d: %q before %q", i, got[i].RiskLevel, got[i+1].RiskLevel)
		}
	}
}
