package benford

import (
	"strings"
	"testing"

	"github.com/veeraabhiram66/ExpenseAudit-AI-sub001/internal/ledger"
)

func TestFlagSuspiciousTransactions_DuplicateVendorAmounts(t *testing.T) {
	rows := make([]ledger.Transaction, 0)
	for _, a := range []float64{12.34, 56.78, 91.02, 34.56, 78.9} {
		rows = append(rows, ledger.Transaction{Amount: a, Vendor: "Background Inc"})
	}
	// A group of exactly 4 identical vendor+amount rows is the trigger
	// boundary: every row in the group must flag.
	for i := 0; i < 4; i++ {
		rows = append(rows, ledger.Transaction{Amount: 247.5, Vendor: "Dup LLC"})
	}

	flagged, _ := FlagSuspiciousTransactions(rows)

	dupFlags := 0
	for _, f := range flagged {
		if f.Vendor != "Dup LLC" {
			continue
		}
		dupFlags++
		if !strings.Contains(f.Reason, "Multiple identical amounts from same vendor") {
			t.Errorf("reason %q missing duplicate finding", f.Reason)
		}
		if f.RiskLevel != RiskCritical {
			t.Errorf("duplicate flag risk = %q, want %q", f.RiskLevel, RiskCritical)
		}
		if f.FirstDigit != 2 {
			t.Errorf("first digit = %d, want 2", f.FirstDigit)
		}
	}
	if dupFlags != 4 {
		t.Errorf("flagged %d duplicate rows, want 4", dupFlags)
	}
}

func TestFlagSuspiciousTransactions_ThreeDuplicatesNotEnough(t *testing.T) {
	rows := make([]ledger.Transaction, 0)
	for _, a := range []float64{12.34, 56.78, 91.02, 34.56} {
		rows = append(rows, ledger.Transaction{Amount: a, Vendor: "Background Inc"})
	}
	// 3 identical amounts: one short of the group-of-4 trigger.
	for i := 0; i < 3; i++ {
		rows = append(rows, ledger.Transaction{Amount: 247.5, Vendor: "Dup LLC"})
	}

	flagged, _ := FlagSuspiciousTransactions(rows)
	for _, f := range flagged {
		if strings.Contains(f.Reason, "Multiple identical amounts") {
			t.Errorf("duplicate finding fired for a group of 3: %+v", f)
		}
	}
}

func TestFlagSuspiciousTransactions_UnusuallyHighAmount(t *testing.T) {
	rows := make([]ledger.Transaction, 0, 100)
	for i := 0; i < 99; i++ {
		rows = append(rows, ledger.Transaction{Amount: 10 + float64(i)*0.37, Vendor: "Steady Co"})
	}
	rows = append(rows, ledger.Transaction{Amount: 5432.1, Vendor: "Spike Co"})

	flagged, _ := FlagSuspiciousTransactions(rows)

	found := false
	for _, f := range flagged {
		if f.Vendor == "Spike Co" {
			found = true
			if !strings.Contains(f.Reason, "Unusually high amount") {
				t.Errorf("reason %q missing high-amount finding", f.Reason)
			}
			if f.RiskLevel != RiskHigh {
				t.Errorf("risk = %q, want %q", f.RiskLevel, RiskHigh)
			}
		}
	}
	if !found {
		t.Error("expected the outlier amount to be flagged")
	}
}

func TestFlagSuspiciousTransactions_LargeRoundNumber(t *testing.T) {
	rows := []ledger.Transaction{
		{Amount: 1500, Vendor: "Round Co"},
		{Amount: 1537.5, Vendor: "Round Co"},
		{Amount: 999.99, Vendor: "Round Co"},
		{Amount: 2000, Vendor: "Round Co"},
	}

	flagged, _ := FlagSuspiciousTransactions(rows)

	byAmount := make(map[float64]FlaggedTransaction)
	for _, f := range flagged {
		byAmount[f.Amount] = f
	}

	for _, amount := range []float64{1500, 2000} {
		f, ok := byAmount[amount]
		if !ok {
			t.Errorf("amount %v not flagged", amount)
			continue
		}
		if !strings.Contains(f.Reason, "Large round number") {
			t.Errorf("amount %v reason %q missing round-number finding", amount, f.Reason)
		}
	}
	if f, ok := byAmount[1537.5]; ok && strings.Contains(f.Reason, "Large round number") {
		t.Errorf("non-round amount flagged as round: %+v", f)
	}
	if f, ok := byAmount[999.99]; ok && strings.Contains(f.Reason, "Large round number") {
		t.Errorf("amount under 1000 flagged as round: %+v", f)
	}
}

func TestFlagSuspiciousTransactions_HighAmountSuspiciousDigit(t *testing.T) {
	rows := []ledger.Transaction{
		{Amount: 7600, Vendor: "Edge Co"},
		{Amount: 6900, Vendor: "Edge Co"},   // digit 6: below the digit trigger
		{Amount: 7.5, Vendor: "Edge Co"},    // digit 7 but small
		{Amount: 123.45, Vendor: "Edge Co"},
	}

	flagged, _ := FlagSuspiciousTransactions(rows)

	for _, f := range flagged {
		switch f.Amount {
		case 7600:
			if !strings.Contains(f.Reason, "High amount with suspicious first digit") {
				t.Errorf("amount 7600 reason %q missing suspicious-digit finding", f.Reason)
			}
		case 6900, 7.5:
			if strings.Contains(f.Reason, "High amount with suspicious first digit") {
				t.Errorf("amount %v should not fire the suspicious-digit rule: %q", f.Amount, f.Reason)
			}
		}
	}
}

func TestFlagSuspiciousTransactions_OverrepresentedDigit(t *testing.T) {
	// Digit 9 at 50% of the population, against an expectation of 4.6%.
	rows := make([]ledger.Transaction, 0, 20)
	for i := 0; i < 10; i++ {
		rows = append(rows, ledger.Transaction{Amount: 90 + float64(i), Vendor: "Niner"})
	}
	for i := 0; i < 10; i++ {
		rows = append(rows, ledger.Transaction{Amount: 10 + float64(i%3), Vendor: "Filler"})
	}

	flagged, _ := FlagSuspiciousTransactions(rows)

	found := false
	for _, f := range flagged {
		if f.FirstDigit == 9 && strings.Contains(f.Reason, "Overrepresented first digit (9)") {
			found = true
		}
	}
	if !found {
		t.Error("expected digit-9 rows to carry an overrepresentation finding")
	}
}

func TestFlagSuspiciousTransactions_SkipsRowsWithoutDigit(t *testing.T) {
	rows := make([]ledger.Transaction, 0)
	for i := 0; i < 6; i++ {
		rows = append(rows, ledger.Transaction{Amount: -500, Vendor: "Refunds R Us"})
	}
	rows = append(rows, ledger.Transaction{Amount: 42, Vendor: "Refunds R Us"})

	flagged, _ := FlagSuspiciousTransactions(rows)
	for _, f := range flagged {
		if f.Amount <= 0 {
			t.Errorf("non-positive amount was flagged: %+v", f)
		}
	}
}

func TestFlagSuspiciousTransactions_CapAndOrdering(t *testing.T) {
	rows := make([]ledger.Transaction, 0, 120)
	// 60 critical duplicates at two amounts, plus medium round numbers.
	for i := 0; i < 30; i++ {
		rows = append(rows, ledger.Transaction{Amount: 333, Vendor: "Dup A"})
		rows = append(rows, ledger.Transaction{Amount: 555, Vendor: "Dup B"})
	}
	for i := 0; i < 20; i++ {
		rows = append(rows, ledger.Transaction{Amount: 1100 + float64(i)*100, Vendor: "Round Co"})
	}

	flagged, matched := FlagSuspiciousTransactions(rows)

	if len(flagged) != MaxFlaggedTransactions {
		t.Fatalf("flagged %d transactions, want cap of %d", len(flagged), MaxFlaggedTransactions)
	}
	// 60 critical duplicates plus 20 round numbers matched before the cap.
	if matched != 80 {
		t.Errorf("matched = %d, want 80", matched)
	}
	for i := 0; i < len(flagged)-1; i++ {
		a, b := flagged[i], flagged[i+1]
		if riskRank[a.RiskLevel] < riskRank[b.RiskLevel] {
			t.Fatalf("severity order violated at %d: %q before %q", i, a.RiskLevel, b.RiskLevel)
		}
		if a.RiskLevel == b.RiskLevel && a.Amount < b.Amount {
			t.Fatalf("amount order violated at %d: %v before %v", i, a.Amount, b.Amount)
		}
	}
	// Every surviving entry must be one of the critical duplicates, and the
	// 555 group must come before the 333 group.
	if flagged[0].Amount != 555 || flagged[len(flagged)-1].Amount != 333 {
		t.Errorf("expected 555 flags first and 333 flags last, got first=%v last=%v",
			flagged[0].Amount, flagged[len(flagged)-1].Amount)
	}
}
