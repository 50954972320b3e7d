package ingest

import (
	"strings"
	"testing"

	"github.com/veeraabhiram66/ExpenseAudit-AI-sub001/internal/config"
)

func defaultIngestConfig() config.IngestConfig {
	return config.IngestConfig{
		AmountColumn:   "amount",
		VendorColumn:   "vendor",
		DateColumn:     "date",
		CategoryColumn: "category",
		DateFormat:     "2006-01-02",
	}
}

func TestReadLedgerCSV(t *testing.T) {
	input := strings.Join([]string{
		"date,vendor,amount,category",
		"2026-01-15,Acme Supplies,1234.56,OFFICE",
		"2026-01-16,Globex,\"2,500.00\",SERVICES",
		"2026-01-17,Initech,not-a-number,IT",
		"2026-01-18,,42.00,",
		"bad-date,Acme Supplies,10.00,OFFICE",
	}, "\n")

	dataset, err := ReadLedgerCSV(strings.NewReader(input), defaultIngestConfig())
	if err != nil {
		t.Fatalf("ReadLedgerCSV failed: %v", err)
	}

	if dataset.TotalRows != 5 || dataset.ValidRows != 3 || dataset.RemovedRows != 2 {
		t.Errorf("counts = total %d valid %d removed %d, want 5/3/2",
			dataset.TotalRows, dataset.ValidRows, dataset.RemovedRows)
	}
	if len(dataset.Errors) != 2 {
		t.Fatalf("expected 2 row errors, got %v", dataset.Errors)
	}
	if !strings.Contains(dataset.Errors[0], "line 4") || !strings.Contains(dataset.Errors[0], "invalid amount") {
		t.Errorf("unexpected first error: %q", dataset.Errors[0])
	}
	if !strings.Contains(dataset.Errors[1], "line 6") || !strings.Contains(dataset.Errors[1], "invalid date") {
		t.Errorf("unexpected second error: %q", dataset.Errors[1])
	}

	txs := dataset.Transactions
	if len(txs) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(txs))
	}
	if txs[0].Amount != 1234.56 || txs[0].Vendor != "Acme Supplies" || txs[0].Category != "OFFICE" {
		t.Errorf("unexpected first transaction: %+v", txs[0])
	}
	if txs[0].Date.Format("2006-01-02") != "2026-01-15" {
		t.Errorf("dates not parsed: %+v", txs[0].Date)
	}
	if txs[1].Amount != 2500 {
		t.Errorf("thousands separator not stripped: %v", txs[1].Amount)
	}
	if txs[2].Vendor != "" || txs[2].Amount != 42 {
		t.Errorf("optional fields mishandled: %+v", txs[2])
	}
}

func TestReadLedgerCSV_CustomColumnMapping(t *testing.T) {
	cfg := config.IngestConfig{
		AmountColumn: "Txn Amount",
		VendorColumn: "Payee",
		DateFormat:   "2006-01-02",
	}
	input := "PAYEE,txn amount\nDunder Mifflin,99.95\n"

	dataset, err := ReadLedgerCSV(strings.NewReader(input), cfg)
	if err != nil {
		t.Fatalf("ReadLedgerCSV failed: %v", err)
	}
	if len(dataset.Transactions) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(dataset.Transactions))
	}
	if dataset.Transactions[0].Vendor != "Dunder Mifflin" || dataset.Transactions[0].Amount != 99.95 {
		t.Errorf("unexpected transaction: %+v", dataset.Transactions[0])
	}
}

func TestReadLedgerCSV_MissingAmountColumn(t *testing.T) {
	input := "date,vendor\n2026-01-01,Acme\n"

	if _, err := ReadLedgerCSV(strings.NewReader(input), defaultIngestConfig()); err == nil {
		t.Error("expected an error when the amount column is absent")
	}
}

func TestReadLedgerCSV_EmptyBody(t *testing.T) {
	dataset, err := ReadLedgerCSV(strings.NewReader("date,vendor,amount,category\n"), defaultIngestConfig())
	if err != nil {
		t.Fatalf("ReadLedgerCSV failed: %v", err)
	}
	if dataset.TotalRows != 0 || len(dataset.Transactions) != 0 {
		t.Errorf("expected an empty dataset, got %+v", dataset)
	}
	if len(dataset.Warnings) == 0 {
		t.Error("expected a no-data warning")
	}
}
