package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Ingest.AmountColumn != "amount" || cfg.Ingest.DateFormat != "2006-01-02" {
		t.Errorf("unexpected ingest defaults: %+v", cfg.Ingest)
	}
	if cfg.BigQuery.LedgerTable != "ledger_transactions" || cfg.BigQuery.RunsTable != "audit_runs" {
		t.Errorf("unexpected bigquery defaults: %+v", cfg.BigQuery)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoad_FileOverridesAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  addr: ":9090"
storage:
  bucket: audit-ledgers
bigquery:
  project_id: my-project
ingest:
  amount_column: txn_amount
  vendor_column: payee
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q, want :9090", cfg.Server.Addr)
	}
	if cfg.Storage.Bucket != "audit-ledgers" {
		t.Errorf("Storage.Bucket = %q, want audit-ledgers", cfg.Storage.Bucket)
	}
	if cfg.Ingest.AmountColumn != "txn_amount" || cfg.Ingest.VendorColumn != "payee" {
		t.Errorf("ingest overrides lost: %+v", cfg.Ingest)
	}
	// Unset fields still get defaults.
	if cfg.Ingest.DateColumn != "date" || cfg.BigQuery.Dataset != "audit" {
		t.Errorf("defaults not applied for unset fields: %+v %+v", cfg.Ingest, cfg.BigQuery)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [not a mapping"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected an error for malformed YAML")
	}
}
