package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds ExpenseAudit configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	BigQuery BigQueryConfig `yaml:"bigquery"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Addr   string `yaml:"addr"`    // HTTP listen address, e.g. ":8080"
	APIKey string `yaml:"api_key"` // optional; empty leaves the API open
}

type StorageConfig struct {
	Bucket string `yaml:"bucket"` // GCS bucket for ledger files and reports
}

type BigQueryConfig struct {
	ProjectID   string `yaml:"project_id"`
	Dataset     string `yaml:"dataset"`
	LedgerTable string `yaml:"ledger_table"`
	RunsTable   string `yaml:"runs_table"`
}

// IngestConfig maps CSV headers onto the ledger row fields. Matching is
// case-insensitive against trimmed header names.
type IngestConfig struct {
	AmountColumn   string `yaml:"amount_column"`
	VendorColumn   string `yaml:"vendor_column"`
	DateColumn     string `yaml:"date_column"`
	CategoryColumn string `yaml:"category_column"`
	DateFormat     string `yaml:"date_format"` // Go reference layout
}

type LoggingConfig struct {
	Level string `yaml:"level"` // debug | info | warn | error
}

// Load reads configuration from a YAML file.
// If the file doesn't exist, it returns a default config and no error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("Load: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("Load: parse %s: %w", path, err)
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.BigQuery.Dataset == "" {
		cfg.BigQuery.Dataset = "audit"
	}
	if cfg.BigQuery.LedgerTable == "" {
		cfg.BigQuery.LedgerTable = "ledger_transactions"
	}
	if cfg.BigQuery.RunsTable == "" {
		cfg.BigQuery.RunsTable = "audit_runs"
	}
	if cfg.Ingest.AmountColumn == "" {
		cfg.Ingest.AmountColumn = "amount"
	}
	if cfg.Ingest.VendorColumn == "" {
		cfg.Ingest.VendorColumn = "vendor"
	}
	if cfg.Ingest.DateColumn == "" {
		cfg.Ingest.DateColumn = "date"
	}
	if cfg.Ingest.CategoryColumn == "" {
		cfg.Ingest.CategoryColumn = "category"
	}
	if cfg.Ingest.DateFormat == "" {
		cfg.Ingest.DateFormat = "2006-01-02"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}
