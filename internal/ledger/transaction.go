package ledger

import (
	"time"
)

// Transaction represents one cleaned ledger row handed to the audit engine.
// This is a domain struct, not a warehouse row; the infra layer maps BigQuery
// rows into it and the ingest layer produces it from CSV files.
// The engine only reads these - cleaning and validation happen upstream.
type Transaction struct {
	Amount   float64   `json:"amount"`             // signed monetary amount
	Vendor   string    `json:"vendor,omitempty"`   // counterparty/payee, may be empty
	Date     time.Time `json:"date,omitempty"`     // zero value when unknown
	Category string    `json:"category,omitempty"` // optional upstream classification
}

// CleanedDataset is the input boundary contract: the rows to analyze plus the
// validation counts reported by the upstream data-preparation step. The engine
// never recomputes these counts, it only echoes them in diagnostics.
type CleanedDataset struct {
	Transactions []Transaction `json:"transactions"`

	TotalRows   int `json:"total_rows"`
	ValidRows   int `json:"valid_rows"`
	RemovedRows int `json:"removed_rows"`

	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}
