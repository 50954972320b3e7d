package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/veeraabhiram66/ExpenseAudit-AI-sub001/internal/config"
	"github.com/veeraabhiram66/ExpenseAudit-AI-sub001/internal/ledger"
)

// ReadLedgerCSV parses a ledger CSV into the cleaned dataset handed to the
// audit engine. The first record is the header; columns are matched against
// the configured names case-insensitively. Rows that fail to parse are
// counted and reported in the dataset's error list, never raised - only an
// unreadable stream or a missing amount column is fatal.
func ReadLedgerCSV(r io.Reader, cfg config.IngestConfig) (*ledger.CleanedDataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("ReadLedgerCSV: read header: %w", err)
	}

	cols := resolveColumns(header, cfg)
	if cols.amount < 0 {
		return nil, fmt.Errorf("ReadLedgerCSV: amount column %q not found in header %v", cfg.AmountColumn, header)
	}

	dataset := &ledger.CleanedDataset{
		Transactions: make([]ledger.Transaction, 0),
	}

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ReadLedgerCSV: line %d: %w", line, err)
		}

		dataset.TotalRows++

		tx, rowErr := parseRow(record, cols, cfg)
		if rowErr != nil {
			dataset.RemovedRows++
			dataset.Errors = append(dataset.Errors, fmt.Sprintf("line %d: %v", line, rowErr))
			continue
		}

		dataset.Transactions = append(dataset.Transactions, tx)
		dataset.ValidRows++
	}

	if dataset.TotalRows == 0 {
		dataset.Warnings = append(dataset.Warnings, "CSV contained a header but no data rows")
	}

	return dataset, nil
}

// columnIndexes holds the resolved position of each mapped column, -1 when
// the column is absent.
type columnIndexes struct {
	amount   int
	vendor   int
	date     int
	category int
}

func resolveColumns(header []string, cfg config.IngestConfig) columnIndexes {
	cols := columnIndexes{amount: -1, vendor: -1, date: -1, category: -1}
	for i, name := range header {
		switch normalizeHeader(name) {
		case normalizeHeader(cfg.AmountColumn):
			cols.amount = i
		case normalizeHeader(cfg.VendorColumn):
			cols.vendor = i
		case normalizeHeader(cfg.DateColumn):
			cols.date = i
		case normalizeHeader(cfg.CategoryColumn):
			cols.category = i
		}
	}
	return cols
}

// normalizeHeader normalizes a header cell for comparison.
func normalizeHeader(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

func parseRow(record []string, cols columnIndexes, cfg config.IngestConfig) (ledger.Transaction, error) {
	var tx ledger.Transaction

	if cols.amount >= len(record) {
		return tx, fmt.Errorf("missing amount cell")
	}
	amountStr := strings.TrimSpace(record[cols.amount])
	if amountStr == "" {
		return tx, fmt.Errorf("empty amount")
	}
	// Tolerate currency symbols and thousands separators from exports.
	amountStr = strings.Map(func(r rune) rune {
		switch r {
		case ',', '$', '£', '€', ' ':
			return -1
		}
		return r
	}, amountStr)

	amount, err := strconv.ParseFloat(amountStr, 64)
	if err != nil {
		return tx, fmt.Errorf("invalid amount %q", record[cols.amount])
	}
	tx.Amount = amount

	if cols.vendor >= 0 && cols.vendor < len(record) {
		tx.Vendor = strings.TrimSpace(record[cols.vendor])
	}
	if cols.category >= 0 && cols.category < len(record) {
		tx.Category = strings.TrimSpace(record[cols.category])
	}
	if cols.date >= 0 && cols.date < len(record) {
		dateStr := strings.TrimSpace(record[cols.date])
		if dateStr != "" {
			date, err := time.Parse(cfg.DateFormat, dateStr)
			if err != nil {
				return tx, fmt.Errorf("invalid date %q", dateStr)
			}
			tx.Date = date
		}
	}

	return tx, nil
}
