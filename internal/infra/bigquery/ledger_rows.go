package bigquery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/veeraabhiram66/ExpenseAudit-AI-sub001/internal/config"
	"github.com/veeraabhiram66/ExpenseAudit-AI-sub001/internal/ledger"
)

// LedgerRow is one cleaned transaction as stored in the warehouse ledger
// table. The upstream preparation pipeline owns the table; this system only
// reads it.
type LedgerRow struct {
	TransactionID string `bigquery:"transaction_id"` // REQUIRED

	TransactionDate bigquery.NullDate `bigquery:"transaction_date"` // NULLABLE

	Amount   float64 `bigquery:"amount"`   // REQUIRED FLOAT
	Currency string  `bigquery:"currency"` // NULLABLE in practice

	Vendor   bigquery.NullString `bigquery:"vendor"`   // NULLABLE
	Category bigquery.NullString `bigquery:"category"` // NULLABLE
}

// LedgerSource reads cleaned ledger rows for analysis.
type LedgerSource interface {
	// FetchLedger retrieves all ledger transactions, newest first.
	FetchLedger(ctx context.Context) (*ledger.CleanedDataset, error)

	// Close releases the underlying client.
	Close() error
}

// BigQueryLedgerSource is the concrete LedgerSource backed by BigQuery. It
// holds a shared client to avoid creating a new connection per query.
type BigQueryLedgerSource struct {
	client *bigquery.Client
	cfg    config.BigQueryConfig
}

// NewBigQueryLedgerSource creates a ledger source with a shared client.
func NewBigQueryLedgerSource(ctx context.Context, cfg config.BigQueryConfig) (*BigQueryLedgerSource, error) {
	client, err := bigquery.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("NewBigQueryLedgerSource: creating client: %w", err)
	}
	return &BigQueryLedgerSource{client: client, cfg: cfg}, nil
}

// Close closes the BigQuery client connection.
func (s *BigQueryLedgerSource) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// FetchLedger reads every row of the ledger table into a cleaned dataset.
// Row counts are filled from what the warehouse returns; the upstream
// pipeline already removed unparseable rows before they reached the table.
func (s *BigQueryLedgerSource) FetchLedger(ctx context.Context) (*ledger.CleanedDataset, error) {
	q := s.client.Query(fmt.Sprintf(`
		SELECT
			transaction_id,
			transaction_date,
			amount,
			currency,
			vendor,
			category
		FROM %s.%s
		ORDER BY transaction_date DESC
	`, s.cfg.Dataset, s.cfg.LedgerTable))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("FetchLedger: running query: %w", err)
	}

	dataset := &ledger.CleanedDataset{
		Transactions: make([]ledger.Transaction, 0),
	}

	for {
		var row LedgerRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("FetchLedger: reading row: %w", err)
		}
		dataset.Transactions = append(dataset.Transactions, rowToTransaction(row))
	}

	dataset.TotalRows = len(dataset.Transactions)
	dataset.ValidRows = len(dataset.Transactions)

	return dataset, nil
}

func rowToTransaction(row LedgerRow) ledger.Transaction {
	tx := ledger.Transaction{
		Amount: row.Amount,
	}
	if row.Vendor.Valid {
		tx.Vendor = strings.TrimSpace(row.Vendor.StringVal)
	}
	if row.Category.Valid {
		tx.Category = row.Category.StringVal
	}
	if row.TransactionDate.Valid {
		tx.Date = row.TransactionDate.Date.In(time.UTC)
	}
	return tx
}
