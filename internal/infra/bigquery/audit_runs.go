package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AuditRunRow tracks one analysis execution in the warehouse: which dataset
// was screened, when, and how it ended. The engine itself never persists
// results; this is the collaborator-side audit trail.
type AuditRunRow struct {
	AuditRunID string `bigquery:"audit_run_id"`
	DatasetURI string `bigquery:"dataset_uri"` // gs:// URI or table reference

	RunDate    civil.Date             `bigquery:"run_date"` // partition column
	StartedAt  time.Time              `bigquery:"started_ts"`
	FinishedAt bigquery.NullTimestamp `bigquery:"finished_ts"`

	EngineVersion string `bigquery:"engine_version"` // e.g. v1

	Status       string `bigquery:"status"` // RUNNING | SUCCESS | FAILED
	ErrorMessage string `bigquery:"error_message"`

	// Filled on success (can be NULL while running or after failure).
	TotalTransactions bigquery.NullInt64   `bigquery:"total_transactions"`
	ValidTransactions bigquery.NullInt64   `bigquery:"valid_transactions"`
	MAD               bigquery.NullFloat64 `bigquery:"mad"`
	ChiSquare         bigquery.NullFloat64 `bigquery:"chi_square"`
	RiskLevel         bigquery.NullString  `bigquery:"risk_level"`
	FlaggedCount      bigquery.NullInt64   `bigquery:"flagged_count"`
}

// AuditRunStore records audit-run lifecycle events.
type AuditRunStore interface {
	// StartAuditRun inserts a row with status=RUNNING and returns its ID.
	StartAuditRun(ctx context.Context, datasetURI string) (string, error)

	// MarkAuditRunFailed sets status=FAILED with the error message.
	// Failures to record are logged, not propagated - the analysis outcome
	// matters more than its bookkeeping.
	MarkAuditRunFailed(ctx context.Context, auditRunID string, runErr error)

	// MarkAuditRunSucceeded sets status=SUCCESS with the summary statistics.
	MarkAuditRunSucceeded(ctx context.Context, auditRunID string, summary AuditRunSummary) error

	// Close releases the underlying client.
	Close() error
}

// AuditRunSummary is the slice of the analysis result the audit trail keeps.
type AuditRunSummary struct {
	TotalTransactions int
	ValidTransactions int
	MAD               float64
	ChiSquare         float64
	RiskLevel         string
	FlaggedCount      int
}

const engineVersion = "v1"

// BigQueryAuditRunStore is the concrete AuditRunStore backed by BigQuery.
type BigQueryAuditRunStore struct {
	client  *bigquery.Client
	dataset string
	table   string
	log     zerolog.Logger
}

// NewBigQueryAuditRunStore creates an audit-run store with a shared client.
func NewBigQueryAuditRunStore(ctx context.Context, projectID, dataset, table string, log zerolog.Logger) (*BigQueryAuditRunStore, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewBigQueryAuditRunStore: creating client: %w", err)
	}
	return &BigQueryAuditRunStore{client: client, dataset: dataset, table: table, log: log}, nil
}

// Close closes the BigQuery client connection.
func (s *BigQueryAuditRunStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// StartAuditRun inserts an audit_runs row with status=RUNNING.
func (s *BigQueryAuditRunStore) StartAuditRun(ctx context.Context, datasetURI string) (string, error) {
	auditRunID := uuid.NewString()
	started := time.Now()

	row := &AuditRunRow{
		AuditRunID:    auditRunID,
		DatasetURI:    datasetURI,
		RunDate:       civil.DateOf(started),
		StartedAt:     started,
		EngineVersion: engineVersion,
		Status:        "RUNNING",
	}

	inserter := s.client.Dataset(s.dataset).Table(s.table).Inserter()
	if err := inserter.Put(ctx, row); err != nil {
		return "", fmt.Errorf("StartAuditRun: inserting row: %w", err)
	}

	return auditRunID, nil
}

// MarkAuditRunFailed updates an audit_runs row to status=FAILED.
func (s *BigQueryAuditRunStore) MarkAuditRunFailed(ctx context.Context, auditRunID string, runErr error) {
	errMsg := ""
	if runErr != nil {
		errMsg = runErr.Error()
		const maxLen = 2000
		if len(errMsg) > maxLen {
			errMsg = errMsg[:maxLen]
		}
	}

	q := s.client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET status = @status,
		    finished_ts = @finished_ts,
		    error_message = @error_message
		WHERE audit_run_id = @audit_run_id
	`, s.dataset, s.table))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: "FAILED"},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "error_message", Value: errMsg},
		{Name: "audit_run_id", Value: auditRunID},
	}

	if err := s.runAndWait(ctx, q); err != nil {
		s.log.Error().Err(err).Str("audit_run_id", auditRunID).Msg("Failed to mark audit run as FAILED")
	}
}

// MarkAuditRunSucceeded updates an audit_runs row to status=SUCCESS.
func (s *BigQueryAuditRunStore) MarkAuditRunSucceeded(ctx context.Context, auditRunID string, summary AuditRunSummary) error {
	q := s.client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET status = @status,
		    finished_ts = @finished_ts,
		    error_message = "",
		    total_transactions = @total_transactions,
		    valid_transactions = @valid_transactions,
		    mad = @mad,
		    chi_square = @chi_square,
		    risk_level = @risk_level,
		    flagged_count = @flagged_count
		WHERE audit_run_id = @audit_run_id
	`, s.dataset, s.table))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: "SUCCESS"},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "total_transactions", Value: summary.TotalTransactions},
		{Name: "valid_transactions", Value: summary.ValidTransactions},
		{Name: "mad", Value: summary.MAD},
		{Name: "chi_square", Value: summary.ChiSquare},
		{Name: "risk_level", Value: summary.RiskLevel},
		{Name: "flagged_count", Value: summary.FlaggedCount},
		{Name: "audit_run_id", Value: auditRunID},
	}

	if err := s.runAndWait(ctx, q); err != nil {
		return fmt.Errorf("MarkAuditRunSucceeded: %w", err)
	}
	return nil
}

func (s *BigQueryAuditRunStore) runAndWait(ctx context.Context, q *bigquery.Query) error {
	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}
	return nil
}
