package audit

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/veeraabhiram66/ExpenseAudit-AI-sub001/internal/benford"
	"github.com/veeraabhiram66/ExpenseAudit-AI-sub001/internal/config"
	"github.com/veeraabhiram66/ExpenseAudit-AI-sub001/internal/gcs"
	infraBQ "github.com/veeraabhiram66/ExpenseAudit-AI-sub001/internal/infra/bigquery"
	"github.com/veeraabhiram66/ExpenseAudit-AI-sub001/internal/ingest"
	"github.com/veeraabhiram66/ExpenseAudit-AI-sub001/internal/ledger"
	"github.com/veeraabhiram66/ExpenseAudit-AI-sub001/internal/report"
)

// DatasetURIBigQuery selects the configured warehouse ledger table
// instead of a GCS object.
const DatasetURIBigQuery = "bigquery"

// Runner orchestrates a single audit: resolve the dataset, run the
// Benford screening, and record the run in the audit trail.
// Ledger and Runs are optional; without them only gs:// and inline
// datasets can be analyzed and no audit trail is written.
type Runner struct {
	Storage gcs.StorageService
	Ledger  infraBQ.LedgerSource
	Runs    infraBQ.AuditRunStore
	Ingest  config.IngestConfig
	Log     zerolog.Logger
}

// Run screens one ledger dataset and returns the finished report document.
// If dataset is non-nil it is analyzed directly; otherwise datasetURI is
// resolved, either "bigquery" or a "gs://bucket/object" CSV.
func (r *Runner) Run(ctx context.Context, datasetURI string, dataset *ledger.CleanedDataset) (*report.Document, error) {
	// 1. Open an audit-run row (status=RUNNING) if a trail is configured.
	var runID string
	if r.Runs != nil {
		id, err := r.Runs.StartAuditRun(ctx, datasetURI)
		if err != nil {
			return nil, fmt.Errorf("Run: starting audit run: %w", err)
		}
		runID = id
	}

	doc, err := r.execute(ctx, datasetURI, dataset)
	if err != nil {
		if r.Runs != nil && runID != "" {
			r.Runs.MarkAuditRunFailed(ctx, runID, err)
		}
		return nil, err
	}

	if r.Runs != nil && runID != "" {
		summary := infraBQ.AuditRunSummary{
			TotalTransactions: doc.Result.TotalTransactions,
			ValidTransactions: doc.Result.ValidTransactions,
			MAD:               doc.Result.MAD,
			ChiSquare:         doc.Result.ChiSquare,
			RiskLevel:         string(doc.Result.RiskLevel),
			FlaggedCount:      len(doc.Result.FlaggedTransactions),
		}
		if err := r.Runs.MarkAuditRunSucceeded(ctx, runID, summary); err != nil {
			return nil, fmt.Errorf("Run: closing audit run: %w", err)
		}
	}

	return doc, nil
}

func (r *Runner) execute(ctx context.Context, datasetURI string, dataset *ledger.CleanedDataset) (*report.Document, error) {
	// 2. Resolve the dataset.
	if dataset == nil {
		resolved, err := r.resolveDataset(ctx, datasetURI)
		if err != nil {
			return nil, err
		}
		dataset = resolved
	}

	r.Log.Info().
		Str("dataset_uri", datasetURI).
		Int("total_rows", dataset.TotalRows).
		Int("valid_rows", dataset.ValidRows).
		Msg("Dataset resolved")

	// 3. Run the screening itself.
	result, err := benford.Analyze(dataset)
	if err != nil {
		return nil, fmt.Errorf("execute: analyzing dataset: %w", err)
	}

	r.Log.Info().
		Str("dataset_uri", datasetURI).
		Float64("mad", result.MAD).
		Str("risk_level", string(result.RiskLevel)).
		Int("flagged", len(result.FlaggedTransactions)).
		Msg("Analysis completed")

	return report.NewDocument(dataset, result), nil
}

func (r *Runner) resolveDataset(ctx context.Context, datasetURI string) (*ledger.CleanedDataset, error) {
	switch {
	case datasetURI == DatasetURIBigQuery:
		if r.Ledger == nil {
			return nil, fmt.Errorf("resolveDataset: no warehouse ledger source configured")
		}
		dataset, err := r.Ledger.FetchLedger(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolveDataset: fetching warehouse ledger: %w", err)
		}
		return dataset, nil

	case strings.HasPrefix(datasetURI, "gs://"):
		if r.Storage == nil {
			return nil, fmt.Errorf("resolveDataset: no object storage configured")
		}
		data, err := r.Storage.FetchObject(ctx, datasetURI)
		if err != nil {
			return nil, fmt.Errorf("resolveDataset: fetching %s: %w", datasetURI, err)
		}
		dataset, err := ingest.ReadLedgerCSV(bytes.NewReader(data), r.Ingest)
		if err != nil {
			return nil, fmt.Errorf("resolveDataset: reading %s: %w", datasetURI, err)
		}
		return dataset, nil

	default:
		return nil, fmt.Errorf("resolveDataset: unsupported dataset URI %q", datasetURI)
	}
}
