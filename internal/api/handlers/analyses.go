package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/veeraabhiram66/ExpenseAudit-AI-sub001/internal/api/middleware"
	"github.com/veeraabhiram66/ExpenseAudit-AI-sub001/internal/benford"
	"github.com/veeraabhiram66/ExpenseAudit-AI-sub001/internal/jobs"
	"github.com/veeraabhiram66/ExpenseAudit-AI-sub001/internal/ledger"
)

// DatasetURIInline marks jobs whose dataset arrived in the request body
// and is parked in the result store rather than fetched from storage.
const DatasetURIInline = "inline"

// AnalysesHandler handles analysis-related endpoints.
type AnalysesHandler struct {
	publisher jobs.Publisher
	store     jobs.JobStore
	results   *ResultStore
	log       zerolog.Logger
}

// NewAnalysesHandler creates a new analyses handler.
func NewAnalysesHandler(publisher jobs.Publisher, store jobs.JobStore, results *ResultStore, log zerolog.Logger) *AnalysesHandler {
	return &AnalysesHandler{
		publisher: publisher,
		store:     store,
		results:   results,
		log:       log,
	}
}

// transactionRequest is one inline ledger row. Date is optional and
// diagnostic only; the screening keys off amounts and vendors.
type transactionRequest struct {
	Amount   float64 `json:"amount"`
	Vendor   string  `json:"vendor"`
	Category string  `json:"category"`
	Date     string  `json:"date"`
}

// CreateAnalysis handles POST /api/analyses
// The request carries either a gcs_uri pointing at a CSV object, the
// literal dataset URI "bigquery" for the warehouse ledger, or inline
// transactions. Exactly one source must be given.
func (h *AnalysesHandler) CreateAnalysis(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GCSURI       string               `json:"gcs_uri"`
		Transactions []transactionRequest `json:"transactions"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.GCSURI == "" && len(req.Transactions) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "Either gcs_uri or transactions is required")
		return
	}
	if req.GCSURI != "" && len(req.Transactions) > 0 {
		middleware.WriteError(w, http.StatusBadRequest, "gcs_uri and transactions are mutually exclusive")
		return
	}

	ctx := r.Context()

	job := &jobs.AnalyzeLedgerJob{
		JobID:      uuid.New().String(),
		DatasetURI: req.GCSURI,
	}

	if len(req.Transactions) > 0 {
		job.DatasetURI = DatasetURIInline
		h.results.SavePayload(job.JobID, inlineDataset(req.Transactions))
	}

	if err := h.publisher.PublishAnalyzeLedger(ctx, job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue analysis job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue analysis job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Str("dataset_uri", job.DatasetURI).Msg("Analysis job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id":      job.JobID,
		"dataset_uri": job.DatasetURI,
		"status":      string(job.Status),
	})
}

// GetAnalysis handles GET /api/analyses/{id}
// It returns the job state, plus the report once the job has completed.
// A job that failed because the dataset held nothing analyzable maps to 422.
func (h *AnalysesHandler) GetAnalysis(w http.ResponseWriter, r *http.Request, jobID string) {
	ctx := r.Context()

	job, err := h.store.GetJob(ctx, jobID)
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Analysis not found")
		return
	}

	doc, runErr := h.results.Result(jobID)

	if job.Status == jobs.JobStatusFailed && errors.Is(runErr, benford.ErrNoAnalyzableData) {
		middleware.WriteJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"job":   job,
			"error": runErr.Error(),
		})
		return
	}

	resp := map[string]interface{}{"job": job}
	if doc != nil {
		resp["result"] = doc
	}
	middleware.WriteJSON(w, http.StatusOK, resp)
}

// inlineDataset converts request rows into a cleaned dataset. Rows are not
// pre-filtered here; the engine excludes non-positive amounts itself.
func inlineDataset(rows []transactionRequest) *ledger.CleanedDataset {
	dataset := &ledger.CleanedDataset{
		Transactions: make([]ledger.Transaction, 0, len(rows)),
		TotalRows:    len(rows),
		ValidRows:    len(rows),
	}

	for i, row := range rows {
		tx := ledger.Transaction{
			Amount:   row.Amount,
			Vendor:   row.Vendor,
			Category: row.Category,
		}
		if row.Date != "" {
			parsed, err := time.Parse("2006-01-02", row.Date)
			if err != nil {
				dataset.Warnings = append(dataset.Warnings, fmt.Sprintf("row %d: unparseable date %q", i+1, row.Date))
			} else {
				tx.Date = parsed
			}
		}
		dataset.Transactions = append(dataset.Transactions, tx)
	}

	return dataset
}
