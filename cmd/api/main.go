package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/veeraabhiram66/ExpenseAudit-AI-sub001/internal/api/handlers"
	"github.com/veeraabhiram66/ExpenseAudit-AI-sub001/internal/api/middleware"
	"github.com/veeraabhiram66/ExpenseAudit-AI-sub001/internal/audit"
	"github.com/veeraabhiram66/ExpenseAudit-AI-sub001/internal/config"
	"github.com/veeraabhiram66/ExpenseAudit-AI-sub001/internal/gcs"
	infraBQ "github.com/veeraabhiram66/ExpenseAudit-AI-sub001/internal/infra/bigquery"
	"github.com/veeraabhiram66/ExpenseAudit-AI-sub001/internal/jobs"
	"github.com/veeraabhiram66/ExpenseAudit-AI-sub001/internal/jobs/inmemory"
	"github.com/veeraabhiram66/ExpenseAudit-AI-sub001/internal/ledger"
	"github.com/veeraabhiram66/ExpenseAudit-AI-sub001/internal/logger"
)

func main() {
	// Parse command-line flags
	var (
		configPath = flag.String("config", os.Getenv("AUDIT_CONFIG"), "Path to YAML config file (or set AUDIT_CONFIG env)")
		addr       = flag.String("addr", "", "HTTP listen address (overrides config)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	// Initialize logger
	log := logger.NewWithLevel(cfg.Logging.Level)

	if cfg.Storage.Bucket == "" {
		log.Warn().Msg("No GCS bucket configured - report uploads will be disabled")
	}

	ctx := context.Background()

	// Audit trail and warehouse ledger are optional; gs:// and inline
	// datasets still work without a BigQuery project.
	runner := &audit.Runner{
		Storage: gcs.NewClient(),
		Ingest:  cfg.Ingest,
		Log:     log,
	}

	if cfg.BigQuery.ProjectID != "" {
		ledgerSource, err := infraBQ.NewBigQueryLedgerSource(ctx, cfg.BigQuery)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create warehouse ledger source")
		}
		defer ledgerSource.Close()
		runner.Ledger = ledgerSource

		runStore, err := infraBQ.NewBigQueryAuditRunStore(ctx, cfg.BigQuery.ProjectID, cfg.BigQuery.Dataset, cfg.BigQuery.RunsTable, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create audit run store")
		}
		defer runStore.Close()
		runner.Runs = runStore
	} else {
		log.Warn().Msg("No BigQuery project configured - warehouse datasets and the audit trail are disabled")
	}

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)
	results := handlers.NewResultStore()

	// Start worker in background to process jobs
	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	// Create job handler for processing analysis jobs
	jobHandler := func(ctx context.Context, job jobs.Job) error {
		analyzeJob, ok := job.(*jobs.AnalyzeLedgerJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", analyzeJob.JobID).
			Str("dataset_uri", analyzeJob.DatasetURI).
			Msg("Processing analysis job")

		var dataset *ledger.CleanedDataset
		if analyzeJob.DatasetURI == handlers.DatasetURIInline {
			parked, ok := results.TakePayload(analyzeJob.JobID)
			if !ok {
				err := errors.New("inline dataset missing for job")
				results.SaveError(analyzeJob.JobID, err)
				return err
			}
			dataset = parked
		}

		doc, err := runner.Run(ctx, analyzeJob.DatasetURI, dataset)
		if err != nil {
			// Park the dataset again so a retry can pick it up.
			if dataset != nil && analyzeJob.RetryCount < analyzeJob.MaxRetries {
				results.SavePayload(analyzeJob.JobID, dataset)
			}
			results.SaveError(analyzeJob.JobID, err)
			log.Error().
				Err(err).
				Str("job_id", analyzeJob.JobID).
				Str("dataset_uri", analyzeJob.DatasetURI).
				Msg("Analysis job failed")
			return err
		}

		results.SaveResult(analyzeJob.JobID, doc)

		log.Info().
			Str("job_id", analyzeJob.JobID).
			Str("risk_level", string(doc.Result.RiskLevel)).
			Msg("Analysis job completed")

		return nil
	}

	// Start job consumer in background
	go func() {
		log.Info().Msg("Starting job worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	// Initialize handlers
	analysesHandler := handlers.NewAnalysesHandler(jobQueue, jobStore, results, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)

	// Create router
	mux := http.NewServeMux()

	// Analyses endpoints
	mux.HandleFunc("/api/analyses", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			analysesHandler.CreateAnalysis(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/analyses/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			// Extract job ID from path
			jobID := strings.TrimPrefix(r.URL.Path, "/api/analyses/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Analysis ID is required")
				return
			}
			analysesHandler.GetAnalysis(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Jobs endpoints
	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobsHandler.ListJobs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			// Extract job ID from path
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			jobsHandler.GetJob(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(
					middleware.Auth(cfg.Server.APIKey)(mux),
				),
			),
		),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Cancel worker context
	cancelWorker()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}
