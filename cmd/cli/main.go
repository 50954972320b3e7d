package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/veeraabhiram66/ExpenseAudit-AI-sub001/internal/audit"
	"github.com/veeraabhiram66/ExpenseAudit-AI-sub001/internal/config"
	"github.com/veeraabhiram66/ExpenseAudit-AI-sub001/internal/gcs"
	infraBQ "github.com/veeraabhiram66/ExpenseAudit-AI-sub001/internal/infra/bigquery"
	"github.com/veeraabhiram66/ExpenseAudit-AI-sub001/internal/ingest"
	"github.com/veeraabhiram66/ExpenseAudit-AI-sub001/internal/logger"
	"github.com/veeraabhiram66/ExpenseAudit-AI-sub001/internal/report"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "analyze":
		runAnalyze(log)
	case "fetch":
		runFetch(log)
	case "upload":
		runUpload(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Expense Audit CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  analyze   Screen a local ledger CSV and print the report")
	fmt.Println("  fetch     Screen the configured BigQuery ledger table")
	fmt.Println("  upload    Upload a report file to GCS")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func runAnalyze(log zerolog.Logger) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	filePath := fs.String("file", "", "Path to local ledger CSV")
	format := fs.String("format", "markdown", "Report format: json or markdown")
	outPath := fs.String("out", "", "Write the report to a file instead of stdout")
	configPath := fs.String("config", os.Getenv("AUDIT_CONFIG"), "Path to YAML config file")
	fs.Parse(os.Args[2:])

	if *filePath == "" {
		log.Fatal().Msg("Error: --file is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	f, err := os.Open(*filePath)
	if err != nil {
		log.Fatal().Err(err).Str("file", *filePath).Msg("Failed to open ledger file")
	}
	defer f.Close()

	dataset, err := ingest.ReadLedgerCSV(f, cfg.Ingest)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read ledger CSV")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	runner := &audit.Runner{Ingest: cfg.Ingest, Log: log}
	doc, err := runner.Run(ctx, *filePath, dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Analysis failed")
	}

	if err := writeReport(doc, *format, *outPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to write report")
	}
}

func runFetch(log zerolog.Logger) {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	format := fs.String("format", "markdown", "Report format: json or markdown")
	outPath := fs.String("out", "", "Write the report to a file instead of stdout")
	configPath := fs.String("config", os.Getenv("AUDIT_CONFIG"), "Path to YAML config file")
	fs.Parse(os.Args[2:])

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if cfg.BigQuery.ProjectID == "" {
		log.Fatal().Msg("Error: a BigQuery project must be configured for fetch")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	ledgerSource, err := infraBQ.NewBigQueryLedgerSource(ctx, cfg.BigQuery)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create warehouse ledger source")
	}
	defer ledgerSource.Close()

	runStore, err := infraBQ.NewBigQueryAuditRunStore(ctx, cfg.BigQuery.ProjectID, cfg.BigQuery.Dataset, cfg.BigQuery.RunsTable, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create audit run store")
	}
	defer runStore.Close()

	runner := &audit.Runner{
		Ledger: ledgerSource,
		Runs:   runStore,
		Ingest: cfg.Ingest,
		Log:    log,
	}

	doc, err := runner.Run(ctx, audit.DatasetURIBigQuery, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Analysis failed")
	}

	if err := writeReport(doc, *format, *outPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to write report")
	}
}

func runUpload(log zerolog.Logger) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	bucketName := fs.String("bucket", "", "GCS bucket name")
	objectName := fs.String("object", "", "GCS object name (defaults to a dated reports/ path)")
	filePath := fs.String("file", "", "Path to local report file")
	fs.Parse(os.Args[2:])

	if *bucketName == "" || *filePath == "" {
		log.Fatal().Msg("Usage: cli upload -bucket NAME -file PATH")
	}

	if *objectName == "" {
		*objectName = fmt.Sprintf("reports/%s/%s-%s",
			time.Now().Format("2006/01/02"), uuid.New().String(), filepath.Base(*filePath))
	}

	data, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatal().Err(err).Str("file", *filePath).Msg("Failed to read report file")
	}

	ctx := context.Background()
	ctx = logger.WithContext(ctx, log)

	log.Info().
		Str("bucket", *bucketName).
		Str("object", *objectName).
		Str("file", *filePath).
		Msg("Uploading report to GCS")

	client := gcs.NewClient()
	if err := client.UploadObject(ctx, *bucketName, *objectName, data); err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}

	fmt.Printf("Uploaded %s to gs://%s/%s\n", *filePath, *bucketName, *objectName)
}

func writeReport(doc *report.Document, format, outPath string) error {
	var data []byte
	switch format {
	case "json":
		rendered, err := report.RenderJSON(doc)
		if err != nil {
			return fmt.Errorf("writeReport: rendering JSON: %w", err)
		}
		data = rendered
	case "markdown":
		data = []byte(report.RenderMarkdown(doc))
	default:
		return fmt.Errorf("writeReport: unknown format %q", format)
	}

	if outPath == "" {
		fmt.Println(string(data))
		return nil
	}

	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("writeReport: writing %s: %w", outPath, err)
	}
	fmt.Printf("Report written to %s\n", outPath)
	return nil
}
