package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"

	"github.com/dylanw/budget-tracker/internal/categories"
	"github.com/dylanw/budget-tracker/internal/config"
	"github.com/dylanw/budget-tracker/internal/gcs"
	infraBQ "github.com/dylanw/budget-tracker/internal/infra/bigquery"
	"github.com/dylanw/budget-tracker/internal/logger"
	"github.com/dylanw/budget-tracker/internal/pipeline"
	"github.com/dylanw/budget-tracker/internal/statement"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "parse":
		runParse(log)
	case "upload":
		runUpload(log)
	case "ingest":
		runIngest(log)
	case "inspect":
		runInspect(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Budget Tracker CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  parse     Parse a local statement file and print the transactions")
	fmt.Println("  upload    Upload a statement file to the storage bucket")
	fmt.Println("  ingest    Parse and store an uploaded statement")
	fmt.Println("  inspect   Show a user's statements and transaction summary")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func loadConfig(log zerolog.Logger) config.Config {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	return cfg
}

func runParse(log zerolog.Logger) {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	filePath := fs.String("file", "", "Path to a local PDF or CSV statement")
	fs.Parse(os.Args[2:])

	if *filePath == "" {
		log.Fatal().Msg("Error: --file is required")
	}

	cfg := loadConfig(log)

	f, err := os.Open(*filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open file")
	}
	defer f.Close()

	resolver := categories.NewResolver(cfg.KeywordRules(), nil)
	parser := statement.NewParser(resolver)

	res, err := parser.Parse(f, filepath.Base(*filePath))
	if err != nil {
		log.Fatal().Err(err).Msg("Parsing failed")
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tDESCRIPTION\tAMOUNT\tCATEGORY\tTYPE")
	for _, tx := range res.Transactions {
		date := tx.Date.Format("2006-01-02")
		if tx.Date.IsZero() {
			date = "????-??-??"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", date, tx.Description, tx.Amount.StringFixed(2), tx.Category, tx.Type)
	}
	w.Flush()

	fmt.Printf("\n%d transactions\n", len(res.Transactions))
	if res.ClosingBalance != nil {
		fmt.Printf("Closing balance: %s\n", res.ClosingBalance.StringFixed(2))
	}
}

func runUpload(log zerolog.Logger) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	userID := fs.String("user", "", "User ID to store the statement under")
	filePath := fs.String("file", "", "Path to a local PDF or CSV statement")
	fs.Parse(os.Args[2:])

	if *userID == "" || *filePath == "" {
		log.Fatal().Msg("Usage: cli upload -user ID -file PATH")
	}

	cfg := loadConfig(log)
	if cfg.Storage.Bucket == "" {
		log.Fatal().Msg("No storage bucket configured")
	}

	content, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read file")
	}

	ctx := logger.WithContext(context.Background(), log)

	store := gcs.NewStore(cfg.Storage.Bucket)
	objectPath, err := store.Upload(ctx, *userID, filepath.Base(*filePath), content)
	if err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}

	fmt.Printf("Uploaded %s to gs://%s/%s\n", *filePath, cfg.Storage.Bucket, objectPath)
}

func runIngest(log zerolog.Logger) {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	userID := fs.String("user", "", "User ID the statement belongs to")
	objectPath := fs.String("object", "", "Object path of the uploaded statement")
	fs.Parse(os.Args[2:])

	if *userID == "" || *objectPath == "" {
		log.Fatal().Msg("Usage: cli ingest -user ID -object PATH")
	}

	cfg := loadConfig(log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	bq, err := infraBQ.NewClient(ctx, cfg.BigQuery.Project, cfg.BigQuery.Dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create BigQuery client")
	}
	defer bq.Close()

	ingestor := &pipeline.Ingestor{
		Store:        gcs.NewStore(cfg.Storage.Bucket),
		Statements:   bq,
		Transactions: bq,
		Rules:        bq,
		Rulebook:     cfg.KeywordRules(),
	}

	stored, err := ingestor.IngestStatement(ctx, *userID, *objectPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Ingestion failed")
	}

	fmt.Printf("Ingestion completed: %d new transactions\n", stored)
}

func runInspect(log zerolog.Logger) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	userID := fs.String("user", "", "User ID to inspect")
	fs.Parse(os.Args[2:])

	if *userID == "" {
		log.Fatal().Msg("Error: --user is required")
	}

	cfg := loadConfig(log)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	bq, err := infraBQ.NewClient(ctx, cfg.BigQuery.Project, cfg.BigQuery.Dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create BigQuery client")
	}
	defer bq.Close()

	statements, err := bq.ListStatements(ctx, *userID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list statements")
	}

	fmt.Printf("Statements (%d):\n", len(statements))
	for _, s := range statements {
		fmt.Printf("  %s  %-30s  %d transactions  %s\n",
			s.UploadTS.Format("2006-01-02"), s.OriginalFilename, s.TransactionCount, s.StatementID)
	}

	rows, err := bq.ListTransactions(ctx, *userID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list transactions")
	}

	byCategory := make(map[string]int)
	for _, row := range rows {
		byCategory[row.Category]++
	}

	fmt.Printf("\nTransactions: %d\n", len(rows))
	for category, count := range byCategory {
		fmt.Printf("  %-20s %d\n", category, count)
	}
}
