package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dylanw/budget-tracker/internal/config"
	"github.com/dylanw/budget-tracker/internal/gcs"
	infraBQ "github.com/dylanw/budget-tracker/internal/infra/bigquery"
	"github.com/dylanw/budget-tracker/internal/jobs"
	"github.com/dylanw/budget-tracker/internal/jobs/inmemory"
	"github.com/dylanw/budget-tracker/internal/logger"
	"github.com/dylanw/budget-tracker/internal/pipeline"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	// In-process queue as a stand-in until the deployment grows a hosted
	// one (Cloud Tasks or Pub/Sub behind the same interfaces).
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	log.Info().Msg("Starting worker service")

	handler := func(ctx context.Context, job *jobs.ParseStatementJob) error {
		ctx = logger.WithContext(ctx, log)

		log.Info().
			Str("job_id", job.JobID).
			Str("object_path", job.ObjectPath).
			Msg("Processing parse job")

		stored, err := ingestor.IngestStatement(ctx, job.UserID, job.ObjectPath)
		if err != nil {
			log.Error().
				Err(err).
				Str("job_id", job.JobID).
				Str("object_path", job.ObjectPath).
				Msg("Statement ingestion failed")
			return err
		}

		log.Info().
			Str("job_id", job.JobID).
			Int("stored", stored).
			Msg("Statement ingestion completed")
		return nil
	}

	if err := jobQueue.Start(ctx, handler); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	log.Info().Msg("Worker service started, waiting for jobs...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker service...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}
	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Worker service exited")
}
