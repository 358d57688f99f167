package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dylanw/budget-tracker/internal/api/handlers"
	"github.com/dylanw/budget-tracker/internal/api/middleware"
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
	if cfg.Storage.Bucket == "" {
		log.Warn().Msg("No storage bucket configured - statement uploads will fail")
	}

	ctx := context.Background()

	bq, err := infraBQ.NewClient(ctx, cfg.BigQuery.Project, cfg.BigQuery.Dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create BigQuery client")
	}
	defer bq.Close()

	store := gcs.NewStore(cfg.Storage.Bucket)

	// Job infrastructure. The queue runs in-process; uploads return as
	// soon as the raw file lands in storage and parsing happens here.
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	ingestor := &pipeline.Ingestor{
		Store:        store,
		Statements:   bq,
		Transactions: bq,
		Rules:        bq,
		Rulebook:     cfg.KeywordRules(),
	}

	jobHandler := func(ctx context.Context, job *jobs.ParseStatementJob) error {
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

	go func() {
		log.Info().Msg("Starting job worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	uploadHandler := handlers.NewUploadHandler(store, bq, jobQueue, jobStore, log)
	transactionsHandler := handlers.NewTransactionsHandler(bq, bq, log)
	budgetHandler := handlers.NewBudgetHandler(bq, bq, log)
	analyticsHandler := handlers.NewAnalyticsHandler(bq, log)
	categoriesHandler := handlers.NewCategoriesHandler(bq, log)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/upload", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			uploadHandler.Upload(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/statements", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			uploadHandler.ListStatements(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
		if jobID == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
			return
		}
		uploadHandler.GetJob(w, r, jobID)
	})

	mux.HandleFunc("/api/transactions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			transactionsHandler.List(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/transactions/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		rest := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
		transactionID, ok := strings.CutSuffix(rest, "/category")
		if !ok || transactionID == "" {
			middleware.WriteError(w, http.StatusNotFound, "Not found")
			return
		}
		transactionsHandler.UpdateCategory(w, r, transactionID)
	})

	mux.HandleFunc("/api/budget-targets", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			budgetHandler.ListTargets(w, r)
		case http.MethodPost:
			budgetHandler.SetTarget(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/budget-comparison", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			budgetHandler.Comparison(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/analytics/dashboard", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			analyticsHandler.Dashboard(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/analytics/spending-by-category", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			analyticsHandler.SpendingByCategory(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/analytics/monthly-trend", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			analyticsHandler.MonthlyTrend(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/categories", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			categoriesHandler.List(w, r)
		case http.MethodPost:
			categoriesHandler.Create(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/categories/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		name := strings.TrimPrefix(r.URL.Path, "/api/categories/")
		if name == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Category name is required")
			return
		}
		categoriesHandler.Delete(w, r, name)
	})

	verifier := middleware.StaticVerifier(cfg.Auth.Tokens)

	authed := middleware.Auth(verifier)(mux)

	root := http.NewServeMux()
	root.Handle("/api/", authed)
	root.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(root),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Server exited")
}
