// Package handlers implements the HTTP API: statement upload, transaction
// queries, budget targets and dashboard analytics. All endpoints are
// scoped to the authenticated user resolved by the auth middleware.
package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dylanw/budget-tracker/internal/api/middleware"
	"github.com/dylanw/budget-tracker/internal/gcs"
	infra "github.com/dylanw/budget-tracker/internal/infra/bigquery"
	"github.com/dylanw/budget-tracker/internal/jobs"
)

// maxUploadBytes caps statement uploads; real statements are well under
// this.
const maxUploadBytes = 32 << 20

// UploadHandler accepts statement files, stores the raw bytes and
// enqueues parsing.
type UploadHandler struct {
	store      gcs.StatementStore
	statements infra.StatementRepository
	publisher  jobs.Publisher
	jobStore   jobs.JobStore
	log        zerolog.Logger
}

// NewUploadHandler creates an upload handler.
func NewUploadHandler(store gcs.StatementStore, statements infra.StatementRepository, publisher jobs.Publisher, jobStore jobs.JobStore, log zerolog.Logger) *UploadHandler {
	return &UploadHandler{
		store:      store,
		statements: statements,
		publisher:  publisher,
		jobStore:   jobStore,
		log:        log,
	}
}

// Upload handles POST /api/upload. The statement arrives as a multipart
// "file" field; duplicate filenames for the same user are rejected with
// 409 so an accidental re-upload is caught before parsing.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.UserID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".csv":
	default:
		middleware.WriteError(w, http.StatusBadRequest, "Unsupported file type. Use PDF or CSV")
		return
	}

	exists, err := h.statements.StatementExists(ctx, userID, filename)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to check existing statements")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to check existing statements")
		return
	}
	if exists {
		middleware.WriteError(w, http.StatusConflict, fmt.Sprintf("%s already exists", filename))
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Failed to read file")
		return
	}

	objectPath, err := h.store.Upload(ctx, userID, filename, content)
	if err != nil {
		h.log.Error().Err(err).Str("filename", filename).Msg("Failed to store statement")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to store statement")
		return
	}

	job := &jobs.ParseStatementJob{
		UserID:     userID,
		ObjectPath: objectPath,
		Filename:   filename,
	}
	if err := h.publisher.PublishParseStatement(ctx, job); err != nil {
		h.log.Error().Err(err).Str("object_path", objectPath).Msg("Failed to enqueue parse job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue parsing")
		return
	}

	h.log.Info().
		Str("user_id", userID).
		Str("object_path", objectPath).
		Str("job_id", job.JobID).
		Msg("Statement uploaded")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]interface{}{
		"success":     true,
		"message":     fmt.Sprintf("Uploaded %s", filename),
		"object_path": objectPath,
		"job_id":      job.JobID,
	})
}

// GetJob handles GET /api/jobs/{id} so clients can poll parse progress.
func (h *UploadHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	job, err := h.jobStore.GetJob(r.Context(), jobID)
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}
	if job.UserID != middleware.UserID(r.Context()) {
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListStatements handles GET /api/statements.
func (h *UploadHandler) ListStatements(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rows, err := h.statements.ListStatements(ctx, middleware.UserID(ctx))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list statements")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list statements")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"statements": rows,
		"count":      len(rows),
	})
}
