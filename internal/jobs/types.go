package jobs

import (
	"context"
	"time"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusRetrying  JobStatus = "retrying"
)

// ParseStatementJob asks the worker to parse one uploaded statement from
// blob storage and persist its transactions.
type ParseStatementJob struct {
	JobID      string    `json:"job_id"`
	UserID     string    `json:"user_id"`
	ObjectPath string    `json:"object_path"`
	Filename   string    `json:"filename"`
	Status     JobStatus `json:"status"`
	CreatedAt  time.Time `json:"created_at"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error holds failure details after the final attempt.
	Error string `json:"error,omitempty"`

	RetryCount int `json:"retry_count"`
	MaxRetries int `json:"max_retries"`
}

// Publisher enqueues statement parse jobs. The in-memory queue serves a
// single-instance deployment; a hosted queue can replace it behind this
// interface.
type Publisher interface {
	PublishParseStatement(ctx context.Context, job *ParseStatementJob) error
	Close() error
}

// JobHandler processes one job. Returning an error requeues the job
// until its retry budget is exhausted.
type JobHandler func(ctx context.Context, job *ParseStatementJob) error

// Consumer receives jobs from a queue.
type Consumer interface {
	Start(ctx context.Context, handler JobHandler) error
	Stop(ctx context.Context) error
}

// JobStore tracks job state so the API can report parse progress.
type JobStore interface {
	SaveJob(ctx context.Context, job *ParseStatementJob) error
	GetJob(ctx context.Context, jobID string) (*ParseStatementJob, error)
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}
