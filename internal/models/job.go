package models

import (
	"time"
)

// JobStatus represents the status of an import job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// JobType represents the type of job
type JobType string

const (
	JobTypeImport JobType = "import"
)

// Report kinds, used as Job.Resource
const (
	ResourceBuyReady = "buy_ready"
	ResourceDrop     = "drop"
)

// Job records one reconciliation pass driven by an uploaded report
type Job struct {
	ID              string     `json:"job_id" db:"id"`
	Type            JobType    `json:"type" db:"type"`
	Resource        string     `json:"resource" db:"resource"`
	Status          JobStatus  `json:"status" db:"status"`
	IdempotencyKey  string     `json:"idempotency_key,omitempty" db:"idempotency_key"`
	FileName        string     `json:"file_name,omitempty" db:"file_name"`
	TotalRecords    int        `json:"total_records" db:"total_records"`
	InsertedCount   int        `json:"inserted" db:"inserted_count"`
	UpdatedCount    int        `json:"updated" db:"updated_count"`
	DeletedCount    int        `json:"deleted" db:"deleted_count"`
	SkippedCount    int        `json:"skipped" db:"skipped_count"`
	WarningCount    int        `json:"warnings" db:"warning_count"`
	NewArticles     []string   `json:"new_articles,omitempty" db:"-"`
	ChangedArticles []string   `json:"changed_articles,omitempty" db:"-"`
	DurationMs      int64      `json:"duration_ms,omitempty" db:"duration_ms"`
	ErrorMessage    string     `json:"error,omitempty" db:"error_message"`
	FilePath        string     `json:"-" db:"file_path"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	StartedAt       *time.Time `json:"started_at,omitempty" db:"started_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// ApplyReport copies the counts and identifier lists of a pass onto the job
func (j *Job) ApplyReport(r *ReconcileReport) {
	j.InsertedCount = r.Inserted
	j.UpdatedCount = r.Updated
	j.DeletedCount = r.Deleted
	j.SkippedCount = r.Skipped
	j.WarningCount = len(r.Warnings)
	j.NewArticles = r.NewArticles
	j.ChangedArticles = r.ChangedArticles
}

// ValidationError represents a single row-level problem found during a pass
type ValidationError struct {
	Line    int         `json:"line"`
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// JobResponse is the API response for job status
type JobResponse struct {
	Job
	Errors      []ValidationError `json:"errors,omitempty"`
	ErrorCount  int               `json:"error_count,omitempty"`
	ErrorReport string            `json:"error_report_url,omitempty"`
}

// ImportRequest represents an import job request
type ImportRequest struct {
	Resource       string `json:"resource" form:"kind"` // buy_ready, drop
	FileName       string `json:"file_name,omitempty"`
	IdempotencyKey string `json:"-"` // From header
}
