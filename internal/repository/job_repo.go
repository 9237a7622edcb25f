package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/buy-ready-tracker/internal/database"
	"github.com/buy-ready-tracker/internal/models"
)

const jobColumns = `id, type, resource, status, idempotency_key, file_name, file_path,
	total_records, inserted_count, updated_count, deleted_count, skipped_count, warning_count,
	new_articles, changed_articles, duration_ms, error_message, created_at, started_at, completed_at`

// jobRepo is the concrete implementation of JobRepository
type jobRepo struct {
	db querier
}

// NewJobRepo creates a new job repository
func NewJobRepo(db *database.DB) JobRepository {
	return &jobRepo{db: db}
}

func scanJob(s scanner) (*models.Job, error) {
	var job models.Job
	var idempotencyKey, fileName, filePath, errorMessage sql.NullString
	var newArticles, changedArticles string
	var startedAt, completedAt sql.NullTime

	err := s.Scan(
		&job.ID, &job.Type, &job.Resource, &job.Status, &idempotencyKey, &fileName, &filePath,
		&job.TotalRecords, &job.InsertedCount, &job.UpdatedCount, &job.DeletedCount,
		&job.SkippedCount, &job.WarningCount, &newArticles, &changedArticles,
		&job.DurationMs, &errorMessage, &job.CreatedAt, &startedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}

	job.IdempotencyKey = idempotencyKey.String
	job.FileName = fileName.String
	job.FilePath = filePath.String
	job.ErrorMessage = errorMessage.String
	if err := json.Unmarshal([]byte(newArticles), &job.NewArticles); err != nil {
		return nil, fmt.Errorf("failed to decode new articles of job %s: %w", job.ID, err)
	}
	if err := json.Unmarshal([]byte(changedArticles), &job.ChangedArticles); err != nil {
		return nil, fmt.Errorf("failed to decode changed articles of job %s: %w", job.ID, err)
	}
	if startedAt.Valid {
		job.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		job.CompletedAt = &completedAt.Time
	}

	return &job, nil
}

func encodeList(ids []string) string {
	if len(ids) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(ids)
	return string(b)
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// Create inserts a new job
func (r *jobRepo) Create(ctx context.Context, job *models.Job) error {
	query := `
		INSERT INTO jobs (id, type, resource, status, idempotency_key, file_name, file_path,
			total_records, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		job.ID, job.Type, job.Resource, job.Status, nullString(job.IdempotencyKey),
		nullString(job.FileName), nullString(job.FilePath), job.TotalRecords, job.CreatedAt,
	)
	return err
}

// Update updates job status, counters and the recorded report
func (r *jobRepo) Update(ctx context.Context, job *models.Job) error {
	query := `
		UPDATE jobs SET
			status = $1, total_records = $2, inserted_count = $3, updated_count = $4,
			deleted_count = $5, skipped_count = $6, warning_count = $7, new_articles = $8,
			changed_articles = $9, duration_ms = $10, error_message = $11, started_at = $12,
			completed_at = $13
		WHERE id = $14
	`
	_, err := r.db.ExecContext(ctx, query,
		job.Status, job.TotalRecords, job.InsertedCount, job.UpdatedCount,
		job.DeletedCount, job.SkippedCount, job.WarningCount, encodeList(job.NewArticles),
		encodeList(job.ChangedArticles), job.DurationMs, nullString(job.ErrorMessage),
		nullTime(job.StartedAt), nullTime(job.CompletedAt), job.ID,
	)
	return err
}

// GetByID retrieves a job by ID
func (r *jobRepo) GetByID(ctx context.Context, id string) (*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`

	job, err := scanJob(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

// GetByIdempotencyKey retrieves a job by idempotency key
func (r *jobRepo) GetByIdempotencyKey(ctx context.Context, key string) (*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE idempotency_key = $1`

	job, err := scanJob(r.db.QueryRowContext(ctx, query, key))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

// GetPendingJobs retrieves all pending jobs, oldest first
func (r *jobRepo) GetPendingJobs(ctx context.Context) ([]*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE status = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, models.JobStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}

// MarkJobAsProcessing atomically marks a pending job as processing
func (r *jobRepo) MarkJobAsProcessing(ctx context.Context, jobID string) (bool, error) {
	query := `
		UPDATE jobs SET status = $1, started_at = $2
		WHERE id = $3 AND status = $4
	`
	result, err := r.db.ExecContext(ctx, query,
		models.JobStatusProcessing, time.Now().UTC(), jobID, models.JobStatusPending,
	)
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// LatestCompleted returns the most recently completed job of a resource
func (r *jobRepo) LatestCompleted(ctx context.Context, resource string) (*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs
		WHERE resource = $1 AND status = $2
		ORDER BY completed_at DESC LIMIT 1`

	job, err := scanJob(r.db.QueryRowContext(ctx, query, resource, models.JobStatusCompleted))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

// AddErrors records row-level problems of a job with one prepared statement
func (r *jobRepo) AddErrors(ctx context.Context, jobID string, errors []models.ValidationError) error {
	if len(errors) == 0 {
		return nil
	}

	stmt, err := r.db.PrepareContext(ctx,
		`INSERT INTO job_errors (job_id, line_number, field, message, value) VALUES ($1, $2, $3, $4, $5)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range errors {
		valueStr := ""
		if e.Value != nil {
			valueStr = fmt.Sprint(e.Value)
		}
		if _, err := stmt.ExecContext(ctx, jobID, e.Line, e.Field, e.Message, nullString(valueStr)); err != nil {
			return fmt.Errorf("failed to record error for job %s: %w", jobID, err)
		}
	}

	return nil
}

// GetErrors retrieves validation errors for a job
func (r *jobRepo) GetErrors(ctx context.Context, jobID string, limit int) ([]models.ValidationError, error) {
	query := `SELECT line_number, field, message, value FROM job_errors WHERE job_id = $1 ORDER BY line_number, id`
	args := []interface{}{jobID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var errors []models.ValidationError
	for rows.Next() {
		var e models.ValidationError
		var value sql.NullString
		if err := rows.Scan(&e.Line, &e.Field, &e.Message, &value); err != nil {
			return nil, err
		}
		if value.Valid {
			e.Value = value.String
		}
		errors = append(errors, e)
	}

	return errors, rows.Err()
}
