package service

import (
	"context"
	"sync"
	"time"

	"github.com/buy-ready-tracker/internal/models"
	"github.com/buy-ready-tracker/internal/repository"
	"github.com/rs/zerolog"
)

// pollInterval is how often the processor looks for pending jobs
const pollInterval = 2 * time.Second

// jobService is the concrete implementation of JobService
type jobService struct {
	jobRepo       repository.JobRepository
	importService ImportService
	log           zerolog.Logger
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	running       bool
	mu            sync.Mutex
	// Semaphore with a single slot: reconciliation passes never overlap
	sem chan struct{}
}

// newJobService creates a new JobService with a single worker
func newJobService(jobRepo repository.JobRepository, log zerolog.Logger) *jobService {
	return &jobService{
		jobRepo: jobRepo,
		log:     log.With().Str("service", "job").Logger(),
		sem:     make(chan struct{}, 1),
	}
}

// SetImportService sets the import service for job processing
func (s *jobService) SetImportService(importService ImportService) {
	s.importService = importService
}

// StartProcessor starts the background job processor. It blocks until the
// context is cancelled or StopProcessor is called.
func (s *jobService) StartProcessor(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.log.Info().Msg("Job processor started")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			s.log.Info().Msg("Job processor stopping")
			return
		case <-ticker.C:
			s.processPendingJobs()
		}
	}
}

// StopProcessor stops the background job processor and waits for the
// running pass to finish
func (s *jobService) StopProcessor() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cancel()
	s.wg.Wait()
	s.running = false
	s.log.Info().Msg("Job processor stopped")
}

// processPendingJobs processes pending jobs one at a time, oldest first
func (s *jobService) processPendingJobs() {
	jobs, err := s.jobRepo.GetPendingJobs(s.ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to get pending jobs")
		return
	}

	for _, job := range jobs {
		// Acquire the worker slot; blocks while a pass is running
		select {
		case s.sem <- struct{}{}:
		case <-s.ctx.Done():
			return
		}

		// Mark as processing atomically
		marked, err := s.jobRepo.MarkJobAsProcessing(s.ctx, job.ID)
		if err != nil || !marked {
			<-s.sem  // Release slot since we're not processing this job
			continue // Claimed elsewhere, e.g. by a synchronous import
		}

		s.wg.Add(1)
		func(j *models.Job) {
			defer s.wg.Done()
			defer func() { <-s.sem }()

			// Panic recovery - prevents runtime panics from crashing the entire process
			defer func() {
				if r := recover(); r != nil {
					s.log.Error().
						Interface("panic", r).
						Str("job_id", j.ID).
						Msg("Job processing panicked - recovered")
					j.Status = models.JobStatusFailed
					j.ErrorMessage = "internal error"
					s.jobRepo.Update(context.Background(), j)
				}
			}()
			s.processJob(j)
		}(job)
	}
}

// processJob processes a single job
func (s *jobService) processJob(job *models.Job) {
	select {
	case <-s.ctx.Done():
		s.log.Warn().Str("job_id", job.ID).Msg("Job processing cancelled due to shutdown")
		return
	default:
	}

	s.log.Info().Str("job_id", job.ID).Str("resource", job.Resource).Msg("Processing job")

	switch job.Type {
	case models.JobTypeImport:
		if s.importService != nil {
			if err := s.importService.ProcessImport(s.ctx, job); err != nil {
				s.log.Error().Err(err).Str("job_id", job.ID).Msg("Import processing failed")
			}
		}
	default:
		s.log.Warn().Str("job_id", job.ID).Str("type", string(job.Type)).Msg("Unknown job type")
	}
}

// GetJob retrieves a job by ID with its first warnings
func (s *jobService) GetJob(ctx context.Context, id string) (*models.JobResponse, error) {
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, nil
	}

	// Get validation errors (limit to first 100)
	errors, err := s.jobRepo.GetErrors(ctx, id, 100)
	if err != nil {
		s.log.Error().Err(err).Str("job_id", id).Msg("Failed to get job errors")
	}

	response := &models.JobResponse{
		Job:        *job,
		Errors:     errors,
		ErrorCount: job.WarningCount,
	}

	// Add error report URL if there are errors
	if job.WarningCount > 0 {
		response.ErrorReport = "/v1/imports/" + job.ID + "/errors"
	}

	return response, nil
}

// GetJobByIdempotencyKey retrieves a job by idempotency key
func (s *jobService) GetJobByIdempotencyKey(ctx context.Context, key string) (*models.Job, error) {
	return s.jobRepo.GetByIdempotencyKey(ctx, key)
}

// GetJobErrors retrieves all validation errors for a job
func (s *jobService) GetJobErrors(ctx context.Context, id string) ([]models.ValidationError, error) {
	return s.jobRepo.GetErrors(ctx, id, 0)
}
