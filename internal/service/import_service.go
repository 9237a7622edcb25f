package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/buy-ready-tracker/internal/models"
	"github.com/buy-ready-tracker/internal/reconcile"
	"github.com/buy-ready-tracker/internal/repository"
	"github.com/buy-ready-tracker/internal/tabular"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// importService is the concrete implementation of ImportService
type importService struct {
	repos    *repository.Repositories
	filter   tabular.Filter
	passLock *sync.Mutex
	now      func() time.Time
	log      zerolog.Logger
}

// newImportService creates a new ImportService
func newImportService(repos *repository.Repositories, filter tabular.Filter, passLock *sync.Mutex, log zerolog.Logger) *importService {
	return &importService{
		repos:    repos,
		filter:   filter,
		passLock: passLock,
		now:      func() time.Time { return time.Now().UTC() },
		log:      log.With().Str("service", "import").Logger(),
	}
}

// CreateImportJob creates a new pending import job. When no kind is given
// it is inferred from the file name.
func (s *importService) CreateImportJob(ctx context.Context, req *models.ImportRequest, filePath string) (*models.Job, error) {
	fileName := req.FileName
	if fileName == "" {
		fileName = filepath.Base(filePath)
	}

	resource := req.Resource
	if resource == "" {
		kind, err := tabular.DetectKind(fileName)
		if err != nil {
			return nil, err
		}
		resource = kind
	}
	if resource != models.ResourceBuyReady && resource != models.ResourceDrop {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedResource, resource)
	}

	job := &models.Job{
		ID:             uuid.New().String(),
		Type:           models.JobTypeImport,
		Resource:       resource,
		Status:         models.JobStatusPending,
		IdempotencyKey: req.IdempotencyKey,
		FileName:       fileName,
		FilePath:       filePath,
		CreatedAt:      s.now(),
	}

	if err := s.repos.Job.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	s.log.Info().
		Str("job_id", job.ID).
		Str("resource", job.Resource).
		Str("file", fileName).
		Msg("Import job created")

	return job, nil
}

// ProcessImport runs the reconciliation pass of an import job
func (s *importService) ProcessImport(ctx context.Context, job *models.Job) error {
	_, err := s.process(ctx, job)
	return err
}

// ImportFile runs one pass synchronously and returns the recorded job with
// the full report
func (s *importService) ImportFile(ctx context.Context, kind, filePath string) (*PassResult, error) {
	job, err := s.CreateImportJob(ctx, &models.ImportRequest{Resource: kind}, filePath)
	if err != nil {
		return nil, err
	}

	// Claim the job so a running processor does not pick it up as well
	marked, err := s.repos.Job.MarkJobAsProcessing(ctx, job.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to claim job: %w", err)
	}
	if !marked {
		return nil, fmt.Errorf("job %s was claimed by another worker", job.ID)
	}

	report, err := s.process(ctx, job)
	return &PassResult{Job: job, Report: report}, err
}

func (s *importService) process(ctx context.Context, job *models.Job) (*models.ReconcileReport, error) {
	began := time.Now()
	startedAt := s.now()
	job.Status = models.JobStatusProcessing
	job.StartedAt = &startedAt
	if err := s.repos.Job.Update(ctx, job); err != nil {
		s.log.Error().Err(err).Str("job_id", job.ID).Msg("Failed to mark job as processing")
	}

	s.log.Info().
		Str("job_id", job.ID).
		Str("resource", job.Resource).
		Str("file", job.FileName).
		Msg("Starting import processing")

	report, err := s.reconcile(ctx, job, began)
	if err != nil {
		completedAt := s.now()
		job.ApplyReport(&models.ReconcileReport{})
		job.Status = models.JobStatusFailed
		job.ErrorMessage = err.Error()
		job.DurationMs = time.Since(began).Milliseconds()
		job.CompletedAt = &completedAt
		if uerr := s.repos.Job.Update(ctx, job); uerr != nil {
			s.log.Error().Err(uerr).Str("job_id", job.ID).Msg("Failed to record job failure")
		}
		s.log.Error().Err(err).Str("job_id", job.ID).Msg("Import failed, store left unchanged")
		return nil, err
	}

	s.log.Info().
		Str("job_id", job.ID).
		Str("resource", job.Resource).
		Int("total", job.TotalRecords).
		Int("inserted", report.Inserted).
		Int("updated", report.Updated).
		Int("deleted", report.Deleted).
		Int("skipped", report.Skipped).
		Int("duplicates", report.Duplicates).
		Int("warnings", len(report.Warnings)).
		Int64("duration_ms", job.DurationMs).
		Msg("Import completed")

	return report, nil
}

// reconcile reads the workbook and applies the pass inside one unit of work
func (s *importService) reconcile(ctx context.Context, job *models.Job, began time.Time) (*models.ReconcileReport, error) {
	wb, err := tabular.OpenFile(job.FilePath)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	switch job.Resource {
	case models.ResourceBuyReady:
		rows, err := tabular.BuyReadyRows(wb, s.filter)
		if err != nil {
			return nil, err
		}
		job.TotalRecords = len(rows)
		return s.reconcileArticles(ctx, job, rows, began)
	case models.ResourceDrop:
		rows, err := tabular.DropRows(wb, s.filter)
		if err != nil {
			return nil, err
		}
		job.TotalRecords = len(rows)
		return s.reconcileDrops(ctx, job, rows, began)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedResource, job.Resource)
	}
}

func (s *importService) reconcileArticles(ctx context.Context, job *models.Job, rows []models.ArticleRow, began time.Time) (*models.ReconcileReport, error) {
	s.passLock.Lock()
	defer s.passLock.Unlock()

	var report *models.ReconcileReport
	err := s.repos.UnitOfWork.Do(ctx, func(ctx context.Context, tx *repository.TxRepositories) error {
		existing, err := tx.Article.GetAll(ctx)
		if err != nil {
			return fmt.Errorf("failed to load articles: %w", err)
		}

		now := s.now()
		plan := reconcile.Articles(existing, rows, now)

		for _, a := range plan.Inserts {
			if err := tx.Article.Insert(ctx, a); err != nil {
				return err
			}
		}
		for _, a := range plan.Updates {
			if err := tx.Article.UpdateAttributes(ctx, a); err != nil {
				return err
			}
		}
		for _, number := range plan.Deletes {
			if err := tx.Article.Delete(ctx, number); err != nil {
				return err
			}
		}

		report = &plan.Report
		return s.complete(ctx, tx.Job, job, report, now, began)
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (s *importService) reconcileDrops(ctx context.Context, job *models.Job, rows []models.DropRow, began time.Time) (*models.ReconcileReport, error) {
	s.passLock.Lock()
	defer s.passLock.Unlock()

	var report *models.ReconcileReport
	err := s.repos.UnitOfWork.Do(ctx, func(ctx context.Context, tx *repository.TxRepositories) error {
		existing, err := tx.Drop.GetAll(ctx)
		if err != nil {
			return fmt.Errorf("failed to load drops: %w", err)
		}

		now := s.now()
		plan := reconcile.Drops(existing, rows, now)

		for _, d := range plan.Inserts {
			if err := tx.Drop.Insert(ctx, d); err != nil {
				return err
			}
		}
		for _, d := range plan.Updates {
			if err := tx.Drop.Update(ctx, d); err != nil {
				return err
			}
		}

		report = &plan.Report
		return s.complete(ctx, tx.Job, job, report, now, began)
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// complete records the report on the job in the same unit of work as the pass
func (s *importService) complete(ctx context.Context, jobs repository.JobRepository, job *models.Job, report *models.ReconcileReport, now, began time.Time) error {
	job.ApplyReport(report)
	job.Status = models.JobStatusCompleted
	job.ErrorMessage = ""
	job.DurationMs = time.Since(began).Milliseconds()
	job.CompletedAt = &now

	if err := jobs.AddErrors(ctx, job.ID, report.Warnings); err != nil {
		return fmt.Errorf("failed to record warnings: %w", err)
	}
	if err := jobs.Update(ctx, job); err != nil {
		return fmt.Errorf("failed to record job: %w", err)
	}
	return nil
}
