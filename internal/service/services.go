package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/buy-ready-tracker/internal/config"
	"github.com/buy-ready-tracker/internal/models"
	"github.com/buy-ready-tracker/internal/repository"
	"github.com/buy-ready-tracker/internal/status"
	"github.com/buy-ready-tracker/internal/tabular"
	"github.com/rs/zerolog"
)

var (
	// ErrUnsupportedFormat is returned for unknown export formats
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrUnsupportedResource is returned for unknown resources
	ErrUnsupportedResource = errors.New("unsupported resource")
	// ErrInvalidFilter is returned when a listing filter cannot be applied
	ErrInvalidFilter = errors.New("invalid filter")
)

// PassResult is the outcome of a synchronous import
type PassResult struct {
	Job    *models.Job
	Report *models.ReconcileReport
}

// ImportService defines the interface for import operations
type ImportService interface {
	CreateImportJob(ctx context.Context, req *models.ImportRequest, filePath string) (*models.Job, error)
	ProcessImport(ctx context.Context, job *models.Job) error
	ImportFile(ctx context.Context, kind, filePath string) (*PassResult, error)
}

// ArticleService defines the interface for Buy Ready article queries and status updates
type ArticleService interface {
	List(ctx context.Context, filter models.ArticleFilter) ([]*models.ArticleView, error)
	Stats(ctx context.Context) (*models.ArticleStats, error)
	Timeline(ctx context.Context, now time.Time) (*status.Timeline, error)
	ApplyStatusUpdates(ctx context.Context, updates []models.StatusUpdate) (int, error)
}

// DropService defines the interface for drop record queries
type DropService interface {
	List(ctx context.Context, filter models.DropFilter) ([]*models.Drop, error)
	Seasons(ctx context.Context) ([]string, error)
}

// ExportService defines the interface for export operations
type ExportService interface {
	StreamArticles(ctx context.Context, w http.ResponseWriter, format string) error
	StreamDrops(ctx context.Context, w http.ResponseWriter, format string) error
	GetCount(ctx context.Context, resource string) (int, error)
}

// JobService defines the interface for job management
type JobService interface {
	StartProcessor(ctx context.Context)
	StopProcessor()
	GetJob(ctx context.Context, id string) (*models.JobResponse, error)
	GetJobByIdempotencyKey(ctx context.Context, key string) (*models.Job, error)
	GetJobErrors(ctx context.Context, id string) ([]models.ValidationError, error)
	SetImportService(importService ImportService)
}

// InboxService defines the interface of the scheduled inbox scanner
type InboxService interface {
	Start() error
	Stop()
	Scan(ctx context.Context) (int, error)
}

// Services holds all service interfaces
type Services struct {
	Import  ImportService
	Article ArticleService
	Drop    DropService
	Export  ExportService
	Job     JobService
	Inbox   InboxService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, cfg *config.Config, log zerolog.Logger) *Services {
	// Reconciliation passes and status updates are serialized through one lock
	passLock := &sync.Mutex{}
	filter := tabular.Filter{
		Sports:            cfg.Filter.Sports,
		BuyReadyFactories: cfg.Filter.BuyReadyFactories,
		DropFactories:     cfg.Filter.DropFactories,
	}

	jobSvc := newJobService(repos.Job, log)
	importSvc := newImportService(repos, filter, passLock, log)
	articleSvc := newArticleService(repos, passLock, log)
	dropSvc := newDropService(repos, log)
	exportSvc := newExportService(repos, log)
	inboxSvc := newInboxService(importSvc, cfg.Import, log)

	// Wire up job processor to import service
	jobSvc.SetImportService(importSvc)

	return &Services{
		Import:  importSvc,
		Article: articleSvc,
		Drop:    dropSvc,
		Export:  exportSvc,
		Job:     jobSvc,
		Inbox:   inboxSvc,
	}
}
