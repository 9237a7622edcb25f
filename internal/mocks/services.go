package mocks

import (
	"context"
	"net/http"
	"time"

	"github.com/buy-ready-tracker/internal/models"
	"github.com/buy-ready-tracker/internal/service"
	"github.com/buy-ready-tracker/internal/status"
)

// MockImportService is a mock implementation of ImportService
type MockImportService struct {
	CreateJobFunc  func(ctx context.Context, req *models.ImportRequest, filePath string) (*models.Job, error)
	ProcessFunc    func(ctx context.Context, job *models.Job) error
	ImportFileFunc func(ctx context.Context, kind, filePath string) (*service.PassResult, error)
	ProcessedJobs  []*models.Job
	CreatedJobs    []*models.Job
	CreatedPaths   []string
}

// Verify interface compliance
var _ service.ImportService = (*MockImportService)(nil)

func NewMockImportService() *MockImportService {
	return &MockImportService{
		ProcessedJobs: make([]*models.Job, 0),
		CreatedJobs:   make([]*models.Job, 0),
	}
}

func (m *MockImportService) CreateImportJob(ctx context.Context, req *models.ImportRequest, filePath string) (*models.Job, error) {
	if m.CreateJobFunc != nil {
		return m.CreateJobFunc(ctx, req, filePath)
	}
	job := &models.Job{
		ID:             "test-job-id",
		Type:           models.JobTypeImport,
		Resource:       req.Resource,
		Status:         models.JobStatusPending,
		IdempotencyKey: req.IdempotencyKey,
		FileName:       req.FileName,
		FilePath:       filePath,
	}
	m.CreatedJobs = append(m.CreatedJobs, job)
	m.CreatedPaths = append(m.CreatedPaths, filePath)
	return job, nil
}

func (m *MockImportService) ProcessImport(ctx context.Context, job *models.Job) error {
	if m.ProcessFunc != nil {
		return m.ProcessFunc(ctx, job)
	}
	m.ProcessedJobs = append(m.ProcessedJobs, job)
	job.Status = models.JobStatusCompleted
	return nil
}

func (m *MockImportService) ImportFile(ctx context.Context, kind, filePath string) (*service.PassResult, error) {
	if m.ImportFileFunc != nil {
		return m.ImportFileFunc(ctx, kind, filePath)
	}
	job := &models.Job{ID: "test-job-id", Resource: kind, Status: models.JobStatusCompleted, FilePath: filePath}
	return &service.PassResult{Job: job, Report: &models.ReconcileReport{NewArticles: []string{}, ChangedArticles: []string{}}}, nil
}

// MockArticleService is a mock implementation of ArticleService
type MockArticleService struct {
	Views         []*models.ArticleView
	ListErr       error
	LastFilter    models.ArticleFilter
	StatsResult   *models.ArticleStats
	TimelineItems *status.Timeline
	Updates       []models.StatusUpdate
	Applied       int
	ApplyErr      error
}

var _ service.ArticleService = (*MockArticleService)(nil)

func NewMockArticleService() *MockArticleService {
	return &MockArticleService{
		Views:         []*models.ArticleView{},
		StatsResult:   &models.ArticleStats{ByFactory: map[string]int{}, BySport: map[string]int{}, ByStatus: map[string]int{}},
		TimelineItems: &status.Timeline{Overdue: []status.TimelineItem{}, Today: []status.TimelineItem{}, Upcoming: []status.TimelineItem{}},
	}
}

func (m *MockArticleService) List(ctx context.Context, filter models.ArticleFilter) ([]*models.ArticleView, error) {
	m.LastFilter = filter
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.Views, nil
}

func (m *MockArticleService) Stats(ctx context.Context) (*models.ArticleStats, error) {
	return m.StatsResult, nil
}

func (m *MockArticleService) Timeline(ctx context.Context, now time.Time) (*status.Timeline, error) {
	return m.TimelineItems, nil
}

func (m *MockArticleService) ApplyStatusUpdates(ctx context.Context, updates []models.StatusUpdate) (int, error) {
	m.Updates = append(m.Updates, updates...)
	if m.ApplyErr != nil {
		return 0, m.ApplyErr
	}
	if m.Applied > 0 {
		return m.Applied, nil
	}
	return len(updates), nil
}

// MockDropService is a mock implementation of DropService
type MockDropService struct {
	Drops      []*models.Drop
	SeasonList []string
	LastFilter models.DropFilter
}

var _ service.DropService = (*MockDropService)(nil)

func NewMockDropService() *MockDropService {
	return &MockDropService{Drops: []*models.Drop{}, SeasonList: []string{}}
}

func (m *MockDropService) List(ctx context.Context, filter models.DropFilter) ([]*models.Drop, error) {
	m.LastFilter = filter
	return m.Drops, nil
}

func (m *MockDropService) Seasons(ctx context.Context) ([]string, error) {
	return m.SeasonList, nil
}

// MockExportService is a mock implementation of ExportService
type MockExportService struct {
	StreamArticlesFunc func(ctx context.Context, w http.ResponseWriter, format string) error
	StreamDropsFunc    func(ctx context.Context, w http.ResponseWriter, format string) error
	Counts             map[string]int
}

// Verify interface compliance
var _ service.ExportService = (*MockExportService)(nil)

func NewMockExportService() *MockExportService {
	return &MockExportService{
		Counts: map[string]int{
			service.ResourceArticles: 0,
			service.ResourceDrops:    0,
		},
	}
}

func (m *MockExportService) StreamArticles(ctx context.Context, w http.ResponseWriter, format string) error {
	if m.StreamArticlesFunc != nil {
		return m.StreamArticlesFunc(ctx, w, format)
	}
	return nil
}

func (m *MockExportService) StreamDrops(ctx context.Context, w http.ResponseWriter, format string) error {
	if m.StreamDropsFunc != nil {
		return m.StreamDropsFunc(ctx, w, format)
	}
	return nil
}

func (m *MockExportService) GetCount(ctx context.Context, resource string) (int, error) {
	return m.Counts[resource], nil
}

// MockJobService is a mock implementation of JobService
type MockJobService struct {
	Jobs          map[string]*models.JobResponse
	Errors        map[string][]models.ValidationError
	ImportService service.ImportService
}

// Verify interface compliance
var _ service.JobService = (*MockJobService)(nil)

func NewMockJobService() *MockJobService {
	return &MockJobService{
		Jobs:   make(map[string]*models.JobResponse),
		Errors: make(map[string][]models.ValidationError),
	}
}

func (m *MockJobService) StartProcessor(ctx context.Context) {}

func (m *MockJobService) StopProcessor() {}

func (m *MockJobService) GetJob(ctx context.Context, id string) (*models.JobResponse, error) {
	return m.Jobs[id], nil
}

func (m *MockJobService) GetJobByIdempotencyKey(ctx context.Context, key string) (*models.Job, error) {
	for _, job := range m.Jobs {
		if job.IdempotencyKey == key {
			return &job.Job, nil
		}
	}
	return nil, nil
}

func (m *MockJobService) GetJobErrors(ctx context.Context, id string) ([]models.ValidationError, error) {
	return m.Errors[id], nil
}

func (m *MockJobService) SetImportService(importService service.ImportService) {
	m.ImportService = importService
}

// MockInboxService is a mock implementation of InboxService
type MockInboxService struct {
	Queued  int
	Scans   int
	Started bool
}

var _ service.InboxService = (*MockInboxService)(nil)

func (m *MockInboxService) Start() error {
	m.Started = true
	return nil
}

func (m *MockInboxService) Stop() {
	m.Started = false
}

func (m *MockInboxService) Scan(ctx context.Context) (int, error) {
	m.Scans++
	return m.Queued, nil
}
