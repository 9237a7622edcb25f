package service_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/buy-ready-tracker/internal/config"
	"github.com/buy-ready-tracker/internal/mocks"
	"github.com/buy-ready-tracker/internal/models"
	"github.com/buy-ready-tracker/internal/service"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

type testHarness struct {
	services    *service.Services
	articleRepo *mocks.MockArticleRepository
	dropRepo    *mocks.MockDropRepository
	jobRepo     *mocks.MockJobRepository
	uow         *mocks.MockUnitOfWork
	dir         string
	inbox       string
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	repos, articleRepo, dropRepo, jobRepo := mocks.NewRepositories()
	dir := t.TempDir()
	inbox := filepath.Join(dir, "inbox")
	if err := os.MkdirAll(inbox, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{
		Import: config.ImportConfig{
			MaxUploadSize:   10 * 1024 * 1024,
			UploadDir:       dir,
			InboxDir:        inbox,
			InboxSchedule:   "*/5 * * * *",
			ReportListLimit: 10,
		},
		Filter: config.FilterConfig{
			Sports:            []string{"AMERICAN FOOTBALL", "BASEBALL", "SOFTBALL"},
			BuyReadyFactories: []string{"HWA", "SPG"},
			DropFactories:     []string{"HWA"},
		},
	}

	return &testHarness{
		services:    service.NewServices(repos, cfg, zerolog.Nop()),
		articleRepo: articleRepo,
		dropRepo:    dropRepo,
		jobRepo:     jobRepo,
		uow:         repos.UnitOfWork.(*mocks.MockUnitOfWork),
		dir:         dir,
		inbox:       inbox,
	}
}

type sheetData struct {
	name string
	rows [][]interface{}
}

// writeWorkbook saves the sheets as an xlsx file under dir
func writeWorkbook(t *testing.T, dir, name string, sheets ...sheetData) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				t.Fatalf("SetSheetName failed: %v", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			t.Fatalf("NewSheet failed: %v", err)
		}
		for r, row := range s.rows {
			cell, _ := excelize.CoordinatesToCellName(1, r+1)
			values := row
			if err := f.SetSheetRow(s.name, cell, &values); err != nil {
				t.Fatalf("SetSheetRow failed: %v", err)
			}
		}
	}

	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs failed: %v", err)
	}
	return path
}

var buyReadyHeader = []interface{}{
	"Sports Category", "T1 Factory Short Code", "Article NUMBER", "Article NAME", "Model", "Leading Buy Ready Date",
}

func buyReadyRow(number, date string) []interface{} {
	return []interface{}{"BASEBALL", "HWA", number, "Glove " + number, "M-" + number, date}
}

// buyReadyFile writes a Buy Ready report with one row per (number, date) pair
func buyReadyFile(t *testing.T, dir, name string, pairs ...string) string {
	t.Helper()
	rows := [][]interface{}{buyReadyHeader}
	for i := 0; i+1 < len(pairs); i += 2 {
		rows = append(rows, buyReadyRow(pairs[i], pairs[i+1]))
	}
	return writeWorkbook(t, dir, name, sheetData{name: "Report", rows: rows})
}

func TestJobService_GetJob(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	now := time.Now()
	testJob := &models.Job{
		ID:            "test-job-123",
		Type:          models.JobTypeImport,
		Resource:      models.ResourceBuyReady,
		Status:        models.JobStatusCompleted,
		TotalRecords:  1000,
		InsertedCount: 950,
		WarningCount:  2,
		DurationMs:    5000,
		CreatedAt:     now,
		CompletedAt:   &now,
	}
	h.jobRepo.Create(ctx, testJob)
	h.jobRepo.AddErrors(ctx, testJob.ID, []models.ValidationError{
		{Line: 10, Field: "leading_buy_ready_date", Message: "unreadable date"},
		{Line: 25, Field: "pre_confirm_date", Message: "unreadable date"},
	})

	resp, err := h.services.Job.GetJob(ctx, testJob.ID)
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if resp == nil {
		t.Fatal("Job should be found")
	}
	if resp.ErrorCount != 2 || len(resp.Errors) != 2 {
		t.Errorf("Expected 2 errors, got count=%d list=%d", resp.ErrorCount, len(resp.Errors))
	}
	if resp.ErrorReport != "/v1/imports/test-job-123/errors" {
		t.Errorf("Unexpected error report URL %q", resp.ErrorReport)
	}

	missing, err := h.services.Job.GetJob(ctx, "nope")
	if err != nil || missing != nil {
		t.Errorf("Unknown job should give nil, nil; got %v, %v", missing, err)
	}
}

func TestJobService_ProcessesPendingJobs(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	path := buyReadyFile(t, h.dir, "Buy Ready.xlsx", "A1", "2026-03-01")
	job, err := h.services.Import.CreateImportJob(ctx, &models.ImportRequest{}, path)
	if err != nil {
		t.Fatalf("CreateImportJob failed: %v", err)
	}
	if job.Resource != models.ResourceBuyReady {
		t.Errorf("Kind should be inferred from the file name, got %q", job.Resource)
	}

	go h.services.Job.StartProcessor(ctx)
	defer h.services.Job.StopProcessor()

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		stored, _ := h.jobRepo.GetByID(ctx, job.ID)
		if stored != nil && stored.Status == models.JobStatusCompleted {
			if stored.InsertedCount != 1 {
				t.Errorf("Expected 1 inserted, got %d", stored.InsertedCount)
			}
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatal("Job was not processed in time")
}

func TestInboxService_Scan(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	buyReadyFile(t, h.inbox, "Buy Ready 0301.xlsx", "A1", "")
	writeWorkbook(t, h.inbox, "forecast.xlsx", sheetData{name: "Sheet1", rows: [][]interface{}{{"x"}}})
	if err := os.WriteFile(filepath.Join(h.inbox, "notes.txt"), []byte("ignore me"), 0o644); err != nil {
		t.Fatal(err)
	}

	queued, err := h.services.Inbox.Scan(ctx)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if queued != 1 {
		t.Fatalf("Expected 1 queued file, got %d", queued)
	}

	pending, _ := h.jobRepo.GetPendingJobs(ctx)
	if len(pending) != 1 {
		t.Fatalf("Expected 1 pending job, got %d", len(pending))
	}
	job := pending[0]
	if job.Resource != models.ResourceBuyReady || job.FileName != "Buy Ready 0301.xlsx" {
		t.Errorf("Unexpected job: %+v", job)
	}
	if filepath.Dir(job.FilePath) != filepath.Join(h.inbox, "processed") {
		t.Errorf("Workbook should be moved under processed/, got %s", job.FilePath)
	}
	if _, err := os.Stat(job.FilePath); err != nil {
		t.Errorf("Moved workbook missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(h.inbox, "forecast.xlsx")); err != nil {
		t.Errorf("Unrecognized workbook should stay in the inbox: %v", err)
	}

	// Nothing left to queue
	if queued, _ := h.services.Inbox.Scan(ctx); queued != 0 {
		t.Errorf("Second scan should queue nothing, got %d", queued)
	}
}

func TestInboxService_StartRejectsBadSchedule(t *testing.T) {
	repos, _, _, _ := mocks.NewRepositories()
	cfg := &config.Config{
		Import: config.ImportConfig{InboxDir: t.TempDir(), InboxSchedule: "every five minutes"},
		Filter: config.FilterConfig{Sports: []string{"BASEBALL"}},
	}
	services := service.NewServices(repos, cfg, zerolog.Nop())

	if err := services.Inbox.Start(); err == nil {
		services.Inbox.Stop()
		t.Fatal("Expected an error for an invalid cron expression")
	}
}

func TestInboxService_DisabledWithoutDir(t *testing.T) {
	repos, _, _, _ := mocks.NewRepositories()
	services := service.NewServices(repos, &config.Config{}, zerolog.Nop())

	if err := services.Inbox.Start(); err != nil {
		t.Fatalf("Start should be a no-op, got %v", err)
	}
	services.Inbox.Stop()

	if n, err := services.Inbox.Scan(context.Background()); n != 0 || err != nil {
		t.Errorf("Scan without inbox should do nothing, got %d, %v", n, err)
	}
}
