package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/buy-ready-tracker/internal/mocks"
	"github.com/buy-ready-tracker/internal/models"
	"github.com/buy-ready-tracker/internal/service"
	"github.com/buy-ready-tracker/internal/tabular"
)

func seedArticles(h *testHarness, pairs ...string) {
	for i := 0; i+1 < len(pairs); i += 2 {
		h.articleRepo.Seed(&models.Article{
			ArticleNumber:       pairs[i],
			Factory:             "HWA",
			SportsCategory:      "BASEBALL",
			LeadingBuyReadyDate: pairs[i+1],
			MCSStatus:           "APPROVED",
			FGTStatus:           "PASSED",
		})
	}
}

func TestImportFile_BuyReadyPass(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()
	seedArticles(h, "A1", "2026-03-01", "A2", "2026-03-01")

	path := buyReadyFile(t, h.dir, "Buy Ready.xlsx", "A2", "2026-03-01", "A3", "2026-04-15")

	result, err := h.services.Import.ImportFile(ctx, "", path)
	if err != nil {
		t.Fatalf("ImportFile failed: %v", err)
	}

	r := result.Report
	if r.Inserted != 1 || r.Updated != 1 || r.Deleted != 1 {
		t.Errorf("Expected 1/1/1 inserted/updated/deleted, got %d/%d/%d", r.Inserted, r.Updated, r.Deleted)
	}
	if len(r.NewArticles) != 1 || r.NewArticles[0] != "A3" {
		t.Errorf("Expected new articles [A3], got %v", r.NewArticles)
	}
	if len(r.ChangedArticles) != 0 {
		t.Errorf("Expected no changed articles, got %v", r.ChangedArticles)
	}

	if _, ok := h.articleRepo.Articles["A1"]; ok {
		t.Error("A1 should be deleted")
	}
	a2 := h.articleRepo.Articles["A2"]
	if a2 == nil || a2.MCSStatus != "APPROVED" || a2.FGTStatus != "PASSED" {
		t.Errorf("A2 statuses should survive the pass, got %+v", a2)
	}
	a3 := h.articleRepo.Articles["A3"]
	if a3 == nil || a3.LeadingBuyReadyDate != "2026-04-15" || a3.MCSStatus != "" {
		t.Errorf("A3 should be inserted with empty statuses, got %+v", a3)
	}

	job, _ := h.jobRepo.GetByID(ctx, result.Job.ID)
	if job.Status != models.JobStatusCompleted {
		t.Errorf("Expected completed job, got %s", job.Status)
	}
	if job.TotalRecords != 2 || job.InsertedCount != 1 || job.DeletedCount != 1 {
		t.Errorf("Job counts not recorded: %+v", job)
	}
	if job.Resource != models.ResourceBuyReady {
		t.Errorf("Expected buy_ready job, got %s", job.Resource)
	}
}

func TestImportFile_ChangedDate(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()
	seedArticles(h, "A1", "2026-03-01")

	path := buyReadyFile(t, h.dir, "Buy Ready.xlsx", "A1", "2026/03/08")

	result, err := h.services.Import.ImportFile(ctx, models.ResourceBuyReady, path)
	if err != nil {
		t.Fatalf("ImportFile failed: %v", err)
	}
	if len(result.Report.ChangedArticles) != 1 || result.Report.ChangedArticles[0] != "A1" {
		t.Errorf("Expected A1 to be changed, got %v", result.Report.ChangedArticles)
	}
	if got := h.articleRepo.Articles["A1"].LeadingBuyReadyDate; got != "2026-03-08" {
		t.Errorf("Expected normalized date 2026-03-08, got %q", got)
	}
}

func TestImportFile_Idempotent(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	path := buyReadyFile(t, h.dir, "Buy Ready.xlsx", "A1", "2026-03-01", "A2", "")

	if _, err := h.services.Import.ImportFile(ctx, "", path); err != nil {
		t.Fatalf("First import failed: %v", err)
	}
	before := len(h.articleRepo.Articles)

	result, err := h.services.Import.ImportFile(ctx, "", path)
	if err != nil {
		t.Fatalf("Second import failed: %v", err)
	}
	r := result.Report
	if r.Inserted != 0 || r.Deleted != 0 || len(r.NewArticles) != 0 || len(r.ChangedArticles) != 0 {
		t.Errorf("Second pass should change nothing, got %+v", r)
	}
	if r.Updated != 2 {
		t.Errorf("Every present article should be updated, got %d", r.Updated)
	}
	if len(h.articleRepo.Articles) != before {
		t.Errorf("Store size changed from %d to %d", before, len(h.articleRepo.Articles))
	}
}

func TestImportFile_RollbackOnFailure(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()
	seedArticles(h, "A1", "2026-03-01", "A2", "2026-03-01")
	h.articleRepo.FailOn = "A3"

	path := buyReadyFile(t, h.dir, "Buy Ready.xlsx", "A2", "2026-03-09", "A3", "2026-04-15")

	result, err := h.services.Import.ImportFile(ctx, "", path)
	if !errors.Is(err, mocks.ErrInjected) {
		t.Fatalf("Expected injected error, got %v", err)
	}

	if len(h.articleRepo.Articles) != 2 {
		t.Errorf("Store should be unchanged, has %d articles", len(h.articleRepo.Articles))
	}
	if got := h.articleRepo.Articles["A2"].LeadingBuyReadyDate; got != "2026-03-01" {
		t.Errorf("A2 should keep its date, got %q", got)
	}
	if _, ok := h.articleRepo.Articles["A1"]; !ok {
		t.Error("A1 should not be deleted by a failed pass")
	}

	job, _ := h.jobRepo.GetByID(ctx, result.Job.ID)
	if job.Status != models.JobStatusFailed || job.ErrorMessage == "" {
		t.Errorf("Expected failed job with a message, got %+v", job)
	}
	if job.InsertedCount != 0 || job.UpdatedCount != 0 {
		t.Errorf("Failed job should report no changes, got %+v", job)
	}
}

func TestImportFile_DropsAccumulate(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()
	h.dropRepo.Seed(&models.Drop{Season: "FW25", ArticleNumber: "D1", Factory: "HWA", SportsCategory: "BASEBALL"})

	header := []interface{}{"Sports Category", "T1 Factory", "Article Number", "Article Name", "Model"}
	path := writeWorkbook(t, h.dir, "Drop list.xlsx",
		sheetData{name: "SS26", rows: [][]interface{}{
			header,
			{"BASEBALL", "HWA", "D1", "Bat bag", "M1"},
			{"BASEBALL", "SPG", "D2", "Not ours", "M2"},
		}},
		sheetData{name: "FW25", rows: [][]interface{}{
			header,
			{"SOFTBALL", "HWA", "D1", "Renamed", "M1"},
		}},
		sheetData{name: "Notes", rows: [][]interface{}{{"nothing to see"}}},
	)

	result, err := h.services.Import.ImportFile(ctx, "", path)
	if err != nil {
		t.Fatalf("ImportFile failed: %v", err)
	}
	if result.Job.Resource != models.ResourceDrop {
		t.Errorf("Expected drop job, got %s", result.Job.Resource)
	}
	if result.Report.Inserted != 1 || result.Report.Updated != 1 || result.Report.Deleted != 0 {
		t.Errorf("Expected 1 insert and 1 update, got %+v", result.Report)
	}

	// Drop passes never delete, re-importing a single season keeps the others
	single := writeWorkbook(t, h.dir, "drop SS26.xlsx", sheetData{name: "SS26", rows: [][]interface{}{
		header,
		{"BASEBALL", "HWA", "D9", "New", "M9"},
	}})
	if _, err := h.services.Import.ImportFile(ctx, "", single); err != nil {
		t.Fatalf("Second ImportFile failed: %v", err)
	}

	if len(h.dropRepo.Drops) != 3 {
		t.Errorf("Expected 3 drops, got %d", len(h.dropRepo.Drops))
	}
	fw := h.dropRepo.Drops[models.DropKey{Season: "FW25", ArticleNumber: "D1"}]
	if fw == nil || fw.ArticleName != "Renamed" || fw.SportsCategory != "SOFTBALL" {
		t.Errorf("FW25/D1 should be updated, got %+v", fw)
	}
}

func TestImportFile_WarningsBecomeJobErrors(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	path := buyReadyFile(t, h.dir, "Buy Ready.xlsx", "A1", "someday", "A2", "2026-03-01")

	result, err := h.services.Import.ImportFile(ctx, "", path)
	if err != nil {
		t.Fatalf("ImportFile failed: %v", err)
	}
	if result.Job.WarningCount != 1 {
		t.Errorf("Expected 1 warning, got %d", result.Job.WarningCount)
	}

	errs, _ := h.services.Job.GetJobErrors(ctx, result.Job.ID)
	if len(errs) != 1 {
		t.Fatalf("Expected 1 job error, got %d", len(errs))
	}
	if errs[0].Line != 2 || errs[0].Field != tabular.FieldLeadingBuyReadyDate {
		t.Errorf("Unexpected warning: %+v", errs[0])
	}
	if got := h.articleRepo.Articles["A1"].LeadingBuyReadyDate; got != "" {
		t.Errorf("Unreadable date should be stored empty, got %q", got)
	}
}

func TestImportFile_UnknownKind(t *testing.T) {
	h := newTestHarness(t)
	path := buyReadyFile(t, h.dir, "weekly.xlsx", "A1", "")

	_, err := h.services.Import.ImportFile(context.Background(), "", path)
	if !errors.Is(err, tabular.ErrUnknownReportKind) {
		t.Errorf("Expected ErrUnknownReportKind, got %v", err)
	}

	_, err = h.services.Import.ImportFile(context.Background(), "forecast", path)
	if !errors.Is(err, service.ErrUnsupportedResource) {
		t.Errorf("Expected ErrUnsupportedResource, got %v", err)
	}
	if len(h.jobRepo.Jobs) != 0 {
		t.Errorf("No job should be recorded, got %d", len(h.jobRepo.Jobs))
	}
}

func TestImportFile_MissingColumns(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()
	seedArticles(h, "A1", "2026-03-01")

	path := writeWorkbook(t, h.dir, "Buy Ready.xlsx", sheetData{name: "Report", rows: [][]interface{}{
		{"Article NUMBER", "Model"},
		{"A9", "M"},
	}})

	result, err := h.services.Import.ImportFile(ctx, "", path)
	if !errors.Is(err, tabular.ErrMissingColumns) {
		t.Fatalf("Expected ErrMissingColumns, got %v", err)
	}
	if result.Job.Status != models.JobStatusFailed {
		t.Errorf("Expected failed job, got %s", result.Job.Status)
	}
	if len(h.articleRepo.Articles) != 1 {
		t.Error("Store should be untouched")
	}
	if h.uow.Calls != 0 {
		t.Errorf("Unit of work should not run, ran %d times", h.uow.Calls)
	}
}

func TestCreateImportJob_StoreFailure(t *testing.T) {
	h := newTestHarness(t)
	h.jobRepo.CreateError = errors.New("db down")

	_, err := h.services.Import.CreateImportJob(context.Background(),
		&models.ImportRequest{Resource: models.ResourceDrop, FileName: "drops.xlsx"}, "/tmp/drops.xlsx")
	if err == nil {
		t.Fatal("Expected an error")
	}
}
