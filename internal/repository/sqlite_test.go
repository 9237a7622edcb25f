package repository_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/buy-ready-tracker/internal/config"
	"github.com/buy-ready-tracker/internal/database"
	"github.com/buy-ready-tracker/internal/models"
	"github.com/buy-ready-tracker/internal/repository"
	"github.com/rs/zerolog"
)

// newSQLiteRepos opens a migrated sqlite database in a temp directory
func newSQLiteRepos(t *testing.T) *repository.Repositories {
	t.Helper()

	db, err := database.New(&config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "test.db"),
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(filepath.Join("..", "..", "migrations", "sqlite")); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return repository.New(db)
}

func TestSQLite_ArticleLifecycle(t *testing.T) {
	repos := newSQLiteRepos(t)
	ctx := context.Background()
	now := time.Now().UTC()

	a := &models.Article{
		ArticleNumber:       "A1",
		Factory:             "HWA",
		SportsCategory:      "BASEBALL",
		LeadingBuyReadyDate: "2026-03-01",
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := repos.Article.Insert(ctx, a); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if a.ID == 0 {
		t.Error("Insert should return the new ID")
	}

	ok, err := repos.Article.UpdateStatuses(ctx, models.StatusUpdate{ArticleNumber: "A1", MCSStatus: "APPROVED"}, now)
	if err != nil || !ok {
		t.Fatalf("UpdateStatuses failed: %v (ok=%v)", err, ok)
	}
	if ok, _ := repos.Article.UpdateStatuses(ctx, models.StatusUpdate{ArticleNumber: "ZZ"}, now); ok {
		t.Error("Unknown article should not be reported as updated")
	}

	a.LeadingBuyReadyDate = "2026-03-08"
	a.MCSStatus = "overwritten?"
	if err := repos.Article.UpdateAttributes(ctx, a); err != nil {
		t.Fatalf("UpdateAttributes failed: %v", err)
	}

	stored, err := repos.Article.GetByNumber(ctx, "A1")
	if err != nil || stored == nil {
		t.Fatalf("GetByNumber failed: %v", err)
	}
	if stored.LeadingBuyReadyDate != "2026-03-08" || stored.MCSStatus != "APPROVED" {
		t.Errorf("Unexpected stored article: %+v", stored)
	}

	if err := repos.Article.Delete(ctx, "A1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if n, _ := repos.Article.Count(ctx); n != 0 {
		t.Errorf("Expected empty store, got %d", n)
	}
}

func TestSQLite_UnitOfWorkRollback(t *testing.T) {
	repos := newSQLiteRepos(t)
	ctx := context.Background()
	now := time.Now().UTC()

	boom := errors.New("boom")
	err := repos.UnitOfWork.Do(ctx, func(ctx context.Context, tx *repository.TxRepositories) error {
		if err := tx.Article.Insert(ctx, &models.Article{ArticleNumber: "A1", CreatedAt: now, UpdatedAt: now}); err != nil {
			return err
		}
		if err := tx.Drop.Insert(ctx, &models.Drop{Season: "SS26", ArticleNumber: "D1", CreatedAt: now, UpdatedAt: now}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected boom, got %v", err)
	}

	if n, _ := repos.Article.Count(ctx); n != 0 {
		t.Errorf("Article insert should be rolled back, count=%d", n)
	}
	if n, _ := repos.Drop.Count(ctx); n != 0 {
		t.Errorf("Drop insert should be rolled back, count=%d", n)
	}
}

func TestSQLite_DropSeasons(t *testing.T) {
	repos := newSQLiteRepos(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for _, d := range []*models.Drop{
		{Season: "SS26", ArticleNumber: "D1", CreatedAt: now, UpdatedAt: now},
		{Season: "FW25", ArticleNumber: "D1", CreatedAt: now, UpdatedAt: now},
		{Season: "SS26", ArticleNumber: "D2", CreatedAt: now, UpdatedAt: now},
	} {
		if err := repos.Drop.Insert(ctx, d); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}
	if err := repos.Drop.Insert(ctx, &models.Drop{Season: "SS26", ArticleNumber: "D1", CreatedAt: now, UpdatedAt: now}); err == nil {
		t.Error("Duplicate (season, article) should violate the unique key")
	}

	seasons, err := repos.Drop.Seasons(ctx)
	if err != nil {
		t.Fatalf("Seasons failed: %v", err)
	}
	if len(seasons) != 2 || seasons[0] != "FW25" || seasons[1] != "SS26" {
		t.Errorf("Unexpected seasons: %v", seasons)
	}

	d, _ := repos.Drop.GetByKey(ctx, models.DropKey{Season: "FW25", ArticleNumber: "D1"})
	if d == nil {
		t.Fatal("FW25/D1 should exist")
	}
}

func TestSQLite_JobRecord(t *testing.T) {
	repos := newSQLiteRepos(t)
	ctx := context.Background()
	now := time.Now().UTC()

	job := &models.Job{
		ID:             "job-1",
		Type:           models.JobTypeImport,
		Resource:       models.ResourceBuyReady,
		Status:         models.JobStatusPending,
		IdempotencyKey: "key-1",
		FileName:       "Buy Ready.xlsx",
		CreatedAt:      now,
	}
	if err := repos.Job.Create(ctx, job); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	pending, _ := repos.Job.GetPendingJobs(ctx)
	if len(pending) != 1 {
		t.Fatalf("Expected 1 pending job, got %d", len(pending))
	}

	marked, err := repos.Job.MarkJobAsProcessing(ctx, "job-1")
	if err != nil || !marked {
		t.Fatalf("MarkJobAsProcessing failed: %v (marked=%v)", err, marked)
	}
	if marked, _ := repos.Job.MarkJobAsProcessing(ctx, "job-1"); marked {
		t.Error("Job should only be claimed once")
	}

	completed := now.Add(time.Second)
	job.ApplyReport(&models.ReconcileReport{
		Inserted:        1,
		NewArticles:     []string{"A3"},
		ChangedArticles: []string{},
		Warnings:        []models.ValidationError{{Line: 2, Field: "leading_buy_ready_date", Message: "unreadable date", Value: "someday"}},
	})
	job.Status = models.JobStatusCompleted
	job.CompletedAt = &completed
	if err := repos.Job.Update(ctx, job); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if err := repos.Job.AddErrors(ctx, job.ID, []models.ValidationError{{Line: 2, Field: "leading_buy_ready_date", Message: "unreadable date", Value: "someday"}}); err != nil {
		t.Fatalf("AddErrors failed: %v", err)
	}

	latest, err := repos.Job.LatestCompleted(ctx, models.ResourceBuyReady)
	if err != nil || latest == nil {
		t.Fatalf("LatestCompleted failed: %v", err)
	}
	if len(latest.NewArticles) != 1 || latest.NewArticles[0] != "A3" || latest.WarningCount != 1 {
		t.Errorf("Report not persisted: %+v", latest)
	}

	byKey, _ := repos.Job.GetByIdempotencyKey(ctx, "key-1")
	if byKey == nil || byKey.ID != "job-1" {
		t.Errorf("Expected job-1 by key, got %+v", byKey)
	}

	errs, _ := repos.Job.GetErrors(ctx, "job-1", 10)
	if len(errs) != 1 || errs[0].Value != "someday" {
		t.Errorf("Unexpected errors: %+v", errs)
	}
}
