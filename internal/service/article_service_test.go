package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/buy-ready-tracker/internal/mocks"
	"github.com/buy-ready-tracker/internal/models"
	"github.com/buy-ready-tracker/internal/service"
	"github.com/buy-ready-tracker/internal/status"
)

func TestArticleService_ListFilters(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	h.articleRepo.Seed(
		&models.Article{ArticleNumber: "A1", Factory: "HWA", SportsCategory: "BASEBALL", ArticleName: "Catcher mitt", LeadingBuyReadyDate: "2026-03-09"},
		&models.Article{ArticleNumber: "A2", Factory: "SPG", SportsCategory: "SOFTBALL", LeadingBuyReadyDate: "2026-03-01", MCSStatus: "approved", FGTStatus: "passed"},
		&models.Article{ArticleNumber: "A3", Factory: "HWA", SportsCategory: "BASEBALL", MCSStatus: "ETD 3/5"},
	)

	tests := []struct {
		name   string
		filter models.ArticleFilter
		want   []string
	}{
		{"no filter orders by date, undated last", models.ArticleFilter{}, []string{"A2", "A1", "A3"}},
		{"factory", models.ArticleFilter{Factory: "hwa"}, []string{"A1", "A3"}},
		{"sport", models.ArticleFilter{SportsCategory: "softball"}, []string{"A2"}},
		{"date in another format", models.ArticleFilter{Date: "2026/03/09"}, []string{"A1"}},
		{"status", models.ArticleFilter{Status: "pending"}, []string{"A3"}},
		{"passed", models.ArticleFilter{Status: "PASSED"}, []string{"A2"}},
		{"search name", models.ArticleFilter{Search: "mitt"}, []string{"A1"}},
		{"search number", models.ArticleFilter{Search: "a3"}, []string{"A3"}},
		{"no match", models.ArticleFilter{Factory: "XYZ"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			views, err := h.services.Article.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(views) != len(tt.want) {
				t.Fatalf("Expected %v, got %d views", tt.want, len(views))
			}
			for i, v := range views {
				if v.ArticleNumber != tt.want[i] {
					t.Errorf("Position %d: expected %s, got %s", i, tt.want[i], v.ArticleNumber)
				}
			}
		})
	}
}

func TestArticleService_ListInvalidFilter(t *testing.T) {
	h := newTestHarness(t)

	for _, f := range []models.ArticleFilter{{Date: "next week"}, {Status: "DONE"}} {
		_, err := h.services.Article.List(context.Background(), f)
		if !errors.Is(err, service.ErrInvalidFilter) {
			t.Errorf("Filter %+v: expected ErrInvalidFilter, got %v", f, err)
		}
	}
}

func TestArticleService_ChangeMarkers(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	first := buyReadyFile(t, h.dir, "Buy Ready 1.xlsx", "A1", "2026-03-01", "A2", "2026-03-02")
	if _, err := h.services.Import.ImportFile(ctx, "", first); err != nil {
		t.Fatalf("First import failed: %v", err)
	}

	views, _ := h.services.Article.List(ctx, models.ArticleFilter{})
	for _, v := range views {
		if v.Change != models.ChangeNew {
			t.Errorf("%s should be NEW after the first pass, got %q", v.ArticleNumber, v.Change)
		}
	}

	second := buyReadyFile(t, h.dir, "Buy Ready 2.xlsx", "A1", "2026-03-01", "A2", "2026-03-20", "A3", "2026-03-03")
	if _, err := h.services.Import.ImportFile(ctx, "", second); err != nil {
		t.Fatalf("Second import failed: %v", err)
	}

	views, _ = h.services.Article.List(ctx, models.ArticleFilter{})
	got := make(map[string]models.ChangeMarker)
	for _, v := range views {
		got[v.ArticleNumber] = v.Change
	}
	want := map[string]models.ChangeMarker{"A1": models.ChangeNone, "A2": models.ChangeChanged, "A3": models.ChangeNew}
	for number, marker := range want {
		if got[number] != marker {
			t.Errorf("%s: expected %q, got %q", number, marker, got[number])
		}
	}
}

func TestArticleService_ApplyStatusUpdates(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()
	seedArticles(h, "A1", "2026-03-01", "A2", "2026-03-02")

	applied, err := h.services.Article.ApplyStatusUpdates(ctx, []models.StatusUpdate{
		{ArticleNumber: " A1 ", MCSStatus: " ETD 3/5 ", FGTStatus: "", FTStatus: "SENT", WTStatus: ""},
		{ArticleNumber: "ZZ", MCSStatus: "APPROVED"},
		{ArticleNumber: "", MCSStatus: "APPROVED"},
	})
	if err != nil {
		t.Fatalf("ApplyStatusUpdates failed: %v", err)
	}
	if applied != 1 {
		t.Errorf("Expected 1 applied update, got %d", applied)
	}

	a1 := h.articleRepo.Articles["A1"]
	if a1.MCSStatus != "ETD 3/5" || a1.FGTStatus != "" || a1.FTStatus != "SENT" {
		t.Errorf("Statuses not overwritten: %+v", a1)
	}
	if status.ClassifyArticle(a1) != status.Pending {
		t.Errorf("Expected PENDING, got %s", status.ClassifyArticle(a1))
	}
	if _, ok := h.articleRepo.Articles["ZZ"]; ok {
		t.Error("Unknown identifiers must not create articles")
	}
}

func TestArticleService_ApplyStatusUpdatesRollback(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()
	seedArticles(h, "A1", "2026-03-01", "A2", "2026-03-02")
	h.articleRepo.FailOn = "A2"

	_, err := h.services.Article.ApplyStatusUpdates(ctx, []models.StatusUpdate{
		{ArticleNumber: "A1", MCSStatus: "PENDING"},
		{ArticleNumber: "A2", MCSStatus: "PENDING"},
	})
	if !errors.Is(err, mocks.ErrInjected) {
		t.Fatalf("Expected injected error, got %v", err)
	}
	if got := h.articleRepo.Articles["A1"].MCSStatus; got != "APPROVED" {
		t.Errorf("A1 should be rolled back, got %q", got)
	}
}

func TestArticleService_StatusesSurviveReimport(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	path := buyReadyFile(t, h.dir, "Buy Ready.xlsx", "A1", "2026-03-01")
	if _, err := h.services.Import.ImportFile(ctx, "", path); err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if _, err := h.services.Article.ApplyStatusUpdates(ctx, []models.StatusUpdate{
		{ArticleNumber: "A1", MCSStatus: "APPROVED", FGTStatus: "PASSED"},
	}); err != nil {
		t.Fatalf("ApplyStatusUpdates failed: %v", err)
	}
	if _, err := h.services.Import.ImportFile(ctx, "", path); err != nil {
		t.Fatalf("Reimport failed: %v", err)
	}

	views, _ := h.services.Article.List(ctx, models.ArticleFilter{Status: "passed"})
	if len(views) != 1 || views[0].MCSStatus != "APPROVED" {
		t.Errorf("Statuses should survive a reimport, got %+v", views)
	}
}

func TestArticleService_Stats(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	h.articleRepo.Seed(
		&models.Article{ArticleNumber: "A1", Factory: "HWA", SportsCategory: "BASEBALL"},
		&models.Article{ArticleNumber: "A2", Factory: "HWA", SportsCategory: "SOFTBALL", MCSStatus: "APPROVED", FGTStatus: "PASSED"},
		&models.Article{ArticleNumber: "A3", Factory: "SPG", SportsCategory: "BASEBALL", WTStatus: "IN TEST"},
	)
	h.dropRepo.Seed(&models.Drop{Season: "SS26", ArticleNumber: "D1"})

	stats, err := h.services.Article.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Total != 3 || stats.Drops != 1 {
		t.Errorf("Expected 3 articles and 1 drop, got %d and %d", stats.Total, stats.Drops)
	}
	if stats.ByFactory["HWA"] != 2 || stats.BySport["BASEBALL"] != 2 {
		t.Errorf("Unexpected breakdown: %+v", stats)
	}
	if stats.ByStatus["NONE"] != 1 || stats.ByStatus["PASSED"] != 1 || stats.ByStatus["PROCESSING"] != 1 {
		t.Errorf("Unexpected status counts: %v", stats.ByStatus)
	}
	if stats.LastImport != nil {
		t.Error("No import has run yet")
	}
}

func TestArticleService_Timeline(t *testing.T) {
	h := newTestHarness(t)
	h.articleRepo.Seed(
		&models.Article{ArticleNumber: "A1", Factory: "HWA", MCSStatus: "ETD 3/3"},
		&models.Article{ArticleNumber: "A2", Factory: "HWA", FGTStatus: "sent etd 3/5"},
		&models.Article{ArticleNumber: "A3", Factory: "SPG", FTStatus: "ETD 3/10", WTStatus: "ETD 3/30"},
	)

	now := time.Date(2026, 3, 5, 14, 0, 0, 0, time.UTC)
	tl, err := h.services.Article.Timeline(context.Background(), now)
	if err != nil {
		t.Fatalf("Timeline failed: %v", err)
	}

	if len(tl.Overdue) != 1 || tl.Overdue[0].ArticleNumber != "A1" || tl.Overdue[0].Days != -2 {
		t.Errorf("Unexpected overdue items: %+v", tl.Overdue)
	}
	if len(tl.Today) != 1 || tl.Today[0].Stage != "FGT" {
		t.Errorf("Unexpected today items: %+v", tl.Today)
	}
	if len(tl.Upcoming) != 1 || tl.Upcoming[0].Stage != "FT" || tl.Upcoming[0].Days != 5 {
		t.Errorf("Unexpected upcoming items: %+v", tl.Upcoming)
	}
}

func TestDropService_List(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()
	h.dropRepo.Seed(
		&models.Drop{Season: "SS26", ArticleNumber: "D1", SportsCategory: "BASEBALL", ArticleName: "Bat bag"},
		&models.Drop{Season: "FW25", ArticleNumber: "D2", SportsCategory: "SOFTBALL", Model: "X-100"},
		&models.Drop{Season: "SS26", ArticleNumber: "D3", SportsCategory: "SOFTBALL"},
	)

	all, err := h.services.Drop.List(ctx, models.DropFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 || all[0].Season != "FW25" {
		t.Errorf("Expected 3 drops ordered by season, got %+v", all)
	}

	if got, _ := h.services.Drop.List(ctx, models.DropFilter{Season: "SS26", SportsCategory: "softball"}); len(got) != 1 || got[0].ArticleNumber != "D3" {
		t.Errorf("Expected only D3, got %+v", got)
	}
	if got, _ := h.services.Drop.List(ctx, models.DropFilter{Search: "x-1"}); len(got) != 1 || got[0].ArticleNumber != "D2" {
		t.Errorf("Expected only D2, got %+v", got)
	}

	seasons, _ := h.services.Drop.Seasons(ctx)
	if len(seasons) != 2 || seasons[0] != "FW25" || seasons[1] != "SS26" {
		t.Errorf("Unexpected seasons: %v", seasons)
	}
}
