package reconcile

import (
	"strings"
	"time"

	"github.com/buy-ready-tracker/internal/models"
)

// DropPlan holds the mutations and report of one Drop pass. There is no
// delete phase: drop history accumulates across seasons.
type DropPlan struct {
	Inserts []*models.Drop
	Updates []*models.Drop
	Report  models.ReconcileReport
}

// Drops merges Drop report rows into the stored drop records, keyed by
// (season, article number). Duplicate keys in one batch keep the last row.
func Drops(existing []*models.Drop, incoming []models.DropRow, now time.Time) *DropPlan {
	plan := &DropPlan{
		Report: models.ReconcileReport{
			NewArticles:     []string{},
			ChangedArticles: []string{},
		},
	}

	stored := make(map[models.DropKey]*models.Drop, len(existing))
	for _, d := range existing {
		stored[d.Key()] = d
	}

	var order []models.DropKey
	latest := make(map[models.DropKey]*models.Drop)
	for _, row := range incoming {
		key := models.DropKey{
			Season:        strings.TrimSpace(row.Season),
			ArticleNumber: normalizeIdentifier(row.ArticleNumber),
		}
		if key.Season == "" || key.ArticleNumber == "" {
			plan.Report.Skipped++
			continue
		}

		if _, seen := latest[key]; seen {
			plan.Report.Duplicates++
		} else {
			order = append(order, key)
		}
		latest[key] = &models.Drop{
			Season:         key.Season,
			ArticleNumber:  key.ArticleNumber,
			Factory:        row.Factory,
			SportsCategory: row.SportsCategory,
			ArticleName:    row.ArticleName,
			Model:          row.Model,
		}
	}

	for _, key := range order {
		drop := latest[key]
		if old, ok := stored[key]; ok {
			drop.ID = old.ID
			drop.CreatedAt = old.CreatedAt
			drop.UpdatedAt = now
			plan.Updates = append(plan.Updates, drop)
			continue
		}
		drop.CreatedAt = now
		drop.UpdatedAt = now
		plan.Inserts = append(plan.Inserts, drop)
		plan.Report.NewArticles = append(plan.Report.NewArticles, key.Season+"/"+key.ArticleNumber)
	}

	plan.Report.Inserted = len(plan.Inserts)
	plan.Report.Updated = len(plan.Updates)

	return plan
}
