// Package reconcile computes the mutations that bring a store in line with
// a freshly uploaded report. It performs no I/O: callers apply the returned
// plan inside a single unit of work.
package reconcile

import (
	"time"

	"github.com/buy-ready-tracker/internal/models"
)

// ArticlePlan holds the mutations and report of one Buy Ready pass
type ArticlePlan struct {
	Inserts []*models.Article
	Updates []*models.Article
	Deletes []string
	Report  models.ReconcileReport
}

// Articles diffs a Buy Ready snapshot against the stored articles.
//
// Articles present in the snapshot are inserted or updated, stored articles
// missing from it are deleted. Status fields never come from the snapshot:
// inserts start with empty statuses and updates do not carry them.
// When an identifier appears more than once the last row wins.
func Articles(existing []*models.Article, incoming []models.ArticleRow, now time.Time) *ArticlePlan {
	plan := &ArticlePlan{
		Report: models.ReconcileReport{
			NewArticles:     []string{},
			ChangedArticles: []string{},
		},
	}

	stored := make(map[string]*models.Article, len(existing))
	for _, a := range existing {
		stored[a.ArticleNumber] = a
	}

	// Last row wins, first-seen order is kept
	var order []string
	latest := make(map[string]*models.Article)
	for _, row := range incoming {
		number := normalizeIdentifier(row.ArticleNumber)
		if number == "" {
			plan.Report.Skipped++
			continue
		}

		article := articleFromRow(number, row, &plan.Report)
		if _, seen := latest[number]; seen {
			plan.Report.Duplicates++
		} else {
			order = append(order, number)
		}
		latest[number] = article
	}

	for _, number := range order {
		article := latest[number]

		if old, ok := stored[number]; ok {
			if comparableDate(old.LeadingBuyReadyDate) != article.LeadingBuyReadyDate {
				plan.Report.ChangedArticles = append(plan.Report.ChangedArticles, number)
			}
			article.ID = old.ID
			article.CreatedAt = old.CreatedAt
			article.UpdatedAt = now
			plan.Updates = append(plan.Updates, article)
			continue
		}

		article.CreatedAt = now
		article.UpdatedAt = now
		plan.Inserts = append(plan.Inserts, article)
		plan.Report.NewArticles = append(plan.Report.NewArticles, number)
	}

	for _, a := range existing {
		if _, ok := latest[a.ArticleNumber]; !ok {
			plan.Deletes = append(plan.Deletes, a.ArticleNumber)
		}
	}

	plan.Report.Inserted = len(plan.Inserts)
	plan.Report.Updated = len(plan.Updates)
	plan.Report.Deleted = len(plan.Deletes)

	return plan
}

// articleFromRow builds the non-status part of an article from a report row.
// Unreadable dates are stored empty and reported as warnings.
func articleFromRow(number string, row models.ArticleRow, report *models.ReconcileReport) *models.Article {
	return &models.Article{
		ArticleNumber:       number,
		Factory:             row.Factory,
		SportsCategory:      row.SportsCategory,
		ArticleName:         row.ArticleName,
		Model:               row.Model,
		PreConfirmDate:      normalizeRowDate(row.Line, number, "pre_confirm_date", row.PreConfirmDate, report),
		LeadingBuyReadyDate: normalizeRowDate(row.Line, number, "leading_buy_ready_date", row.LeadingBuyReadyDate, report),
		ProductWeight:       row.ProductWeight,
		LifecycleState:      row.LifecycleState,
	}
}

func normalizeRowDate(line int, number, field, raw string, report *models.ReconcileReport) string {
	d, ok := NormalizeDate(raw)
	if !ok {
		report.Warnings = append(report.Warnings, models.ValidationError{
			Line:    line,
			Field:   field,
			Message: "unreadable date for article " + number + ", stored empty",
			Value:   raw,
		})
	}
	return d
}
