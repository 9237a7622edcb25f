package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/buy-ready-tracker/internal/database"
	"github.com/buy-ready-tracker/internal/models"
)

const articleColumns = `id, article_number, factory, sports_category, article_name, model,
	pre_confirm_date, leading_buy_ready_date, product_weight, lifecycle_state,
	mcs_status, fgt_status, ft_status, wt_status, created_at, updated_at`

// articleRepo is the concrete implementation of ArticleRepository
type articleRepo struct {
	db querier
}

// NewArticleRepo creates a new article repository
func NewArticleRepo(db *database.DB) ArticleRepository {
	return &articleRepo{db: db}
}

func scanArticle(s scanner) (*models.Article, error) {
	var a models.Article
	err := s.Scan(
		&a.ID, &a.ArticleNumber, &a.Factory, &a.SportsCategory, &a.ArticleName, &a.Model,
		&a.PreConfirmDate, &a.LeadingBuyReadyDate, &a.ProductWeight, &a.LifecycleState,
		&a.MCSStatus, &a.FGTStatus, &a.FTStatus, &a.WTStatus, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetAll returns every stored article in insertion order
func (r *articleRepo) GetAll(ctx context.Context) ([]*models.Article, error) {
	var articles []*models.Article
	err := r.StreamAll(ctx, func(a *models.Article) error {
		articles = append(articles, a)
		return nil
	})
	return articles, err
}

// GetByNumber retrieves an article by its article number
func (r *articleRepo) GetByNumber(ctx context.Context, number string) (*models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE article_number = $1`

	a, err := scanArticle(r.db.QueryRowContext(ctx, query, number))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Insert stores a new article and sets its ID
func (r *articleRepo) Insert(ctx context.Context, a *models.Article) error {
	query := `
		INSERT INTO articles (article_number, factory, sports_category, article_name, model,
			pre_confirm_date, leading_buy_ready_date, product_weight, lifecycle_state,
			mcs_status, fgt_status, ft_status, wt_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		a.ArticleNumber, a.Factory, a.SportsCategory, a.ArticleName, a.Model,
		a.PreConfirmDate, a.LeadingBuyReadyDate, a.ProductWeight, a.LifecycleState,
		a.MCSStatus, a.FGTStatus, a.FTStatus, a.WTStatus, a.CreatedAt, a.UpdatedAt,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("failed to insert article %s: %w", a.ArticleNumber, err)
	}
	return nil
}

// UpdateAttributes overwrites the report-derived fields of an article.
// Status columns are left untouched.
func (r *articleRepo) UpdateAttributes(ctx context.Context, a *models.Article) error {
	query := `
		UPDATE articles SET
			factory = $1, sports_category = $2, article_name = $3, model = $4,
			pre_confirm_date = $5, leading_buy_ready_date = $6, product_weight = $7,
			lifecycle_state = $8, updated_at = $9
		WHERE article_number = $10
	`
	_, err := r.db.ExecContext(ctx, query,
		a.Factory, a.SportsCategory, a.ArticleName, a.Model,
		a.PreConfirmDate, a.LeadingBuyReadyDate, a.ProductWeight,
		a.LifecycleState, a.UpdatedAt, a.ArticleNumber,
	)
	if err != nil {
		return fmt.Errorf("failed to update article %s: %w", a.ArticleNumber, err)
	}
	return nil
}

// UpdateStatuses overwrites the four status fields of an article. It
// reports false when no article has the given number.
func (r *articleRepo) UpdateStatuses(ctx context.Context, u models.StatusUpdate, now time.Time) (bool, error) {
	query := `
		UPDATE articles SET
			mcs_status = $1, fgt_status = $2, ft_status = $3, wt_status = $4, updated_at = $5
		WHERE article_number = $6
	`
	result, err := r.db.ExecContext(ctx, query,
		u.MCSStatus, u.FGTStatus, u.FTStatus, u.WTStatus, now, u.ArticleNumber,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update statuses of %s: %w", u.ArticleNumber, err)
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// Delete removes an article by number
func (r *articleRepo) Delete(ctx context.Context, number string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM articles WHERE article_number = $1", number); err != nil {
		return fmt.Errorf("failed to delete article %s: %w", number, err)
	}
	return nil
}

// Count returns the total number of articles
func (r *articleRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles").Scan(&count)
	return count, err
}

// StreamAll streams all articles for export
func (r *articleRepo) StreamAll(ctx context.Context, callback func(*models.Article) error) error {
	query := `SELECT ` + articleColumns + ` FROM articles ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return err
		}
		if err := callback(a); err != nil {
			return err
		}
	}

	return rows.Err()
}
