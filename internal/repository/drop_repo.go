package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/buy-ready-tracker/internal/database"
	"github.com/buy-ready-tracker/internal/models"
)

const dropColumns = `id, season, article_number, factory, sports_category, article_name, model, created_at, updated_at`

// dropRepo is the concrete implementation of DropRepository
type dropRepo struct {
	db querier
}

// NewDropRepo creates a new drop repository
func NewDropRepo(db *database.DB) DropRepository {
	return &dropRepo{db: db}
}

func scanDrop(s scanner) (*models.Drop, error) {
	var d models.Drop
	err := s.Scan(
		&d.ID, &d.Season, &d.ArticleNumber, &d.Factory, &d.SportsCategory,
		&d.ArticleName, &d.Model, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetAll returns every drop record
func (r *dropRepo) GetAll(ctx context.Context) ([]*models.Drop, error) {
	var drops []*models.Drop
	err := r.StreamAll(ctx, func(d *models.Drop) error {
		drops = append(drops, d)
		return nil
	})
	return drops, err
}

// GetByKey retrieves a drop record by (season, article number)
func (r *dropRepo) GetByKey(ctx context.Context, key models.DropKey) (*models.Drop, error) {
	query := `SELECT ` + dropColumns + ` FROM drop_articles WHERE season = $1 AND article_number = $2`

	d, err := scanDrop(r.db.QueryRowContext(ctx, query, key.Season, key.ArticleNumber))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Insert stores a new drop record and sets its ID
func (r *dropRepo) Insert(ctx context.Context, d *models.Drop) error {
	query := `
		INSERT INTO drop_articles (season, article_number, factory, sports_category,
			article_name, model, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		d.Season, d.ArticleNumber, d.Factory, d.SportsCategory,
		d.ArticleName, d.Model, d.CreatedAt, d.UpdatedAt,
	).Scan(&d.ID)
	if err != nil {
		return fmt.Errorf("failed to insert drop %s/%s: %w", d.Season, d.ArticleNumber, err)
	}
	return nil
}

// Update overwrites the descriptive fields of a drop record
func (r *dropRepo) Update(ctx context.Context, d *models.Drop) error {
	query := `
		UPDATE drop_articles SET
			factory = $1, sports_category = $2, article_name = $3, model = $4, updated_at = $5
		WHERE season = $6 AND article_number = $7
	`
	_, err := r.db.ExecContext(ctx, query,
		d.Factory, d.SportsCategory, d.ArticleName, d.Model, d.UpdatedAt,
		d.Season, d.ArticleNumber,
	)
	if err != nil {
		return fmt.Errorf("failed to update drop %s/%s: %w", d.Season, d.ArticleNumber, err)
	}
	return nil
}

// Count returns the total number of drop records
func (r *dropRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM drop_articles").Scan(&count)
	return count, err
}

// Seasons returns the distinct seasons in alphabetical order
func (r *dropRepo) Seasons(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT DISTINCT season FROM drop_articles ORDER BY season")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seasons := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		seasons = append(seasons, s)
	}
	return seasons, rows.Err()
}

// StreamAll streams all drop records ordered by season
func (r *dropRepo) StreamAll(ctx context.Context, callback func(*models.Drop) error) error {
	query := `SELECT ` + dropColumns + ` FROM drop_articles ORDER BY season, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		d, err := scanDrop(rows)
		if err != nil {
			return err
		}
		if err := callback(d); err != nil {
			return err
		}
	}

	return rows.Err()
}
