package models

import (
	"time"
)

// Drop is a season-scoped drop record, keyed by (Season, ArticleNumber)
type Drop struct {
	ID             int64     `json:"id" db:"id"`
	Season         string    `json:"season" db:"season"`
	ArticleNumber  string    `json:"article_number" db:"article_number"`
	Factory        string    `json:"factory" db:"factory"`
	SportsCategory string    `json:"sports_category" db:"sports_category"`
	ArticleName    string    `json:"article_name" db:"article_name"`
	Model          string    `json:"model" db:"model"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// DropRow is one alias-resolved row of a Drop report sheet.
// Season is the name of the sheet the row came from.
type DropRow struct {
	Line           int    `json:"line"`
	Season         string `json:"season"`
	ArticleNumber  string `json:"article_number"`
	Factory        string `json:"factory"`
	SportsCategory string `json:"sports_category"`
	ArticleName    string `json:"article_name"`
	Model          string `json:"model"`
}

// DropKey identifies a drop record
type DropKey struct {
	Season        string
	ArticleNumber string
}

// Key returns the identity of the drop record
func (d *Drop) Key() DropKey {
	return DropKey{Season: d.Season, ArticleNumber: d.ArticleNumber}
}

// DropFilter narrows a drop listing
type DropFilter struct {
	Season         string `form:"season"`
	SportsCategory string `form:"sport"`
	Search         string `form:"q"`
}
