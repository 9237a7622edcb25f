package models

import (
	"time"
)

// Article is a Buy Ready article record, keyed by ArticleNumber.
// Status fields are only written by the status update path.
type Article struct {
	ID                  int64     `json:"id" db:"id"`
	ArticleNumber       string    `json:"article_number" db:"article_number"`
	Factory             string    `json:"factory" db:"factory"`
	SportsCategory      string    `json:"sports_category" db:"sports_category"`
	ArticleName         string    `json:"article_name" db:"article_name"`
	Model               string    `json:"model" db:"model"`
	PreConfirmDate      string    `json:"pre_confirm_date" db:"pre_confirm_date"`
	LeadingBuyReadyDate string    `json:"leading_buy_ready_date" db:"leading_buy_ready_date"`
	ProductWeight       string    `json:"product_weight" db:"product_weight"`
	LifecycleState      string    `json:"lifecycle_state" db:"lifecycle_state"`
	MCSStatus           string    `json:"mcs_status" db:"mcs_status"`
	FGTStatus           string    `json:"fgt_status" db:"fgt_status"`
	FTStatus            string    `json:"ft_status" db:"ft_status"`
	WTStatus            string    `json:"wt_status" db:"wt_status"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}

// ArticleRow is one alias-resolved row of a Buy Ready report.
// Dates are carried as they appear in the sheet; the reconciler normalizes them.
type ArticleRow struct {
	Line                int    `json:"line"`
	ArticleNumber       string `json:"article_number"`
	Factory             string `json:"factory"`
	SportsCategory      string `json:"sports_category"`
	ArticleName         string `json:"article_name"`
	Model               string `json:"model"`
	PreConfirmDate      string `json:"pre_confirm_date"`
	LeadingBuyReadyDate string `json:"leading_buy_ready_date"`
	ProductWeight       string `json:"product_weight"`
	LifecycleState      string `json:"lifecycle_state"`
}

// StatusUpdate carries the four process-stage statuses for one article
type StatusUpdate struct {
	ArticleNumber string `json:"article_number"`
	MCSStatus     string `json:"mcs_status"`
	FGTStatus     string `json:"fgt_status"`
	FTStatus      string `json:"ft_status"`
	WTStatus      string `json:"wt_status"`
}

// ChangeMarker flags articles touched by the latest Buy Ready pass
type ChangeMarker string

const (
	ChangeNone    ChangeMarker = ""
	ChangeNew     ChangeMarker = "NEW"
	ChangeChanged ChangeMarker = "CHANGED"
)

// ArticleView is an article as served to the display layer
type ArticleView struct {
	Article
	OverallStatus string       `json:"overall_status"`
	Change        ChangeMarker `json:"change,omitempty"`
}

// ArticleFilter narrows an article listing. Empty fields match everything.
type ArticleFilter struct {
	Factory        string `form:"factory"`
	SportsCategory string `form:"sport"`
	Date           string `form:"date"`
	Status         string `form:"status"`
	Search         string `form:"q"`
}

// ArticleStats summarizes the article store for dashboards
type ArticleStats struct {
	Total      int            `json:"total"`
	ByFactory  map[string]int `json:"by_factory"`
	BySport    map[string]int `json:"by_sport"`
	ByStatus   map[string]int `json:"by_status"`
	Drops      int            `json:"drops"`
	LastImport *Job           `json:"last_import,omitempty"`
}
