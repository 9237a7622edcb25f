package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/buy-ready-tracker/internal/database"
	"github.com/buy-ready-tracker/internal/models"
)

// ArticleRepository defines the interface for Buy Ready article operations
type ArticleRepository interface {
	GetAll(ctx context.Context) ([]*models.Article, error)
	GetByNumber(ctx context.Context, number string) (*models.Article, error)
	Insert(ctx context.Context, article *models.Article) error
	UpdateAttributes(ctx context.Context, article *models.Article) error
	UpdateStatuses(ctx context.Context, update models.StatusUpdate, now time.Time) (bool, error)
	Delete(ctx context.Context, number string) error
	Count(ctx context.Context) (int, error)
	StreamAll(ctx context.Context, callback func(*models.Article) error) error
}

// DropRepository defines the interface for drop record operations
type DropRepository interface {
	GetAll(ctx context.Context) ([]*models.Drop, error)
	GetByKey(ctx context.Context, key models.DropKey) (*models.Drop, error)
	Insert(ctx context.Context, drop *models.Drop) error
	Update(ctx context.Context, drop *models.Drop) error
	Count(ctx context.Context) (int, error)
	Seasons(ctx context.Context) ([]string, error)
	StreamAll(ctx context.Context, callback func(*models.Drop) error) error
}

// JobRepository defines the interface for job data operations
type JobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	Update(ctx context.Context, job *models.Job) error
	GetByID(ctx context.Context, id string) (*models.Job, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*models.Job, error)
	GetPendingJobs(ctx context.Context) ([]*models.Job, error)
	MarkJobAsProcessing(ctx context.Context, jobID string) (bool, error)
	LatestCompleted(ctx context.Context, resource string) (*models.Job, error)
	AddErrors(ctx context.Context, jobID string, errors []models.ValidationError) error
	GetErrors(ctx context.Context, jobID string, limit int) ([]models.ValidationError, error)
}

// TxRepositories are repositories bound to one transaction
type TxRepositories struct {
	Article ArticleRepository
	Drop    DropRepository
	Job     JobRepository
}

// UnitOfWork runs a function against transaction-bound repositories.
// Every mutation made through them commits together or not at all.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, repos *TxRepositories) error) error
}

// Repositories holds all repository interfaces
type Repositories struct {
	Article    ArticleRepository
	Drop       DropRepository
	Job        JobRepository
	UnitOfWork UnitOfWork
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Article:    NewArticleRepo(db),
		Drop:       NewDropRepo(db),
		Job:        NewJobRepo(db),
		UnitOfWork: &unitOfWork{db: db},
	}
}

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

type scanner interface {
	Scan(dest ...interface{}) error
}

type unitOfWork struct {
	db *database.DB
}

func (u *unitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos *TxRepositories) error) error {
	return u.db.WithTx(ctx, func(tx *sql.Tx) error {
		return fn(ctx, &TxRepositories{
			Article: &articleRepo{db: tx},
			Drop:    &dropRepo{db: tx},
			Job:     &jobRepo{db: tx},
		})
	})
}

// helper to convert empty string to NULL
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
