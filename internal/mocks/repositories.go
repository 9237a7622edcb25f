package mocks

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/buy-ready-tracker/internal/models"
	"github.com/buy-ready-tracker/internal/repository"
)

// ErrInjected is the default error returned by failure injection
var ErrInjected = errors.New("injected failure")

// MockArticleRepository is a mock implementation of ArticleRepository.
// Setting FailOn makes every mutation of that article number fail.
type MockArticleRepository struct {
	mu       sync.Mutex
	Articles map[string]*models.Article
	nextID   int64
	FailOn   string
	FailErr  error
	GetErr   error
}

var _ repository.ArticleRepository = (*MockArticleRepository)(nil)

func NewMockArticleRepository() *MockArticleRepository {
	return &MockArticleRepository{Articles: make(map[string]*models.Article)}
}

func (m *MockArticleRepository) fail(number string) error {
	if m.FailOn != "" && m.FailOn == number {
		if m.FailErr != nil {
			return m.FailErr
		}
		return ErrInjected
	}
	return nil
}

// Seed stores articles directly, bypassing failure injection
func (m *MockArticleRepository) Seed(articles ...*models.Article) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range articles {
		cp := *a
		m.nextID++
		cp.ID = m.nextID
		m.Articles[cp.ArticleNumber] = &cp
	}
}

func (m *MockArticleRepository) clone() *MockArticleRepository {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := &MockArticleRepository{
		Articles: make(map[string]*models.Article, len(m.Articles)),
		nextID:   m.nextID,
		FailOn:   m.FailOn,
		FailErr:  m.FailErr,
		GetErr:   m.GetErr,
	}
	for k, v := range m.Articles {
		cp := *v
		c.Articles[k] = &cp
	}
	return c
}

func (m *MockArticleRepository) commit(c *MockArticleRepository) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Articles = c.Articles
	m.nextID = c.nextID
}

func (m *MockArticleRepository) sorted() []*models.Article {
	out := make([]*models.Article, 0, len(m.Articles))
	for _, a := range m.Articles {
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *MockArticleRepository) GetAll(ctx context.Context) ([]*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.sorted(), nil
}

func (m *MockArticleRepository) GetByNumber(ctx context.Context, number string) (*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Articles[number]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (m *MockArticleRepository) Insert(ctx context.Context, article *models.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(article.ArticleNumber); err != nil {
		return err
	}
	if _, exists := m.Articles[article.ArticleNumber]; exists {
		return errors.New("duplicate article number " + article.ArticleNumber)
	}
	m.nextID++
	article.ID = m.nextID
	cp := *article
	m.Articles[article.ArticleNumber] = &cp
	return nil
}

func (m *MockArticleRepository) UpdateAttributes(ctx context.Context, article *models.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(article.ArticleNumber); err != nil {
		return err
	}
	cur, ok := m.Articles[article.ArticleNumber]
	if !ok {
		return nil
	}
	cur.Factory = article.Factory
	cur.SportsCategory = article.SportsCategory
	cur.ArticleName = article.ArticleName
	cur.Model = article.Model
	cur.PreConfirmDate = article.PreConfirmDate
	cur.LeadingBuyReadyDate = article.LeadingBuyReadyDate
	cur.ProductWeight = article.ProductWeight
	cur.LifecycleState = article.LifecycleState
	cur.UpdatedAt = article.UpdatedAt
	return nil
}

func (m *MockArticleRepository) UpdateStatuses(ctx context.Context, u models.StatusUpdate, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(u.ArticleNumber); err != nil {
		return false, err
	}
	cur, ok := m.Articles[u.ArticleNumber]
	if !ok {
		return false, nil
	}
	cur.MCSStatus = u.MCSStatus
	cur.FGTStatus = u.FGTStatus
	cur.FTStatus = u.FTStatus
	cur.WTStatus = u.WTStatus
	cur.UpdatedAt = now
	return true, nil
}

func (m *MockArticleRepository) Delete(ctx context.Context, number string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(number); err != nil {
		return err
	}
	delete(m.Articles, number)
	return nil
}

func (m *MockArticleRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Articles), nil
}

func (m *MockArticleRepository) StreamAll(ctx context.Context, callback func(*models.Article) error) error {
	m.mu.Lock()
	articles := m.sorted()
	m.mu.Unlock()
	for _, a := range articles {
		if err := callback(a); err != nil {
			return err
		}
	}
	return nil
}

// MockDropRepository is a mock implementation of DropRepository
type MockDropRepository struct {
	mu      sync.Mutex
	Drops   map[models.DropKey]*models.Drop
	nextID  int64
	FailOn  string // article number whose mutations fail
	FailErr error
}

var _ repository.DropRepository = (*MockDropRepository)(nil)

func NewMockDropRepository() *MockDropRepository {
	return &MockDropRepository{Drops: make(map[models.DropKey]*models.Drop)}
}

func (m *MockDropRepository) fail(number string) error {
	if m.FailOn != "" && m.FailOn == number {
		if m.FailErr != nil {
			return m.FailErr
		}
		return ErrInjected
	}
	return nil
}

// Seed stores drops directly, bypassing failure injection
func (m *MockDropRepository) Seed(drops ...*models.Drop) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range drops {
		cp := *d
		m.nextID++
		cp.ID = m.nextID
		m.Drops[cp.Key()] = &cp
	}
}

func (m *MockDropRepository) clone() *MockDropRepository {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := &MockDropRepository{
		Drops:   make(map[models.DropKey]*models.Drop, len(m.Drops)),
		nextID:  m.nextID,
		FailOn:  m.FailOn,
		FailErr: m.FailErr,
	}
	for k, v := range m.Drops {
		cp := *v
		c.Drops[k] = &cp
	}
	return c
}

func (m *MockDropRepository) commit(c *MockDropRepository) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Drops = c.Drops
	m.nextID = c.nextID
}

func (m *MockDropRepository) sorted() []*models.Drop {
	out := make([]*models.Drop, 0, len(m.Drops))
	for _, d := range m.Drops {
		cp := *d
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Season != out[j].Season {
			return out[i].Season < out[j].Season
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (m *MockDropRepository) GetAll(ctx context.Context) ([]*models.Drop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(), nil
}

func (m *MockDropRepository) GetByKey(ctx context.Context, key models.DropKey) (*models.Drop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.Drops[key]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (m *MockDropRepository) Insert(ctx context.Context, drop *models.Drop) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(drop.ArticleNumber); err != nil {
		return err
	}
	if _, exists := m.Drops[drop.Key()]; exists {
		return errors.New("duplicate drop " + drop.Season + "/" + drop.ArticleNumber)
	}
	m.nextID++
	drop.ID = m.nextID
	cp := *drop
	m.Drops[drop.Key()] = &cp
	return nil
}

func (m *MockDropRepository) Update(ctx context.Context, drop *models.Drop) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(drop.ArticleNumber); err != nil {
		return err
	}
	cur, ok := m.Drops[drop.Key()]
	if !ok {
		return nil
	}
	cur.Factory = drop.Factory
	cur.SportsCategory = drop.SportsCategory
	cur.ArticleName = drop.ArticleName
	cur.Model = drop.Model
	cur.UpdatedAt = drop.UpdatedAt
	return nil
}

func (m *MockDropRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Drops), nil
}

func (m *MockDropRepository) Seasons(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[string]bool)
	seasons := []string{}
	for k := range m.Drops {
		if !seen[k.Season] {
			seen[k.Season] = true
			seasons = append(seasons, k.Season)
		}
	}
	sort.Strings(seasons)
	return seasons, nil
}

func (m *MockDropRepository) StreamAll(ctx context.Context, callback func(*models.Drop) error) error {
	m.mu.Lock()
	drops := m.sorted()
	m.mu.Unlock()
	for _, d := range drops {
		if err := callback(d); err != nil {
			return err
		}
	}
	return nil
}

// MockJobRepository is a mock implementation of JobRepository
type MockJobRepository struct {
	mu          sync.Mutex
	Jobs        map[string]*models.Job
	Errors      map[string][]models.ValidationError
	CreateError error
	UpdateError error
}

var _ repository.JobRepository = (*MockJobRepository)(nil)

func NewMockJobRepository() *MockJobRepository {
	return &MockJobRepository{
		Jobs:   make(map[string]*models.Job),
		Errors: make(map[string][]models.ValidationError),
	}
}

func (m *MockJobRepository) Create(ctx context.Context, job *models.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateError != nil {
		return m.CreateError
	}
	cp := *job
	m.Jobs[job.ID] = &cp
	return nil
}

func (m *MockJobRepository) Update(ctx context.Context, job *models.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateError != nil {
		return m.UpdateError
	}
	cp := *job
	m.Jobs[job.ID] = &cp
	return nil
}

func (m *MockJobRepository) GetByID(ctx context.Context, id string) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.Jobs[id]
	if !ok {
		return nil, nil
	}
	cp := *job
	return &cp, nil
}

func (m *MockJobRepository) GetByIdempotencyKey(ctx context.Context, key string) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, job := range m.Jobs {
		if job.IdempotencyKey == key {
			cp := *job
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MockJobRepository) GetPendingJobs(ctx context.Context) ([]*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var pending []*models.Job
	for _, job := range m.Jobs {
		if job.Status == models.JobStatusPending {
			cp := *job
			pending = append(pending, &cp)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].CreatedAt.Before(pending[j].CreatedAt) })
	return pending, nil
}

func (m *MockJobRepository) MarkJobAsProcessing(ctx context.Context, jobID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.Jobs[jobID]
	if !ok || job.Status != models.JobStatusPending {
		return false, nil
	}
	now := time.Now()
	job.Status = models.JobStatusProcessing
	job.StartedAt = &now
	return true, nil
}

func (m *MockJobRepository) LatestCompleted(ctx context.Context, resource string) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *models.Job
	for _, job := range m.Jobs {
		if job.Resource != resource || job.Status != models.JobStatusCompleted || job.CompletedAt == nil {
			continue
		}
		if latest == nil || job.CompletedAt.After(*latest.CompletedAt) {
			latest = job
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (m *MockJobRepository) AddErrors(ctx context.Context, jobID string, errors []models.ValidationError) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors[jobID] = append(m.Errors[jobID], errors...)
	return nil
}

func (m *MockJobRepository) GetErrors(ctx context.Context, jobID string, limit int) ([]models.ValidationError, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	errors := m.Errors[jobID]
	if limit > 0 && len(errors) > limit {
		return errors[:limit], nil
	}
	return errors, nil
}

// MockUnitOfWork runs the function against copies of the article and drop
// repositories and copies the result back only when it succeeds. Job
// writes are not transactional.
type MockUnitOfWork struct {
	Articles *MockArticleRepository
	Drops    *MockDropRepository
	Jobs     *MockJobRepository
	Err      error // returned without running the function
	Calls    int
}

var _ repository.UnitOfWork = (*MockUnitOfWork)(nil)

func NewMockUnitOfWork(articles *MockArticleRepository, drops *MockDropRepository, jobs *MockJobRepository) *MockUnitOfWork {
	return &MockUnitOfWork{Articles: articles, Drops: drops, Jobs: jobs}
}

func (u *MockUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos *repository.TxRepositories) error) error {
	u.Calls++
	if u.Err != nil {
		return u.Err
	}

	articles := u.Articles.clone()
	drops := u.Drops.clone()
	if err := fn(ctx, &repository.TxRepositories{Article: articles, Drop: drops, Job: u.Jobs}); err != nil {
		return err
	}

	u.Articles.commit(articles)
	u.Drops.commit(drops)
	return nil
}

// NewRepositories wires mock repositories the way repository.New does
func NewRepositories() (*repository.Repositories, *MockArticleRepository, *MockDropRepository, *MockJobRepository) {
	articles := NewMockArticleRepository()
	drops := NewMockDropRepository()
	jobs := NewMockJobRepository()
	return &repository.Repositories{
		Article:    articles,
		Drop:       drops,
		Job:        jobs,
		UnitOfWork: NewMockUnitOfWork(articles, drops, jobs),
	}, articles, drops, jobs
}
