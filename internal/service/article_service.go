package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/buy-ready-tracker/internal/models"
	"github.com/buy-ready-tracker/internal/reconcile"
	"github.com/buy-ready-tracker/internal/repository"
	"github.com/buy-ready-tracker/internal/status"
	"github.com/rs/zerolog"
)

// articleService is the concrete implementation of ArticleService
type articleService struct {
	repos    *repository.Repositories
	passLock *sync.Mutex
	now      func() time.Time
	log      zerolog.Logger
}

// newArticleService creates a new ArticleService
func newArticleService(repos *repository.Repositories, passLock *sync.Mutex, log zerolog.Logger) *articleService {
	return &articleService{
		repos:    repos,
		passLock: passLock,
		now:      func() time.Time { return time.Now().UTC() },
		log:      log.With().Str("service", "article").Logger(),
	}
}

// List returns the articles matching the filter, ordered by leading Buy
// Ready date with undated articles last. Each article carries its overall
// status and whether the latest Buy Ready pass added or re-dated it.
func (s *articleService) List(ctx context.Context, filter models.ArticleFilter) ([]*models.ArticleView, error) {
	match, err := newArticleMatcher(filter)
	if err != nil {
		return nil, err
	}

	articles, err := s.repos.Article.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load articles: %w", err)
	}

	markers, err := s.changeMarkers(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]*models.ArticleView, 0, len(articles))
	for _, a := range articles {
		overall := status.ClassifyArticle(a)
		if !match(a, overall) {
			continue
		}
		views = append(views, &models.ArticleView{
			Article:       *a,
			OverallStatus: string(overall),
			Change:        markers[a.ArticleNumber],
		})
	}

	sort.SliceStable(views, func(i, j int) bool {
		di, dj := views[i].LeadingBuyReadyDate, views[j].LeadingBuyReadyDate
		if di == "" || dj == "" {
			return di != "" && dj == ""
		}
		return di < dj
	})

	return views, nil
}

// changeMarkers flags the articles added or re-dated by the latest
// completed Buy Ready pass
func (s *articleService) changeMarkers(ctx context.Context) (map[string]models.ChangeMarker, error) {
	markers := make(map[string]models.ChangeMarker)

	latest, err := s.repos.Job.LatestCompleted(ctx, models.ResourceBuyReady)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest import: %w", err)
	}
	if latest == nil {
		return markers, nil
	}

	for _, id := range latest.ChangedArticles {
		markers[id] = models.ChangeChanged
	}
	for _, id := range latest.NewArticles {
		markers[id] = models.ChangeNew
	}
	return markers, nil
}

type articleMatcher func(a *models.Article, overall status.Overall) bool

func newArticleMatcher(f models.ArticleFilter) (articleMatcher, error) {
	factory := strings.ToUpper(strings.TrimSpace(f.Factory))
	sport := strings.ToUpper(strings.TrimSpace(f.SportsCategory))
	search := strings.ToLower(strings.TrimSpace(f.Search))

	var date string
	if strings.TrimSpace(f.Date) != "" {
		d, ok := reconcile.NormalizeDate(f.Date)
		if !ok || d == "" {
			return nil, fmt.Errorf("%w: date %q", ErrInvalidFilter, f.Date)
		}
		date = d
	}

	var wantStatus status.Overall
	if strings.TrimSpace(f.Status) != "" {
		st, ok := status.Parse(f.Status)
		if !ok {
			return nil, fmt.Errorf("%w: status %q", ErrInvalidFilter, f.Status)
		}
		wantStatus = st
	}

	return func(a *models.Article, overall status.Overall) bool {
		if factory != "" && a.Factory != factory {
			return false
		}
		if sport != "" && a.SportsCategory != sport {
			return false
		}
		if date != "" && a.LeadingBuyReadyDate != date {
			return false
		}
		if wantStatus != "" && overall != wantStatus {
			return false
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(a.ArticleNumber), search) &&
			!strings.Contains(strings.ToLower(a.ArticleName), search) &&
			!strings.Contains(strings.ToLower(a.Model), search) {
			return false
		}
		return true
	}, nil
}

// Stats counts articles per factory, sport and overall status
func (s *articleService) Stats(ctx context.Context) (*models.ArticleStats, error) {
	stats := &models.ArticleStats{
		ByFactory: make(map[string]int),
		BySport:   make(map[string]int),
		ByStatus:  make(map[string]int),
	}

	err := s.repos.Article.StreamAll(ctx, func(a *models.Article) error {
		stats.Total++
		stats.ByFactory[a.Factory]++
		stats.BySport[a.SportsCategory]++
		stats.ByStatus[string(status.ClassifyArticle(a))]++
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count articles: %w", err)
	}

	if stats.Drops, err = s.repos.Drop.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count drops: %w", err)
	}
	if stats.LastImport, err = s.repos.Job.LatestCompleted(ctx, models.ResourceBuyReady); err != nil {
		return nil, fmt.Errorf("failed to load latest import: %w", err)
	}

	return stats, nil
}

// Timeline buckets the ETD dates found in status texts
func (s *articleService) Timeline(ctx context.Context, now time.Time) (*status.Timeline, error) {
	articles, err := s.repos.Article.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load articles: %w", err)
	}
	return status.BuildTimeline(articles, now, status.DefaultHorizon), nil
}

// ApplyStatusUpdates overwrites the four status fields of each known
// article in one unit of work. Unknown and empty identifiers are ignored.
func (s *articleService) ApplyStatusUpdates(ctx context.Context, updates []models.StatusUpdate) (int, error) {
	s.passLock.Lock()
	defer s.passLock.Unlock()

	applied := 0
	err := s.repos.UnitOfWork.Do(ctx, func(ctx context.Context, tx *repository.TxRepositories) error {
		applied = 0
		now := s.now()
		for _, u := range updates {
			u = trimStatusUpdate(u)
			if u.ArticleNumber == "" {
				continue
			}
			ok, err := tx.Article.UpdateStatuses(ctx, u, now)
			if err != nil {
				return err
			}
			if ok {
				applied++
			}
		}
		return nil
	})
	if err != nil {
		s.log.Error().Err(err).Int("updates", len(updates)).Msg("Status update failed")
		return 0, err
	}

	s.log.Info().
		Int("received", len(updates)).
		Int("applied", applied).
		Msg("Statuses updated")

	return applied, nil
}

func trimStatusUpdate(u models.StatusUpdate) models.StatusUpdate {
	return models.StatusUpdate{
		ArticleNumber: strings.TrimSpace(u.ArticleNumber),
		MCSStatus:     strings.TrimSpace(u.MCSStatus),
		FGTStatus:     strings.TrimSpace(u.FGTStatus),
		FTStatus:      strings.TrimSpace(u.FTStatus),
		WTStatus:      strings.TrimSpace(u.WTStatus),
	}
}
