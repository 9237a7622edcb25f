package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/buy-ready-tracker/internal/models"
	"github.com/buy-ready-tracker/internal/repository"
	"github.com/rs/zerolog"
)

// dropService is the concrete implementation of DropService
type dropService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// newDropService creates a new DropService
func newDropService(repos *repository.Repositories, log zerolog.Logger) *dropService {
	return &dropService{
		repos: repos,
		log:   log.With().Str("service", "drop").Logger(),
	}
}

// List returns the drop records matching the filter, ordered by season
func (s *dropService) List(ctx context.Context, filter models.DropFilter) ([]*models.Drop, error) {
	season := strings.TrimSpace(filter.Season)
	sport := strings.ToUpper(strings.TrimSpace(filter.SportsCategory))
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	drops := []*models.Drop{}
	err := s.repos.Drop.StreamAll(ctx, func(d *models.Drop) error {
		if season != "" && d.Season != season {
			return nil
		}
		if sport != "" && d.SportsCategory != sport {
			return nil
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(d.ArticleNumber), search) &&
			!strings.Contains(strings.ToLower(d.ArticleName), search) &&
			!strings.Contains(strings.ToLower(d.Model), search) {
			return nil
		}
		drops = append(drops, d)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load drops: %w", err)
	}
	return drops, nil
}

// Seasons returns the known seasons
func (s *dropService) Seasons(ctx context.Context) ([]string, error) {
	return s.repos.Drop.Seasons(ctx)
}
