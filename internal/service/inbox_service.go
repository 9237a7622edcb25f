package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/buy-ready-tracker/internal/config"
	"github.com/buy-ready-tracker/internal/models"
	"github.com/buy-ready-tracker/internal/tabular"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// processedDir is the inbox subdirectory queued workbooks are moved to
const processedDir = "processed"

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow)
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// inboxService queues import jobs for workbooks dropped into a directory
type inboxService struct {
	importService ImportService
	dir           string
	schedule      string
	cron          *cron.Cron
	mu            sync.Mutex
	log           zerolog.Logger
}

// newInboxService creates a new InboxService
func newInboxService(importService ImportService, cfg config.ImportConfig, log zerolog.Logger) *inboxService {
	return &inboxService{
		importService: importService,
		dir:           cfg.InboxDir,
		schedule:      cfg.InboxSchedule,
		log:           log.With().Str("service", "inbox").Logger(),
	}
}

// Start schedules periodic scans. It is a no-op when no inbox is configured.
func (s *inboxService) Start() error {
	if s.dir == "" {
		s.log.Info().Msg("Inbox scanner disabled")
		return nil
	}

	c := cron.New(cron.WithParser(cronParser), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(s.schedule, func() {
		if _, err := s.Scan(context.Background()); err != nil {
			s.log.Error().Err(err).Msg("Inbox scan failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid inbox schedule %q: %w", s.schedule, err)
	}

	s.cron = c
	c.Start()
	s.log.Info().Str("dir", s.dir).Str("schedule", s.schedule).Msg("Inbox scanner started")
	return nil
}

// Stop halts the schedule and waits for a running scan
func (s *inboxService) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.log.Info().Msg("Inbox scanner stopped")
}

// Scan queues one import job per recognized workbook in the inbox and
// moves the file under processed/. Files whose kind cannot be inferred
// from the name are left in place.
func (s *inboxService) Scan(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dir == "" {
		return 0, nil
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read inbox: %w", err)
	}

	done := filepath.Join(s.dir, processedDir)
	if err := os.MkdirAll(done, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", done, err)
	}

	queued := 0
	for _, entry := range entries {
		name := entry.Name()
		// Skip directories, non-workbooks and Office lock files
		if entry.IsDir() || !tabular.IsWorkbook(name) || strings.HasPrefix(name, "~$") {
			continue
		}

		kind, err := tabular.DetectKind(name)
		if err != nil {
			s.log.Warn().Str("file", name).Msg("Cannot tell report kind from file name, skipping")
			continue
		}

		dest := filepath.Join(done, time.Now().UTC().Format("20060102T150405")+"_"+name)
		if err := os.Rename(filepath.Join(s.dir, name), dest); err != nil {
			return queued, fmt.Errorf("failed to move %s: %w", name, err)
		}

		job, err := s.importService.CreateImportJob(ctx, &models.ImportRequest{Resource: kind, FileName: name}, dest)
		if err != nil {
			return queued, fmt.Errorf("failed to queue %s: %w", name, err)
		}
		queued++

		s.log.Info().Str("file", name).Str("job_id", job.ID).Str("resource", kind).Msg("Inbox file queued")
	}

	return queued, nil
}
