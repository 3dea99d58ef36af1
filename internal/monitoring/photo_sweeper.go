package monitoring

import (
	"context"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"time"

	"github.com/isdelr/budget-manager-be/internal/files"
	"github.com/isdelr/budget-manager-be/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// PhotoReferences lists the photo paths still in use.
type PhotoReferences interface {
	ReferencedPhotoPaths(ctx context.Context) (map[string]struct{}, error)
}

// PhotoSweeper periodically removes stored photos that no user references.
// Files younger than the grace period are kept so an upload in flight is
// never removed before its path is saved.
type PhotoSweeper struct {
	files    *files.Store
	refs     PhotoReferences
	activity services.ActivityServiceProvider
	grace    time.Duration
	now      func() time.Time

	mu   sync.Mutex
	cron *cron.Cron
}

// NewPhotoSweeper creates a new sweeper instance.
func NewPhotoSweeper(store *files.Store, refs PhotoReferences, activity services.ActivityServiceProvider, grace time.Duration) *PhotoSweeper {
	return &PhotoSweeper{
		files:    store,
		refs:     refs,
		activity: activity,
		grace:    grace,
		now:      time.Now,
	}
}

// Start schedules Sweep using a standard five-field cron expression.
func (s *PhotoSweeper) Start(spec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return fmt.Errorf("photo sweeper already running")
	}

	c := cron.New()
	if _, err := c.AddFunc(spec, s.run); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", spec, err)
	}
	c.Start()
	s.cron = c
	log.Info().Str("schedule", spec).Dur("grace", s.grace).Msg("Starting photo sweeper")
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *PhotoSweeper) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c == nil {
		return
	}
	<-c.Stop().Done()
	log.Info().Msg("Stopped photo sweeper")
}

func (s *PhotoSweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	if _, err := s.Sweep(ctx); err != nil {
		log.Error().Err(err).Msg("Photo sweep failed")
	}
}

// Sweep deletes unreferenced files older than the grace period and returns
// how many were removed.
func (s *PhotoSweeper) Sweep(ctx context.Context) (int, error) {
	refs, err := s.refs.ReferencedPhotoPaths(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := s.now().Add(-s.grace)
	var orphans []string
	err = s.files.Walk(func(relPath string, info fs.FileInfo) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		// Photos live at <username>/<file>.
		if strings.Count(relPath, "/") != 1 {
			return nil
		}
		if _, ok := refs[relPath]; ok {
			return nil
		}
		if info.ModTime().After(cutoff) {
			return nil
		}
		orphans = append(orphans, relPath)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("walk upload dir: %w", err)
	}

	removed := 0
	for _, p := range orphans {
		if err := s.files.Delete(p); err != nil {
			log.Warn().Err(err).Str("path", p).Msg("Failed to remove orphaned photo")
			continue
		}
		removed++
	}

	if removed > 0 {
		log.Info().Int("removed", removed).Msg("Photo sweep complete")
		msg := fmt.Sprintf("Removed %d orphaned profile photo(s).", removed)
		if err := s.activity.CreateActivity(ctx, "system.photo_sweep", services.LevelInfo, msg, nil); err != nil {
			log.Warn().Err(err).Msg("Failed to record photo sweep")
		}
	}
	return removed, nil
}
