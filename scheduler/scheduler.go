// Package scheduler runs the nightly backup job: every season's entries are
// exported to timestamped JSON files so a dead laptop costs at most a day of
// data.
package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ssnnd0/Saxon-Scout/exchange"
	"github.com/ssnnd0/Saxon-Scout/logging"
	"github.com/ssnnd0/Saxon-Scout/storage"
)

type Config struct {
	Enabled  bool
	CronSpec string // e.g. "0 2 * * *" (server local time)
	Dir      string
}

type Scheduler struct {
	c       *cron.Cron
	config  Config
	seasons storage.SeasonStorage
	entries storage.EntryStorage
}

func New(config Config, seasons storage.SeasonStorage, entries storage.EntryStorage) *Scheduler {
	return &Scheduler{
		c:       cron.New(),
		config:  config,
		seasons: seasons,
		entries: entries,
	}
}

// Start registers the cron entry and begins running it. Disabled schedulers
// are a no-op so callers don't need to branch.
func (s *Scheduler) Start() error {
	if !s.config.Enabled {
		logging.Log.Info("BACKUP: scheduler disabled")
		return nil
	}
	if _, err := s.c.AddFunc(s.config.CronSpec, s.RunBackup); err != nil {
		return fmt.Errorf("invalid backup cron spec %q: %w", s.config.CronSpec, err)
	}
	s.c.Start()
	logging.Log.Infof("BACKUP: scheduled with spec %q into %s", s.config.CronSpec, s.config.Dir)
	return nil
}

func (s *Scheduler) Stop() {
	s.c.Stop()
}

// RunBackup exports every season that has entries. Failures are logged per
// season; one bad season doesn't stop the rest.
func (s *Scheduler) RunBackup() {
	ctx := context.Background()

	if err := os.MkdirAll(s.config.Dir, 0755); err != nil {
		logging.Log.Errorf("BACKUP: cannot create backup dir %s: %v", s.config.Dir, err)
		return
	}

	seasons, err := s.seasons.GetAll(ctx)
	if err != nil {
		logging.Log.Errorf("BACKUP: failed to list seasons: %v", err)
		return
	}

	stamp := time.Now().UTC().Format("20060102-150405")
	for _, season := range seasons {
		entries, err := s.entries.FindBySeasonID(ctx, season.ID)
		if err != nil {
			logging.Log.Errorf("BACKUP: failed to load entries for season %s: %v", season.ID, err)
			continue
		}
		if len(entries) == 0 {
			continue
		}

		path := filepath.Join(s.config.Dir, fmt.Sprintf("scouting-%s-%s.json", season.ID, stamp))
		f, err := os.Create(path)
		if err != nil {
			logging.Log.Errorf("BACKUP: failed to create %s: %v", path, err)
			continue
		}
		if err := exchange.ExportJSON(f, entries); err != nil {
			logging.Log.Errorf("BACKUP: failed to write %s: %v", path, err)
		}
		f.Close()
		logging.Log.Infof("BACKUP: wrote %d entries to %s", len(entries), path)
	}
}
