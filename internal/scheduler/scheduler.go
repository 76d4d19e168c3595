// Package scheduler runs periodic full library rescans.
package scheduler

import (
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/mediadb/mediadb/internal/models"
	"github.com/mediadb/mediadb/internal/repository"
)

// Scheduler triggers a rescan of every registered folder on a cron
// schedule.
type Scheduler struct {
	cron    *cron.Cron
	folders *repository.FolderRepository
	trigger func(*models.Folder)
}

func New(folders *repository.FolderRepository, trigger func(*models.Folder)) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		folders: folders,
		trigger: trigger,
	}
}

// Start registers the rescan job and starts the cron loop. spec uses
// the standard five-field cron syntax.
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.rescanAll); err != nil {
		return fmt.Errorf("invalid rescan schedule %q: %w", spec, err)
	}
	s.cron.Start()
	log.Printf("Scheduler: rescanning all folders on schedule %q", spec)
	return nil
}

// Stop halts the cron loop. Running jobs finish on their own.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) rescanAll() {
	folders, err := s.folders.List()
	if err != nil {
		log.Printf("Scheduler: %v", err)
		return
	}
	log.Printf("Scheduler: scheduled rescan of %d folders", len(folders))
	for i := range folders {
		s.trigger(&folders[i])
	}
}
