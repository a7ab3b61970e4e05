// Package jobs runs background cron tasks.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/upro/upro-api/internal/domain/catalog"
)

// CatalogRefresher reloads the cached catalog listing
type CatalogRefresher interface {
	RefreshCache(ctx context.Context) ([]*catalog.Item, error)
}

// Scheduler owns the cron instance
type Scheduler struct {
	cron    *cron.Cron
	catalog CatalogRefresher
	spec    string
}

// NewScheduler creates scheduler running in UTC. spec is a cron expression
// or descriptor such as "@every 10m".
func NewScheduler(catalog CatalogRefresher, spec string) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		catalog: catalog,
		spec:    spec,
	}
}

// Start registers jobs and starts the cron loop
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.refreshCatalog(ctx) }); err != nil {
		return fmt.Errorf("schedule catalog refresh %q: %w", s.spec, err)
	}

	s.cron.Start()
	log.Info().Str("catalog_refresh", s.spec).Msg("Scheduler started")
	return nil
}

func (s *Scheduler) refreshCatalog(ctx context.Context) {
	items, err := s.catalog.RefreshCache(ctx)
	if err != nil {
		log.Error().Err(err).Msg("[CRON] catalog refresh failed")
		return
	}
	log.Debug().Int("items", len(items)).Msg("[CRON] catalog cache refreshed")
}

// Stop waits for running jobs to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info().Msg("Scheduler stopped")
}
