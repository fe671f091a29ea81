package server

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/devfolio/portfolio-api/internal/constants"
)

// SetupMaintenanceTasks schedules the periodic cleanup jobs on the
// maintenance schedule (a cron spec such as "@every 5m" or "*/10 * * * *").
//
// The jobs are:
//  1. Purging expired password reset tokens
//
// Each run gets its own timeout and overlapping runs are skipped.
//
// Returns:
//   - An error if the schedule cannot be parsed
func (s *Server) SetupMaintenanceTasks() error {
	schedule := s.Config.Maintenance.Schedule
	if schedule == "" {
		schedule = constants.DefaultMaintenanceSchedule
	}

	c := cron.New(cron.WithChain(
		cron.Recover(cron.DefaultLogger),
		cron.SkipIfStillRunning(cron.DefaultLogger),
	))

	if _, err := c.AddFunc(schedule, s.runMaintenance); err != nil {
		return fmt.Errorf("invalid maintenance schedule %q: %w", schedule, err)
	}

	c.Start()
	s.scheduler = c

	log.Info().Str("schedule", schedule).Msg("Maintenance tasks scheduled")
	return nil
}

// runMaintenance performs one round of cleanup.
func (s *Server) runMaintenance() {
	ctx, cancel := context.WithTimeout(context.Background(), constants.MaintenanceTaskTimeout)
	defer cancel()

	if _, err := s.services.resetService.PurgeExpiredTokens(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to purge expired reset tokens")
	}
}

// stopMaintenanceTasks stops the scheduler and waits for a running job.
func (s *Server) stopMaintenanceTasks() {
	if s.scheduler == nil {
		return
	}
	<-s.scheduler.Stop().Done()
	s.scheduler = nil
}
