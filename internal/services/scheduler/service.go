// Package scheduler triggers report runs on a cron cadence. It is optional:
// when disabled the service is inert and the report pipeline is driven only
// by HTTP triggers.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bobmcallan/giftscan/internal/common"
	"github.com/bobmcallan/giftscan/internal/interfaces"
	"github.com/bobmcallan/giftscan/internal/models"
)

// Service schedules a recurring discounted-stock report to a fixed chat.
type Service struct {
	store  interfaces.SymbolStore
	runs   interfaces.RunScheduler
	logger *common.Logger
	config common.SchedulerConfig
	cron   *cron.Cron
}

// NewService creates the cron scheduler.
func NewService(store interfaces.SymbolStore, runs interfaces.RunScheduler, logger *common.Logger, config common.SchedulerConfig) *Service {
	return &Service{
		store:  store,
		runs:   runs,
		logger: logger,
		config: config,
		cron:   cron.New(),
	}
}

// Start registers the cron entry and begins the schedule. Disabled
// configuration is not an error.
func (s *Service) Start() error {
	if !s.config.Enabled {
		s.logger.Debug().Msg("Report scheduler disabled")
		return nil
	}
	if s.config.ChatID == "" {
		return fmt.Errorf("scheduler enabled but no chat_id configured")
	}

	if _, err := s.cron.AddFunc(s.config.Cron, s.fire); err != nil {
		return fmt.Errorf("invalid scheduler cron expression %q: %w", s.config.Cron, err)
	}

	s.cron.Start()
	s.logger.Info().
		Str("cron", s.config.Cron).
		Bool("only_discount", s.config.OnlyDiscount).
		Msg("Report scheduler started")
	return nil
}

// Stop halts the schedule and waits for a firing entry to finish enqueueing.
func (s *Service) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("Report scheduler stopped")
}

// fire resolves the symbol universe and enqueues one run. Errors are logged
// only — the next cron tick gets a fresh chance.
func (s *Service) fire() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	records, err := s.store.List(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Scheduled report: symbol store read failed")
		return
	}

	run := &models.Run{
		Scope:          models.RunScopeAll,
		ChatID:         s.config.ChatID,
		OnlyDiscounted: s.config.OnlyDiscount,
		Symbols:        records,
	}
	if err := s.runs.Schedule(run); err != nil {
		s.logger.Warn().Err(err).Msg("Scheduled report: run queue rejected run")
	}
}
