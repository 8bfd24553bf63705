// Package runner executes report runs in the background. Schedule hands a
// run to a buffered queue and returns immediately; a processor goroutine
// drains the queue. Runs cannot be cancelled and completion is not reported
// back to the caller.
package runner

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/giftscan/internal/common"
	"github.com/bobmcallan/giftscan/internal/interfaces"
	"github.com/bobmcallan/giftscan/internal/models"
)

// AnalyzerFactory builds an analyzer bound to one run's chat destination and
// filter. A fresh analyzer per run keeps runs independent when they
// interleave on a shared channel.
type AnalyzerFactory func(chatID string, onlyDiscounted bool) interfaces.StockAnalyzer

// Service is the background run queue.
type Service struct {
	factory AnalyzerFactory
	logger  *common.Logger
	queue   chan *models.Run

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewService creates a run queue with the given pending-run buffer size.
func NewService(factory AnalyzerFactory, logger *common.Logger, queueSize int) *Service {
	if queueSize <= 0 {
		queueSize = 16
	}
	return &Service{
		factory: factory,
		logger:  logger,
		queue:   make(chan *models.Run, queueSize),
	}
}

// safeGo launches a goroutine with panic recovery and logging.
func (s *Service) safeGo(name string, fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error().
					Str("goroutine", name).
					Str("panic", fmt.Sprintf("%v", r)).
					Str("stack", string(debug.Stack())).
					Msg("Recovered from panic in runner goroutine")
			}
		}()
		fn()
	}()
}

// Start launches the processor loop. Safe to call multiple times — stops any
// existing loop before starting.
func (s *Service) Start() {
	if s.cancel != nil {
		s.Stop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.safeGo("run-processor", func() { s.processLoop(ctx) })

	s.logger.Info().Int("queue_size", cap(s.queue)).Msg("Run queue started")
}

// Stop cancels the processor loop and waits for it to finish the current run.
// Pending runs still in the queue are dropped.
func (s *Service) Stop() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.wg.Wait()
	s.logger.Info().Msg("Run queue stopped")
}

// Schedule enqueues a run and returns immediately. Returns an error only when
// the queue is full.
func (s *Service) Schedule(run *models.Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()[:8]
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	select {
	case s.queue <- run:
		s.logger.Info().
			Str("run_id", run.ID).
			Str("scope", run.Scope).
			Str("industry", run.Industry).
			Int("symbols", len(run.Symbols)).
			Bool("only_discounted", run.OnlyDiscounted).
			Msg("Report run scheduled")
		return nil
	default:
		return fmt.Errorf("run queue is full")
	}
}

// processLoop drains the queue until the context is cancelled. Runs execute
// strictly sequentially within this loop.
func (s *Service) processLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case run := <-s.queue:
			s.execute(ctx, run)
		}
	}
}

// execute runs one report. Failures are logged only — the triggering request
// has long since returned.
func (s *Service) execute(ctx context.Context, run *models.Run) {
	start := time.Now()

	analyzer := s.factory(run.ChatID, run.OnlyDiscounted)
	if err := analyzer.Analyze(ctx, run.Symbols); err != nil {
		s.logger.Warn().
			Str("run_id", run.ID).
			Dur("elapsed", time.Since(start)).
			Err(err).
			Msg("Report run failed")
		return
	}

	s.logger.Info().
		Str("run_id", run.ID).
		Int("symbols", len(run.Symbols)).
		Dur("elapsed", time.Since(start)).
		Msg("Report run completed")
}

// Compile-time check
var _ interfaces.RunScheduler = (*Service)(nil)
