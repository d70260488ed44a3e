package game

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// Supervisor polls every unfinished round so that games keep moving when
// nobody calls CheckTimer.
type Supervisor struct {
	engine   *Engine
	clock    quartz.Clock
	interval time.Duration
	logger   *log.Logger
}

func NewSupervisor(engine *Engine, clock quartz.Clock, interval time.Duration, logger *log.Logger) *Supervisor {
	if clock == nil {
		clock = quartz.NewReal()
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Supervisor{
		engine:   engine,
		clock:    clock,
		interval: interval,
		logger:   logger.WithPrefix("supervisor"),
	}
}

// Run sweeps on every tick until ctx is done.
func (s *Supervisor) Run(ctx context.Context) error {
	ticker := s.clock.NewTicker(s.interval, "supervisor")
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep checks the timer of every unfinished round once and returns how many
// phases were forced.
func (s *Supervisor) Sweep(ctx context.Context) int {
	changed := 0
	for _, round := range s.engine.ActiveRounds() {
		if ctx.Err() != nil {
			return changed
		}
		status, err := s.engine.CheckTimer(ctx, round.ID)
		if err != nil {
			s.logger.Warn("timer check failed", "game_id", round.GameID, "round", round.Number, "error", err)
			continue
		}
		if status.PhaseChanged {
			changed++
			s.logger.Debug("phase forced", "game_id", round.GameID, "round", round.Number, "phase", status.NewPhase)
		}
	}
	return changed
}
