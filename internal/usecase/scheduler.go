package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"NewsIntel/internal/ports"
)

// Scheduler wires cycle and retrain drivers to their use cases. A tick that
// fires while the previous cycle is still running is skipped, not queued.
type Scheduler struct {
	cycleDriver   ports.CycleDriver
	retrainDriver ports.CycleDriver
	pipeline      *Pipeline
	trainer       *Trainer
	logger        *slog.Logger
}

// NewScheduler returns a helper to start/stop the recurring jobs. The retrain
// driver may be nil when periodic retraining is disabled.
func NewScheduler(cycleDriver, retrainDriver ports.CycleDriver, pipeline *Pipeline, trainer *Trainer, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cycleDriver:   cycleDriver,
		retrainDriver: retrainDriver,
		pipeline:      pipeline,
		trainer:       trainer,
		logger:        logger,
	}
}

// Start registers both jobs with their drivers.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.cycleDriver == nil || s.pipeline == nil {
		return nil
	}

	cycle := func(trigger time.Time) {
		_, err := s.pipeline.RunCycle(ctx, trigger)
		switch {
		case errors.Is(err, ErrCycleActive):
			s.logger.Warn("tick skipped, previous cycle still running")
		case errors.Is(err, context.Canceled):
			// Shutdown in progress.
		case err != nil:
			s.logger.Error("cycle failed", "error", err)
		}
	}
	if err := s.cycleDriver.Start(ctx, cycle); err != nil {
		return err
	}

	if s.retrainDriver == nil || s.trainer == nil {
		return nil
	}
	retrain := func(trigger time.Time) {
		if _, err := s.trainer.Retrain(ctx, trigger); err != nil {
			s.logger.Error("periodic retrain failed", "error", err)
		}
	}
	return s.retrainDriver.Start(ctx, retrain)
}

// Stop gracefully tears down the underlying drivers.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.retrainDriver != nil {
		if err := s.retrainDriver.Stop(ctx); err != nil {
			return err
		}
	}
	if s.cycleDriver == nil {
		return nil
	}
	return s.cycleDriver.Stop(ctx)
}
