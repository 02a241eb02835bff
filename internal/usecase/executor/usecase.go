package executor

import (
	"context"
	"fmt"
	"time"

	"vision-agent/internal/application/port/output"
	"vision-agent/internal/domain/entity"
)

const defaultSettleDelay = 1 * time.Second

type Config struct {
	SettleDelay time.Duration
	Now         func() time.Time
	Sleep       func(ctx context.Context, d time.Duration) error
}

func DefaultConfig() Config {
	return Config{
		SettleDelay: defaultSettleDelay,
		Now:         time.Now,
		Sleep:       Sleep,
	}
}

// UseCase performs one planned action against the surface and reports
// what happened. Dispatch failures come back as failed outcomes.
type UseCase struct {
	surface output.SurfacePort
	logger  output.LoggerPort
	cfg     Config
}

func New(surface output.SurfacePort, logger output.LoggerPort, cfg Config) *UseCase {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Sleep == nil {
		cfg.Sleep = Sleep
	}
	if cfg.SettleDelay < 0 {
		cfg.SettleDelay = 0
	}
	return &UseCase{
		surface: surface,
		logger:  logger,
		cfg:     cfg,
	}
}

func (uc *UseCase) Execute(ctx context.Context, action entity.Action) entity.ActionOutcome {
	point := action.Target.Center()

	uc.logger.Info("Executing action",
		"type", action.Type,
		"target", action.Target.ID,
		"label", action.Target.Label,
		"x", point.X,
		"y", point.Y,
		"priority", action.Priority)

	err := uc.dispatch(ctx, action, point)

	outcome := entity.ActionOutcome{
		Timestamp: uc.cfg.Now(),
		Action:    action,
		Success:   err == nil,
	}
	if err != nil {
		outcome.Error = err.Error()
		uc.logger.Error("Action failed", "type", action.Type, "target", action.Target.ID, "error", err)
	} else {
		uc.logger.Debug("Action completed", "type", action.Type, "target", action.Target.ID)
	}

	if uc.cfg.SettleDelay > 0 {
		if err := uc.cfg.Sleep(ctx, uc.cfg.SettleDelay); err != nil {
			uc.logger.Debug("Settle delay interrupted", "error", err)
		}
	}
	return outcome
}

func (uc *UseCase) dispatch(ctx context.Context, action entity.Action, point entity.Point) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic during %s: %v", entity.ErrActuationFailure, action.Type, r)
		}
	}()

	switch action.Type {
	case entity.ActionClick, entity.ActionSubmit, entity.ActionNavigate, entity.ActionExpand, entity.ActionConfigure:
		if err := uc.surface.Click(ctx, point.X, point.Y); err != nil {
			return fmt.Errorf("%w: click at (%.0f,%.0f): %v", entity.ErrActuationFailure, point.X, point.Y, err)
		}
	case entity.ActionHover:
		if err := uc.surface.Move(ctx, point.X, point.Y); err != nil {
			return fmt.Errorf("%w: move to (%.0f,%.0f): %v", entity.ErrActuationFailure, point.X, point.Y, err)
		}
	default:
		uc.logger.Warn("No dispatch for action type", "type", action.Type, "target", action.Target.ID)
	}
	return nil
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
