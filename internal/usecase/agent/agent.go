package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"vision-agent/internal/application/port/input"
	"vision-agent/internal/application/port/output"
	"vision-agent/internal/domain/entity"
	"vision-agent/internal/usecase/executor"
	"vision-agent/internal/usecase/goal"
	"vision-agent/internal/usecase/history"
	"vision-agent/internal/usecase/loop"
	"vision-agent/internal/usecase/perception"
	"vision-agent/internal/usecase/planner"
)

var _ input.AgentService = (*Agent)(nil)

type Config struct {
	Executor   executor.Config
	Perception perception.Config
	Explore    loop.ExploreDeps
}

func DefaultConfig() Config {
	return Config{
		Executor:   executor.DefaultConfig(),
		Perception: perception.DefaultConfig(),
	}
}

// Agent owns one actuation surface for its whole lifetime and runs goals
// and explorations against it, one at a time.
type Agent struct {
	surface   output.SurfacePort
	perceiver *perception.Perceiver
	planner   *planner.Planner
	executor  *executor.UseCase
	tracker   *goal.Tracker
	history   *history.Log
	loop      *loop.ExecutionLoop
	logger    output.LoggerPort

	closeOnce sync.Once
	closed    atomic.Bool
	closeErr  error
}

func New(
	surface output.SurfacePort,
	detector output.DetectorPort,
	sink output.HistorySink,
	logger output.LoggerPort,
	progress output.ProgressPort,
	cfg Config,
) *Agent {
	a := &Agent{
		surface: surface,
		planner: planner.New(),
		tracker: goal.NewTracker(),
		history: history.New(sink, logger.Named("history")),
		logger:  logger,
	}
	a.perceiver = perception.New(surface, detector, logger.Named("perception"), cfg.Perception)
	a.executor = executor.New(surface, logger.Named("executor"), cfg.Executor)
	a.loop = loop.New(loop.Deps{
		Perceiver: a.perceiver,
		Planner:   a.planner,
		Executor:  a.executor,
		Tracker:   a.tracker,
		History:   a.history,
		Logger:    logger.Named("loop"),
		Progress:  progress,
		Explore:   cfg.Explore,
	})
	return a
}

func (a *Agent) SetGoal(g entity.Goal) error {
	if a.closed.Load() {
		return entity.ErrAgentClosed
	}
	if err := a.tracker.SetGoal(g); err != nil {
		return err
	}
	current, _ := a.tracker.Current()
	a.logger.Info("Goal set",
		"description", current.Description,
		"keywords", current.Keywords,
		"context", current.Context,
		"maxSteps", current.MaxSteps)
	return nil
}

func (a *Agent) CurrentGoal() (entity.Goal, bool) {
	return a.tracker.Current()
}

func (a *Agent) State() entity.RunState {
	return a.loop.State()
}

func (a *Agent) ExecuteGoal(ctx context.Context) (*entity.GoalResult, error) {
	if a.closed.Load() {
		return nil, entity.ErrAgentClosed
	}
	return a.loop.Run(ctx)
}

func (a *Agent) AutonomousExplore(ctx context.Context, opts entity.ExploreOptions) (*entity.ExplorationLog, error) {
	if a.closed.Load() {
		return nil, entity.ErrAgentClosed
	}
	opts = opts.WithDefaults()
	a.logger.Info("Exploration started", "maxActions", opts.MaxActions, "waitTime", opts.WaitTime)
	return a.loop.Explore(ctx, opts), nil
}

// IdentifyAndClickIcon clicks the first interactable element whose label
// contains name, preferring icons. The outcome is recorded in the history.
func (a *Agent) IdentifyAndClickIcon(ctx context.Context, name string) (entity.ActionOutcome, error) {
	if a.closed.Load() {
		return entity.ActionOutcome{}, entity.ErrAgentClosed
	}
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return entity.ActionOutcome{}, fmt.Errorf("%w: empty icon name", entity.ErrElementNotFound)
	}

	snapshot := a.perceiver.Snapshot(ctx)
	target, ok := findByLabel(snapshot.Interactable(), needle)
	if !ok {
		a.logger.Warn("Icon not found", "name", name, "elements", len(snapshot.Elements))
		return entity.ActionOutcome{}, fmt.Errorf("%w: no interactable element labelled %q", entity.ErrElementNotFound, name)
	}

	priority, _ := planner.Score(target, nil)
	outcome := a.executor.Execute(ctx, entity.Action{
		Type:      entity.ActionClick,
		Target:    target,
		Priority:  priority,
		Reasoning: "Requested icon: " + name,
	})
	a.history.Append(outcome)
	return outcome, nil
}

func findByLabel(elements []entity.Element, needle string) (entity.Element, bool) {
	var fallback *entity.Element
	for i, el := range elements {
		if !strings.Contains(strings.ToLower(el.Label), needle) {
			continue
		}
		if el.Type == entity.ElementIcon {
			return el, true
		}
		if fallback == nil {
			fallback = &elements[i]
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return entity.Element{}, false
}

func (a *Agent) ActionHistory() []entity.ActionOutcome {
	return a.history.All()
}

func (a *Agent) Navigate(ctx context.Context, url string) error {
	if a.closed.Load() {
		return entity.ErrAgentClosed
	}
	if err := a.surface.Navigate(ctx, url); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

// Cleanup releases the surface. It is safe to call more than once.
func (a *Agent) Cleanup() error {
	a.closeOnce.Do(func() {
		a.closed.Store(true)
		var errs []error
		if err := a.history.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close history sink: %w", err))
		}
		if err := a.surface.Release(); err != nil {
			errs = append(errs, fmt.Errorf("release surface: %w", err))
		}
		a.closeErr = errors.Join(errs...)
		a.logger.Info("Agent cleaned up", "history", a.history.Len())
	})
	return a.closeErr
}
