package loop

import (
	"context"

	"vision-agent/internal/application/port/output"
	"vision-agent/internal/domain/entity"
	"vision-agent/internal/usecase/goal"
	"vision-agent/internal/usecase/history"
	"vision-agent/internal/usecase/planner"
)

// MinViablePriority is the floor below which the top candidate is not acted on.
const MinViablePriority = 30

type Snapshotter interface {
	Snapshot(ctx context.Context) entity.Snapshot
}

type Planner interface {
	Plan(elements []entity.Element, goal *entity.Goal) []entity.Action
}

type Executor interface {
	Execute(ctx context.Context, action entity.Action) entity.ActionOutcome
}

// ExecutionLoop drives plan, act and reassess iterations for the active
// goal of a single agent. Iterations never overlap.
type ExecutionLoop struct {
	perceiver Snapshotter
	planner   Planner
	executor  Executor
	tracker   *goal.Tracker
	history   *history.Log
	logger    output.LoggerPort
	progress  output.ProgressPort
	explore   ExploreDeps

	state entity.RunState
}

type Deps struct {
	Perceiver Snapshotter
	Planner   Planner
	Executor  Executor
	Tracker   *goal.Tracker
	History   *history.Log
	Logger    output.LoggerPort
	Progress  output.ProgressPort
	Explore   ExploreDeps
}

func New(d Deps) *ExecutionLoop {
	if d.Planner == nil {
		d.Planner = planner.New()
	}
	return &ExecutionLoop{
		perceiver: d.Perceiver,
		planner:   d.Planner,
		executor:  d.Executor,
		tracker:   d.Tracker,
		history:   d.History,
		logger:    d.Logger,
		progress:  d.Progress,
		explore:   d.Explore.withDefaults(),
		state:     entity.RunStateIdle,
	}
}

func (l *ExecutionLoop) State() entity.RunState {
	return l.state
}

// Run executes the active goal until it completes or aborts. It fails only
// with ErrNoGoalSet, in which case nothing is mutated.
func (l *ExecutionLoop) Run(ctx context.Context) (*entity.GoalResult, error) {
	if !l.tracker.HasGoal() {
		return nil, entity.ErrNoGoalSet
	}

	l.state = entity.RunStateRunning
	var outcomes []entity.ActionOutcome
	finish := func(state entity.RunState, reason string) *entity.GoalResult {
		l.state = state
		g, _ := l.tracker.Current()
		result := &entity.GoalResult{
			Goal:     g,
			Outcomes: outcomes,
			Success:  allSucceeded(outcomes),
			State:    state,
			Reason:   reason,
		}
		l.logger.Info("Goal run finished",
			"goal", g.Description,
			"state", state,
			"reason", reason,
			"steps", len(outcomes),
			"success", result.Success)
		if l.progress != nil {
			l.progress.ShowResult(ctx, result)
		}
		return result
	}

	for {
		if l.tracker.Exhausted() {
			return finish(entity.RunStateCompleted, entity.ReasonBudgetReached), nil
		}
		if ctx.Err() != nil {
			return finish(entity.RunStateAborted, entity.ReasonCancelled), nil
		}

		g, _ := l.tracker.Current()
		l.logger.Debug("Starting iteration", "step", g.CurrentStep+1, "maxSteps", g.MaxSteps)
		if l.progress != nil {
			l.progress.ShowIteration(ctx, g.CurrentStep+1, g.MaxSteps)
		}

		snapshot := l.perceiver.Snapshot(ctx)
		actions := l.planner.Plan(snapshot.Interactable(), &g)
		if len(actions) == 0 {
			return finish(entity.RunStateCompleted, entity.ReasonNoActions), nil
		}

		top := actions[0]
		if top.Priority < MinViablePriority {
			l.logger.Info("Top candidate below priority floor", "priority", top.Priority, "target", top.Target.ID)
			return finish(entity.RunStateCompleted, entity.ReasonLowPriority), nil
		}
		if ctx.Err() != nil {
			return finish(entity.RunStateAborted, entity.ReasonCancelled), nil
		}

		if l.progress != nil {
			l.progress.ShowAction(ctx, top)
		}
		outcome := l.executor.Execute(ctx, top)
		l.history.Append(outcome)
		outcomes = append(outcomes, outcome)
		if l.progress != nil {
			l.progress.ShowOutcome(ctx, outcome)
		}

		if !outcome.Success {
			return finish(entity.RunStateAborted, entity.ReasonActionFailed), nil
		}
		l.tracker.Advance()
	}
}

func allSucceeded(outcomes []entity.ActionOutcome) bool {
	for _, o := range outcomes {
		if !o.Success {
			return false
		}
	}
	return true
}
