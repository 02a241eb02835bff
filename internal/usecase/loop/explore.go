package loop

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"vision-agent/internal/application/port/output"
	"vision-agent/internal/domain/entity"
	"vision-agent/internal/usecase/executor"
	"vision-agent/internal/usecase/perception"
)

// exploreTopK bounds the candidates exploration samples from.
const exploreTopK = 3

type ExploreDeps struct {
	Random output.RandomSource
	Sleep  func(ctx context.Context, d time.Duration) error
}

func (d ExploreDeps) withDefaults() ExploreDeps {
	if d.Random == nil {
		d.Random = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if d.Sleep == nil {
		d.Sleep = executor.Sleep
	}
	return d
}

// Explore acts on randomly chosen high-ranked elements without a goal.
// Steps go to the returned log only, not to the action history.
func (l *ExecutionLoop) Explore(ctx context.Context, opts entity.ExploreOptions) *entity.ExplorationLog {
	opts = opts.WithDefaults()
	log := &entity.ExplorationLog{}

	for i := 0; i < opts.MaxActions; i++ {
		if ctx.Err() != nil {
			l.logger.Info("Exploration cancelled", "steps", log.Len())
			break
		}

		snapshot := l.perceiver.Snapshot(ctx)
		actions := l.planner.Plan(snapshot.Interactable(), nil)
		if len(actions) == 0 {
			l.logger.Info("Exploration stopped: no actions available", "step", i)
			break
		}

		k := min(exploreTopK, len(actions))
		chosen := actions[l.explore.Random.Intn(k)]
		if l.progress != nil {
			l.progress.ShowAction(ctx, chosen)
		}

		outcome := l.executor.Execute(ctx, chosen)
		if !outcome.Success {
			l.logger.Warn("Exploration action failed", "step", i, "error", outcome.Error)
		}

		if err := l.explore.Sleep(ctx, opts.WaitTime); err != nil {
			l.logger.Debug("Exploration wait interrupted", "error", err)
		}

		log.Steps = append(log.Steps, entity.ExplorationStep{
			Index:     i,
			Summary:   stepSummary(snapshot, chosen, outcome),
			CaptureID: snapshot.CaptureID(),
			URL:       captureURL(snapshot),
			Action:    chosen.Type,
			Target:    chosen.Target,
			Success:   outcome.Success,
		})
	}

	if l.progress != nil {
		l.progress.ShowExploration(ctx, log)
	}
	return log
}

func stepSummary(s entity.Snapshot, a entity.Action, o entity.ActionOutcome) string {
	status := "ok"
	if !o.Success {
		status = "failed"
	}
	return fmt.Sprintf("%s %q (priority %d, %s) on %s",
		a.Type, a.Target.Label, a.Priority, status, perception.Summarize(s))
}

func captureURL(s entity.Snapshot) string {
	if s.Capture == nil {
		return ""
	}
	return s.Capture.URL
}
