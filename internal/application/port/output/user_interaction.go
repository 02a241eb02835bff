package output

import (
	"context"

	"vision-agent/internal/domain/entity"
)

type ProgressPort interface {
	ShowIteration(ctx context.Context, iteration, maxIterations int)
	ShowAction(ctx context.Context, action entity.Action)
	ShowOutcome(ctx context.Context, outcome entity.ActionOutcome)
	ShowResult(ctx context.Context, result *entity.GoalResult)
	ShowExploration(ctx context.Context, log *entity.ExplorationLog)
}
