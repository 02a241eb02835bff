package input

import (
	"context"

	"vision-agent/internal/domain/entity"
)

// AgentService is the host-facing surface of one autonomous agent.
type AgentService interface {
	SetGoal(goal entity.Goal) error
	ExecuteGoal(ctx context.Context) (*entity.GoalResult, error)
	AutonomousExplore(ctx context.Context, opts entity.ExploreOptions) (*entity.ExplorationLog, error)
	IdentifyAndClickIcon(ctx context.Context, name string) (entity.ActionOutcome, error)
	ActionHistory() []entity.ActionOutcome
	Cleanup() error
}
