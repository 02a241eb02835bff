package entity

import "time"

type ActionOutcome struct {
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
}

type RunState string

const (
	RunStateIdle      RunState = "idle"
	RunStateRunning   RunState = "running"
	RunStateCompleted RunState = "completed"
	RunStateAborted   RunState = "aborted"
)

const (
	ReasonNoActions     = "no actions available"
	ReasonLowPriority   = "no high-priority action"
	ReasonBudgetReached = "step budget exhausted"
	ReasonActionFailed  = "action failed"
	ReasonCancelled     = "cancelled"
)

type GoalResult struct {
	Goal     Goal
	Outcomes []ActionOutcome
	Success  bool
	State    RunState
	Reason   string
}

func (r *GoalResult) Steps() int {
	return len(r.Outcomes)
}

const (
	DefaultExploreMaxActions = 5
	DefaultExploreWait       = 2000 * time.Millisecond
)

type ExploreOptions struct {
	MaxActions int
	WaitTime   time.Duration
}

// WithDefaults fills unset options.
func (o ExploreOptions) WithDefaults() ExploreOptions {
	if o.MaxActions <= 0 {
		o.MaxActions = DefaultExploreMaxActions
	}
	if o.WaitTime <= 0 {
		o.WaitTime = DefaultExploreWait
	}
	return o
}

type ExplorationStep struct {
	Index     int
	Summary   string
	CaptureID string
	URL       string
	Action    ActionType
	Target    Element
	Success   bool
}

type ExplorationLog struct {
	Steps []ExplorationStep
}

func (l *ExplorationLog) Len() int {
	return len(l.Steps)
}
