package goal

import (
	"fmt"
	"strings"

	"vision-agent/internal/domain/entity"
)

// Tracker holds the active goal of one agent and its step counter.
type Tracker struct {
	goal *entity.Goal
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// SetGoal replaces any active goal and restarts the step counter.
func (t *Tracker) SetGoal(g entity.Goal) error {
	normalized, err := Normalize(g)
	if err != nil {
		return err
	}
	t.goal = &normalized
	return nil
}

// Normalize validates g and fills defaults. Keywords are lowercased and
// blank ones dropped; duplicates are kept because each match scores.
func Normalize(g entity.Goal) (entity.Goal, error) {
	g.Description = strings.TrimSpace(g.Description)
	if g.Description == "" {
		return entity.Goal{}, fmt.Errorf("%w: description is required", entity.ErrInvalidGoal)
	}

	keywords := make([]string, 0, len(g.Keywords))
	for _, kw := range g.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			keywords = append(keywords, kw)
		}
	}
	g.Keywords = keywords

	if strings.TrimSpace(g.Context) == "" {
		g.Context = entity.DefaultGoalContext
	}
	if g.MaxSteps < 1 {
		g.MaxSteps = entity.DefaultGoalMaxSteps
	}
	g.CurrentStep = 0
	return g, nil
}

func (t *Tracker) HasGoal() bool {
	return t.goal != nil
}

// Current returns a copy of the active goal.
func (t *Tracker) Current() (entity.Goal, bool) {
	if t.goal == nil {
		return entity.Goal{}, false
	}
	return t.goal.Clone(), true
}

// Exhausted reports whether the step budget is used up.
func (t *Tracker) Exhausted() bool {
	return t.goal != nil && t.goal.CurrentStep >= t.goal.MaxSteps
}

// Advance increments the step counter, never past MaxSteps. Only the
// execution loop calls it.
func (t *Tracker) Advance() int {
	if t.goal == nil {
		return 0
	}
	if t.goal.CurrentStep < t.goal.MaxSteps {
		t.goal.CurrentStep++
	}
	return t.goal.CurrentStep
}

func (t *Tracker) Clear() {
	t.goal = nil
}
