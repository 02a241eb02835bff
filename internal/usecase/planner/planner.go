package planner

import (
	"sort"
	"strings"

	"vision-agent/internal/domain/entity"
)

const (
	basePriority        = 50
	highConfidenceBonus = 20
	highConfidenceLevel = 0.9
	keywordBonus        = 30
	buttonBonus         = 10
	interactableBonus   = 10

	reasonHighConfidence = "High confidence detection"
	reasonInteractable   = "Element is interactable"
	reasonMatchesGoal    = "Matches goal: "
	reasonDefault        = "Standard interaction"
)

type Planner struct {
	rules []Rule
}

func New() *Planner {
	return &Planner{rules: DefaultRules}
}

func NewWithRules(rules []Rule) *Planner {
	return &Planner{rules: rules}
}

// Plan ranks the interactable elements by descending priority. Elements
// with equal priority keep their snapshot order. goal may be nil.
func (p *Planner) Plan(elements []entity.Element, goal *entity.Goal) []entity.Action {
	actions := make([]entity.Action, 0, len(elements))
	for _, el := range elements {
		if !el.Interactable {
			continue
		}
		priority, reasoning := Score(el, goal)
		actions = append(actions, entity.Action{
			Type:      ResolveAction(p.rules, el),
			Target:    el,
			Priority:  priority,
			Reasoning: reasoning,
		})
	}

	sort.SliceStable(actions, func(i, j int) bool {
		return actions[i].Priority > actions[j].Priority
	})
	return actions
}

// Score computes the clamped priority of el and the justification behind it.
func Score(el entity.Element, goal *entity.Goal) (int, string) {
	score := basePriority

	highConfidence := el.Confidence > highConfidenceLevel
	if highConfidence {
		score += highConfidenceBonus
	}

	matches := keywordMatches(el.Label, goal)
	score += matches * keywordBonus

	if el.Type == entity.ElementButton {
		score += buttonBonus
	}
	if el.Interactable {
		score += interactableBonus
	}

	var reasons []string
	if highConfidence {
		reasons = append(reasons, reasonHighConfidence)
	}
	if el.Interactable {
		reasons = append(reasons, reasonInteractable)
	}
	if matches > 0 {
		reasons = append(reasons, reasonMatchesGoal+goal.Description)
	}

	reasoning := reasonDefault
	if len(reasons) > 0 {
		reasoning = strings.Join(reasons, "; ")
	}
	return entity.ClampPriority(score), reasoning
}

// keywordMatches counts goal keywords contained in label. Every matching
// keyword counts, duplicates included.
func keywordMatches(label string, goal *entity.Goal) int {
	if goal == nil {
		return 0
	}
	label = strings.ToLower(label)
	n := 0
	for _, kw := range goal.Keywords {
		kw = strings.ToLower(kw)
		if kw != "" && strings.Contains(label, kw) {
			n++
		}
	}
	return n
}
