package planner

import (
	"strings"

	"vision-agent/internal/domain/entity"
)

// Rule maps an element onto an action type when Match reports true.
type Rule struct {
	Name   string
	Match  func(el entity.Element) bool
	Action entity.ActionType
}

// DefaultRules is evaluated top to bottom; the first match wins.
var DefaultRules = []Rule{
	{Name: "submit-button", Match: typeWithLabel(entity.ElementButton, "submit"), Action: entity.ActionSubmit},
	{Name: "next-button", Match: typeWithLabel(entity.ElementButton, "next"), Action: entity.ActionNavigate},
	{Name: "button", Match: ofType(entity.ElementButton), Action: entity.ActionClick},
	{Name: "menu-icon", Match: typeWithLabel(entity.ElementIcon, "menu"), Action: entity.ActionExpand},
	{Name: "settings-icon", Match: typeWithLabel(entity.ElementIcon, "settings"), Action: entity.ActionConfigure},
	{Name: "icon", Match: ofType(entity.ElementIcon), Action: entity.ActionClick},
}

// ResolveAction returns the action type for el under rules, defaulting to interact.
func ResolveAction(rules []Rule, el entity.Element) entity.ActionType {
	for _, r := range rules {
		if r.Match(el) {
			return r.Action
		}
	}
	return entity.ActionInteract
}

func ofType(t entity.ElementType) func(entity.Element) bool {
	return func(el entity.Element) bool {
		return el.Type == t
	}
}

func typeWithLabel(t entity.ElementType, needle string) func(entity.Element) bool {
	return func(el entity.Element) bool {
		return el.Type == t && strings.Contains(strings.ToLower(el.Label), needle)
	}
}
