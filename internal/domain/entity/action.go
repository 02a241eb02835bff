package entity

type ActionType string

const (
	ActionClick     ActionType = "click"
	ActionSubmit    ActionType = "submit"
	ActionNavigate  ActionType = "navigate"
	ActionExpand    ActionType = "expand"
	ActionConfigure ActionType = "configure"
	ActionHover     ActionType = "hover"
	ActionInteract  ActionType = "interact"
)

func (t ActionType) String() string {
	return string(t)
}

const (
	MinPriority = 0
	MaxPriority = 100
)

type Action struct {
	Type      ActionType `json:"type"`
	Target    Element    `json:"target"`
	Priority  int        `json:"priority"`
	Reasoning string     `json:"reasoning"`
}

func ClampPriority(p int) int {
	if p < MinPriority {
		return MinPriority
	}
	if p > MaxPriority {
		return MaxPriority
	}
	return p
}
