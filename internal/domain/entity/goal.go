package entity

const (
	DefaultGoalContext  = "general"
	DefaultGoalMaxSteps = 10
)

type Goal struct {
	Description string   `json:"description" yaml:"description"`
	Keywords    []string `json:"keywords" yaml:"keywords"`
	Context     string   `json:"context" yaml:"context"`
	MaxSteps    int      `json:"max_steps" yaml:"max_steps"`
	CurrentStep int      `json:"current_step" yaml:"-"`
}

// Clone returns a copy that shares no slices with g.
func (g Goal) Clone() Goal {
	c := g
	if g.Keywords != nil {
		c.Keywords = append([]string(nil), g.Keywords...)
	}
	return c
}

func (g Goal) Remaining() int {
	return g.MaxSteps - g.CurrentStep
}
