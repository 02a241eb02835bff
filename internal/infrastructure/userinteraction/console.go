package userinteraction

import (
	"context"
	"fmt"
	"io"
	"os"

	"vision-agent/internal/application/port/output"
	"vision-agent/internal/domain/entity"

	"github.com/fatih/color"
)

var _ output.ProgressPort = (*ConsoleProgress)(nil)

type ConsoleProgress struct {
	out io.Writer
}

func NewConsoleProgress() *ConsoleProgress {
	return NewConsoleProgressTo(color.Output)
}

func NewConsoleProgressTo(w io.Writer) *ConsoleProgress {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleProgress{out: w}
}

func (u *ConsoleProgress) ShowIteration(ctx context.Context, iteration, maxIterations int) {
	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Fprintf(u.out, "\n━━━ Step %d/%d ━━━\n", iteration, maxIterations)
}

func (u *ConsoleProgress) ShowAction(ctx context.Context, action entity.Action) {
	icon, name := actionDisplay(action.Type)

	yellow := color.New(color.FgYellow, color.Bold)
	yellow.Fprintf(u.out, "%s %s %s", icon, name, describeTarget(action.Target))
	fmt.Fprintf(u.out, " [priority %d]\n", action.Priority)

	if action.Reasoning != "" {
		dim := color.New(color.Faint)
		dim.Fprintf(u.out, "   %s\n", truncate(action.Reasoning, 120))
	}
}

func (u *ConsoleProgress) ShowOutcome(ctx context.Context, outcome entity.ActionOutcome) {
	if !outcome.Success {
		red := color.New(color.FgRed)
		red.Fprint(u.out, "❌ Failed: ")

		dim := color.New(color.Faint)
		dim.Fprintln(u.out, truncate(outcome.Error, 300))
		return
	}

	green := color.New(color.FgGreen)
	green.Fprintf(u.out, "✓ %s done\n", outcome.Action.Type)
}

func (u *ConsoleProgress) ShowResult(ctx context.Context, result *entity.GoalResult) {
	if result == nil {
		return
	}

	status := color.New(color.FgGreen, color.Bold)
	mark := "✅"
	if !result.Success || result.State == entity.RunStateAborted {
		status = color.New(color.FgRed, color.Bold)
		mark = "⛔"
	}

	status.Fprintf(u.out, "\n%s Goal %q %s: %s\n", mark, result.Goal.Description, result.State, result.Reason)
	fmt.Fprintf(u.out, "   steps: %d/%d, success: %t\n", result.Steps(), result.Goal.MaxSteps, result.Success)
}

func (u *ConsoleProgress) ShowExploration(ctx context.Context, log *entity.ExplorationLog) {
	if log == nil {
		return
	}

	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Fprintf(u.out, "\n🧭 Exploration: %d step(s)\n", log.Len())

	for _, step := range log.Steps {
		mark := "✓"
		if !step.Success {
			mark = "✗"
		}
		fmt.Fprintf(u.out, "%s %d. %s %s\n", mark, step.Index+1, step.Action, describeTarget(step.Target))

		dim := color.New(color.Faint)
		dim.Fprintf(u.out, "   %s\n", truncate(step.Summary, 200))
		if step.URL != "" {
			dim.Fprintf(u.out, "   %s\n", step.URL)
		}
	}
}

func actionDisplay(t entity.ActionType) (string, string) {
	displays := map[entity.ActionType][2]string{
		entity.ActionClick:     {"🖱️", "Click"},
		entity.ActionSubmit:    {"📨", "Submit"},
		entity.ActionNavigate:  {"➡️", "Navigate"},
		entity.ActionExpand:    {"📂", "Expand"},
		entity.ActionConfigure: {"⚙️", "Configure"},
		entity.ActionHover:     {"👆", "Hover"},
		entity.ActionInteract:  {"🔧", "Interact"},
	}

	if display, ok := displays[t]; ok {
		return display[0], display[1]
	}
	return "🔧", string(t)
}

func describeTarget(el entity.Element) string {
	label := el.Label
	if label == "" {
		label = el.ID
	}
	c := el.Center()
	return fmt.Sprintf("%s %q at (%.0f, %.0f)", el.Type, truncate(label, 40), c.X, c.Y)
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
