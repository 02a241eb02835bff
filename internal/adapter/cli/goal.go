package cli

import (
	"context"
	"errors"
	"fmt"

	"vision-agent/internal/di"
	"vision-agent/internal/domain/entity"
	"vision-agent/internal/infrastructure/goalfile"
	"vision-agent/internal/usecase/agent"

	"github.com/spf13/cobra"
)

var (
	ErrGoalNotAchieved = errors.New("goal not achieved")
	ErrInvalidFlag     = errors.New("invalid flag")
)

func goalCmd(app *App, flags *globalFlags) *cobra.Command {
	var (
		desc     string
		keywords []string
		goalCtx  string
		maxSteps int
		file     string
	)

	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Work towards a goal until it is done or the step budget runs out",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.config(cmd, flags)
			url := flags.url

			var goals []entity.Goal
			if file != "" {
				f, err := goalfile.Load(file)
				if err != nil {
					return err
				}
				goals = f.Goals
				if url == "" {
					url = f.URL
				}
			}
			if desc != "" {
				goals = append(goals, entity.Goal{Description: desc})
			}
			if len(goals) == 0 {
				return fmt.Errorf("%w: pass --desc or --goal-file", entity.ErrInvalidGoal)
			}

			for i := range goals {
				applyGoalDefaults(&goals[i], cfg.Goal)
				if cmd.Flags().Changed("keywords") {
					goals[i].Keywords = keywords
				}
				if cmd.Flags().Changed("context") {
					goals[i].Context = goalCtx
				}
				if cmd.Flags().Changed("max-steps") {
					goals[i].MaxSteps = maxSteps
				}
			}

			return app.withAgent(cmd, cfg, url, func(ctx context.Context, _ *di.Container, h *agent.Handle) error {
				return runGoals(ctx, cmd, h, goals)
			})
		},
	}

	cmd.Flags().StringVar(&desc, "desc", "", "Goal description")
	cmd.Flags().StringSliceVar(&keywords, "keywords", nil, "Comma separated goal keywords")
	cmd.Flags().StringVar(&goalCtx, "context", entity.DefaultGoalContext, "Goal context")
	cmd.Flags().IntVar(&maxSteps, "max-steps", entity.DefaultGoalMaxSteps, "Maximum actions for the goal")
	cmd.Flags().StringVar(&file, "goal-file", "", "YAML file with one or more goals")
	return cmd
}

func applyGoalDefaults(g *entity.Goal, defaults entity.Goal) {
	if len(g.Keywords) == 0 {
		g.Keywords = append([]string(nil), defaults.Keywords...)
	}
	if g.Context == "" {
		g.Context = defaults.Context
	}
	if g.MaxSteps == 0 {
		g.MaxSteps = defaults.MaxSteps
	}
}

func runGoals(ctx context.Context, cmd *cobra.Command, h *agent.Handle, goals []entity.Goal) error {
	failed := 0
	for _, g := range goals {
		if err := h.SetGoal(g); err != nil {
			return err
		}
		result, err := h.ExecuteGoal(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d steps\t%s\n", result.State, result.Goal.Description, result.Steps(), result.Reason)
		if !result.Success || result.State == entity.RunStateAborted {
			failed++
		}
		if result.Reason == entity.ReasonCancelled {
			break
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrGoalNotAchieved, failed, len(goals))
	}
	return nil
}
