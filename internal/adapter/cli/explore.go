package cli

import (
	"context"
	"fmt"

	"vision-agent/internal/di"
	"vision-agent/internal/domain/entity"
	"vision-agent/internal/usecase/agent"

	"github.com/spf13/cobra"
)

func exploreCmd(app *App, flags *globalFlags) *cobra.Command {
	var opts entity.ExploreOptions

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Act on randomly chosen top-ranked elements without a goal",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("max-actions") && opts.MaxActions < 1 {
				return fmt.Errorf("%w: --max-actions must be at least 1, got %d", ErrInvalidFlag, opts.MaxActions)
			}
			if cmd.Flags().Changed("wait") && opts.WaitTime <= 0 {
				return fmt.Errorf("%w: --wait must be positive, got %s", ErrInvalidFlag, opts.WaitTime)
			}

			cfg := app.config(cmd, flags)
			if !cmd.Flags().Changed("max-actions") {
				opts.MaxActions = cfg.Explore.MaxActions
			}
			if !cmd.Flags().Changed("wait") {
				opts.WaitTime = cfg.Explore.WaitTime
			}

			return app.withAgent(cmd, cfg, flags.url, func(ctx context.Context, _ *di.Container, h *agent.Handle) error {
				log, err := h.AutonomousExplore(ctx, opts)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "explored %d step(s)\n", log.Len())
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&opts.MaxActions, "max-actions", entity.DefaultExploreMaxActions, "Number of actions to take")
	cmd.Flags().DurationVar(&opts.WaitTime, "wait", entity.DefaultExploreWait, "Pause after each action")
	return cmd
}

func clickIconCmd(app *App, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "click-icon <name>",
		Short: "Click the element whose label matches name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.config(cmd, flags)
			return app.withAgent(cmd, cfg, flags.url, func(ctx context.Context, _ *di.Container, h *agent.Handle) error {
				outcome, err := h.IdentifyAndClickIcon(ctx, args[0])
				if err != nil {
					return err
				}
				if !outcome.Success {
					return fmt.Errorf("click %q: %s", args[0], outcome.Error)
				}
				c := outcome.Action.Target.Center()
				fmt.Fprintf(cmd.OutOrStdout(), "clicked %s %q at (%.0f, %.0f)\n",
					outcome.Action.Target.Type, outcome.Action.Target.Label, c.X, c.Y)
				return nil
			})
		},
	}
}
