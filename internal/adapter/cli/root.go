package cli

import (
	"context"
	"fmt"

	"vision-agent/internal/di"
	"vision-agent/internal/infrastructure/env"
	"vision-agent/internal/usecase/agent"

	"github.com/spf13/cobra"
)

// App carries what the commands need to build a container. Tests swap
// Options for in-memory collaborators.
type App struct {
	LoadConfig func() di.Config
	Options    di.Options
}

func DefaultApp() *App {
	return &App{
		LoadConfig: func() di.Config {
			return di.LoadConfig(env.NewEnvService())
		},
	}
}

type globalFlags struct {
	url      string
	detector string
	headless bool
}

func NewRoot(app *App) *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:           "vision-agent",
		Short:         "Goal-driven autonomous actions on a visual interface",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.url, "url", "", "Page to open before acting")
	root.PersistentFlags().StringVar(&flags.detector, "detector", "", "Element detector (dom, omniparser, vision)")
	root.PersistentFlags().BoolVar(&flags.headless, "headless", false, "Run the browser without a window")

	root.AddCommand(
		goalCmd(app, &flags),
		exploreCmd(app, &flags),
		clickIconCmd(app, &flags),
		detectorsCmd(app),
		healthCmd(app),
	)
	return root
}

func (a *App) config(cmd *cobra.Command, flags *globalFlags) di.Config {
	cfg := a.LoadConfig()
	if flags == nil {
		return cfg
	}
	if flags.detector != "" {
		cfg.Detector = flags.detector
	}
	if cmd.Flags().Changed("headless") {
		cfg.Browser.Headless = flags.headless
	}
	return cfg
}

// withAgent starts one agent, opens url if given and hands it to fn. The
// agent and container are torn down on every path.
func (a *App) withAgent(cmd *cobra.Command, cfg di.Config, url string, fn func(ctx context.Context, c *di.Container, h *agent.Handle) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	container, err := di.NewContainer(ctx, cfg, a.Options)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer container.Close()

	handle, err := container.Host.Start(ctx)
	if err != nil {
		return fmt.Errorf("start agent: %w", err)
	}

	if url != "" {
		if err := handle.Navigate(ctx, url); err != nil {
			return fmt.Errorf("open %s: %w", url, err)
		}
	}
	return fn(ctx, container, handle)
}
