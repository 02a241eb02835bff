package cli

import (
	"fmt"

	"vision-agent/internal/di"
	"vision-agent/internal/infrastructure/detector/omniparser"

	"github.com/spf13/cobra"
)

func detectorsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "detectors",
		Short: "List available element detectors",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.LoadConfig()
			container, err := di.NewContainer(cmd.Context(), cfg, app.Options)
			if err != nil {
				return err
			}
			defer container.Close()

			for _, name := range container.Detectors.Names() {
				marker := " "
				if name == cfg.Detector {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, name)
			}
			return nil
		},
	}
}

func healthCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the OmniParser detection server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.LoadConfig()
			client := omniparser.NewClient(omniparser.Config{
				BaseURL: cfg.OmniParserURL,
				Timeout: cfg.OmniParserTimeout,
			})
			health, err := client.Health(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "status=%s model_loaded=%t\n", health.Status, health.ModelLoaded)
			if !health.Ready() {
				return fmt.Errorf("detection server not ready")
			}
			return nil
		},
	}
}
