package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ryu-ryuk/omnidim-go/internal/health"
)

var doctorJSON bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration and API connectivity",
	Long: `Run health checks on the local configuration and the OmniDimension API.

Checks include:
  - Config file presence and permissions
  - API key
  - Base URL
  - API connectivity and authentication

Exit codes:
  0 - All checks passed
  1 - Warnings detected (non-critical)
  2 - Failures detected (critical)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgErr := configErr
		if cfgErr == nil {
			cfgErr = settingsErr
		}
		checker := health.NewChecker(verbose, health.Options{
			Settings:   settings,
			ConfigPath: settings.ConfigPath,
			ConfigErr:  cfgErr,
			Logger:     logger,
			Progress:   cmd.ErrOrStderr(),
		})

		result, err := checker.RunAll(cmd.Context())
		if err != nil {
			return fmt.Errorf("health check failed: %w", err)
		}

		if doctorJSON {
			if err := result.OutputJSON(cmd.OutOrStdout()); err != nil {
				return err
			}
		} else {
			result.OutputText(cmd.OutOrStdout())
		}

		if code := result.ExitCode(); code != 0 {
			os.Exit(code)
		}
		return nil
	},
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(doctorCmd)
}
