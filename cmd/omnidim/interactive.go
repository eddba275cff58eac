package main

import (
	"github.com/spf13/cobra"

	"github.com/ryu-ryuk/omnidim-go/internal/interactive"
)

var interactiveCmd = &cobra.Command{
	Use:     "interactive",
	Aliases: []string{"i"},
	Short:   "Open the interactive menu",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive(cmd)
	},
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}

// runInteractive starts the menu. A missing API key is not fatal here since
// the key can be set from the Configuration menu.
func runInteractive(cmd *cobra.Command) error {
	if settingsErr != nil {
		return settingsErr
	}
	opts := interactive.Options{
		Settings:   settings,
		ConfigPath: settings.ConfigPath,
		Out:        cmd.OutOrStdout(),
		Format:     outFormat,
		Logger:     logger,
	}
	if settings.APIKey != "" {
		client, err := newClient()
		if err != nil {
			return err
		}
		opts.Client = client
	}
	return interactive.New(opts).Run(cmd.Context())
}
