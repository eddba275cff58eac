package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	omnidim "github.com/ryu-ryuk/omnidim-go"
	"github.com/ryu-ryuk/omnidim-go/internal/config"
	"github.com/ryu-ryuk/omnidim-go/internal/output"
)

var (
	configShow   bool
	configSetKey string
	configSetURL string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change the stored configuration",
	Long: `Show or change the configuration file.

The API key is resolved from --api-key, then OMNIDIM_API_KEY, then
OMNIDIMENSION_API_KEY, then the config file. Values in the file may refer
to environment variables as ${NAME}.`,
	Example: `  omnidim config --set-key sk-...
  omnidim config --set-url https://backend.omnidim.io/api/v1
  omnidim config --show`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		path := settings.ConfigPath

		if configSetKey != "" || configSetURL != "" {
			key := strings.TrimSpace(configSetKey)
			if configSetKey != "" {
				if _, err := omnidim.NewClient(key); err != nil {
					return err
				}
			}
			err := config.Update(path, func(c *config.Config) error {
				if key != "" {
					c.APIKey = key
				}
				if configSetURL != "" {
					c.BaseURL = strings.TrimSpace(configSetURL)
				}
				return nil
			})
			if err != nil {
				return fmt.Errorf("saving config: %w", err)
			}
			output.Success(out, "Configuration saved to %s", path)
			if !configShow {
				return nil
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if settings, err = config.Resolve(cfg, config.Overrides{APIKey: apiKeyFlag, BaseURL: baseURLFlag}, nil); err != nil {
				return err
			}
			settings.ConfigPath = path
		}

		if !configShow && configSetKey == "" && configSetURL == "" {
			return cmd.Help()
		}
		return showConfig(cmd)
	},
}

func showConfig(cmd *cobra.Command) error {
	view := map[string]any{
		"api_key":         config.MaskKey(settings.APIKey),
		"api_key_source":  string(settings.APIKeySource),
		"base_url":        settings.BaseURL,
		"base_url_source": string(settings.BaseURLSource),
		"config_file":     settings.ConfigPath,
	}
	if settings.Timeout > 0 {
		view["timeout"] = settings.Timeout.String()
	}
	switch outFormat {
	case output.FormatJSON:
		return output.JSON(cmd.OutOrStdout(), view)
	case output.FormatYAML:
		return output.YAML(cmd.OutOrStdout(), view)
	}
	output.Header(cmd.OutOrStdout(), "Configuration")
	output.KeyValues(cmd.OutOrStdout(), view)
	return nil
}

func init() {
	configCmd.Flags().BoolVar(&configShow, "show", false, "show the effective configuration")
	configCmd.Flags().StringVar(&configSetKey, "set-key", "", "store an API key in the config file")
	configCmd.Flags().StringVar(&configSetURL, "set-url", "", "store a base URL in the config file")
	rootCmd.AddCommand(configCmd)
}
