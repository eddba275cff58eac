package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	omnidim "github.com/ryu-ryuk/omnidim-go"
	"github.com/ryu-ryuk/omnidim-go/internal/config"
	"github.com/ryu-ryuk/omnidim-go/internal/output"
	"github.com/ryu-ryuk/omnidim-go/internal/paths"
	"github.com/ryu-ryuk/omnidim-go/internal/payload"
)

var (
	version = omnidim.Version

	verbose     bool
	outputFlag  string
	apiKeyFlag  string
	baseURLFlag string

	// Filled in by setup before any command runs.
	settings    config.Settings
	settingsErr error
	configErr   error
	outFormat   = output.FormatTable
	logger      = slog.New(slog.DiscardHandler)
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		output.Error(os.Stderr, "Error: %v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "omnidim",
	Short: "OmniDimension voice agent CLI",
	Long: `OmniDimension CLI - Build, test and operate voice AI agents

Run without a command to open the interactive menu.

Available commands:
  agents        Create and manage voice agents
  calls         Dispatch calls and read call logs
  simulations   Run scripted test calls against an agent
  kb            Manage knowledge base documents
  phone         Attach phone numbers to agents
  integrations  Connect custom APIs and calendars
  config        Show or change the stored configuration
  doctor        Check configuration and API connectivity
  mcp           Serve the API as MCP tools over stdio
  version       Show version information`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "table", "output format: table|json|yaml")
	rootCmd.PersistentFlags().StringVar(&apiKeyFlag, "api-key", "", "API key (overrides environment and config file)")
	rootCmd.PersistentFlags().StringVar(&baseURLFlag, "base-url", "", "API base URL")
}

// setup installs the logger and resolves settings from flags, environment,
// .env and the config file.
func setup(cmd *cobra.Command, _ []string) error {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	format, err := output.ParseFormat(outputFlag)
	if err != nil {
		return err
	}
	outFormat = format

	if err := config.LoadDotEnv(paths.EnvFile()); err != nil {
		logger.Warn("ignoring .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		configErr = err
		logger.Warn("ignoring config file", "path", paths.ConfigFile(), "error", err)
		cfg = &config.Config{}
	}
	settings, settingsErr = config.Resolve(cfg, config.Overrides{APIKey: apiKeyFlag, BaseURL: baseURLFlag}, nil)
	settings.ConfigPath = paths.ConfigFile()
	logger.Debug("settings resolved",
		"api_key_source", settings.APIKeySource,
		"base_url", settings.BaseURL,
		"base_url_source", settings.BaseURLSource,
	)
	return nil
}

var errNoAPIKey = fmt.Errorf("API key not configured: run 'omnidim config --set-key <key>' or set %s", config.EnvAPIKey)

// newClient builds an SDK client from the resolved settings.
func newClient() (*omnidim.Client, error) {
	if settingsErr != nil {
		return nil, settingsErr
	}
	if settings.APIKey == "" {
		return nil, errNoAPIKey
	}
	opts := append(settings.ClientOptions(),
		omnidim.WithLogger(logger),
		omnidim.WithUserAgent("omnidim-cli/"+version),
	)
	return omnidim.NewClient(settings.APIKey, opts...)
}

func render(cmd *cobra.Command, resp *omnidim.Response, columns []output.Column, listKeys ...string) error {
	return output.Render(cmd.OutOrStdout(), outFormat, resp.JSON, columns, listKeys...)
}

// reportCreated prints the new resource ID, or the whole body when the
// response carries none.
func reportCreated(cmd *cobra.Command, what string, resp *omnidim.Response) error {
	if outFormat != output.FormatTable {
		return render(cmd, resp, nil)
	}
	if id, ok := output.ExtractID(resp.JSON, "id"); ok {
		output.Success(cmd.OutOrStdout(), "%s created with ID %d", what, id)
		return nil
	}
	output.Success(cmd.OutOrStdout(), "%s created", what)
	return render(cmd, resp, nil)
}

// done prints a success line in table mode and the response otherwise.
func done(cmd *cobra.Command, resp *omnidim.Response, format string, args ...any) error {
	if outFormat != output.FormatTable {
		return render(cmd, resp, nil)
	}
	output.Success(cmd.OutOrStdout(), format, args...)
	return nil
}

func idArg(args []string, i int, field string) (int, error) {
	return payload.ParseID(args[i], field)
}
