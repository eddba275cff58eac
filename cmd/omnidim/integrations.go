package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	omnidim "github.com/ryu-ryuk/omnidim-go"
	"github.com/ryu-ryuk/omnidim-go/internal/output"
	"github.com/ryu-ryuk/omnidim-go/internal/payload"
	"github.com/ryu-ryuk/omnidim-go/internal/views"
)

var (
	apiName          string
	apiURL           string
	apiMethod        string
	apiDescription   string
	apiHeaders       []string
	apiQueryParams   string
	apiBodyType      string
	apiBodyContent   string
	apiTimeout       int
	apiStopListening bool
	apiFile          string

	calName        string
	calAPIKey      string
	calID          string
	calTimezone    string
	calDescription string

	integrationExamples bool
)

var integrationsCmd = &cobra.Command{
	Use:     "integrations",
	Aliases: []string{"integration"},
	Short:   "Connect custom APIs and calendars",
}

var integrationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your integrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		resp, err := client.Integrations.UserIntegrations(cmd.Context())
		if err != nil {
			return err
		}
		return render(cmd, resp, views.IntegrationColumns(), views.IntegrationListKeys...)
	},
}

var integrationsListAgentCmd = &cobra.Command{
	Use:   "list-agent <agent-id>",
	Short: "List integrations attached to an agent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		agentID, err := idArg(args, 0, "agent ID")
		if err != nil {
			return err
		}
		client, err := newClient()
		if err != nil {
			return err
		}
		resp, err := client.Integrations.AgentIntegrations(cmd.Context(), agentID)
		if err != nil {
			return err
		}
		return render(cmd, resp, views.IntegrationColumns(), views.IntegrationListKeys...)
	},
}

var integrationsCreateAPICmd = &cobra.Command{
	Use:   "create-api",
	Short: "Create a custom API integration",
	Long: `Create a custom API integration from flags or a JSON/YAML file.

Headers may be repeated as --header "Key: Value". Query parameters take a
JSON list of {"key", "type", "description", "required"} objects; body
parameters can only be given in the file.`,
	Example: `  omnidim integrations create-api --name Weather --url https://api.example.com/weather --method GET \
    --header "Authorization: Bearer token"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var in omnidim.CustomAPIIntegration
		if apiFile != "" {
			if err := payload.LoadInto(apiFile, &in); err != nil {
				return err
			}
		}
		flags := cmd.Flags()
		if flags.Changed("name") {
			in.Name = apiName
		}
		if flags.Changed("url") {
			in.URL = apiURL
		}
		if flags.Changed("method") || in.Method == "" {
			in.Method = strings.ToUpper(apiMethod)
		}
		if flags.Changed("description") {
			in.Description = apiDescription
		}
		if flags.Changed("body-type") {
			in.BodyType = apiBodyType
		}
		if flags.Changed("body-content") {
			in.BodyContent = apiBodyContent
		}
		if flags.Changed("timeout") {
			in.RequestTimeout = apiTimeout
		}
		if flags.Changed("stop-listening") {
			in.StopListening = apiStopListening
		}
		if apiQueryParams != "" {
			if err := json.Unmarshal([]byte(apiQueryParams), &in.QueryParams); err != nil {
				return fmt.Errorf("invalid --query-params: %w", err)
			}
		}
		for _, raw := range apiHeaders {
			h, err := parseHeader(raw)
			if err != nil {
				return err
			}
			in.Headers = append(in.Headers, h)
		}

		client, err := newClient()
		if err != nil {
			return err
		}
		resp, err := client.Integrations.CreateCustomAPIIntegration(cmd.Context(), in)
		if err != nil {
			return err
		}
		if id, ok := output.ExtractID(resp.JSON, "integration_id"); ok && outFormat == output.FormatTable {
			output.Success(cmd.OutOrStdout(), "Integration created with ID %d", id)
			return nil
		}
		return reportCreated(cmd, "Integration", resp)
	},
}

// parseHeader accepts "Key: Value" or "Key=Value".
func parseHeader(raw string) (omnidim.Header, error) {
	key, value, ok := strings.Cut(raw, ":")
	if !ok {
		key, value, ok = strings.Cut(raw, "=")
	}
	key, value = strings.TrimSpace(key), strings.TrimSpace(value)
	if !ok || key == "" {
		return omnidim.Header{}, fmt.Errorf("invalid header %q: want \"Key: Value\"", raw)
	}
	return omnidim.Header{Key: key, Value: value}, nil
}

var integrationsCreateCalCmd = &cobra.Command{
	Use:   "create-cal",
	Short: "Create a Cal.com booking integration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		resp, err := client.Integrations.CreateCalIntegration(cmd.Context(), omnidim.CalIntegration{
			Name:        calName,
			CalAPIKey:   calAPIKey,
			CalID:       calID,
			CalTimezone: calTimezone,
			Description: calDescription,
		})
		if err != nil {
			return err
		}
		return reportCreated(cmd, "Integration", resp)
	},
}

var integrationsCreateFromJSONCmd = &cobra.Command{
	Use:   "create-from-json [file]",
	Short: "Create an integration from a JSON/YAML document",
	Long: `Create an integration from a document whose integration_type is
"custom_api" or "cal". Use --examples to print sample documents.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		if integrationExamples {
			if outFormat == output.FormatYAML {
				return output.YAML(cmd.OutOrStdout(), client.Integrations.FormatExamples())
			}
			return output.JSON(cmd.OutOrStdout(), client.Integrations.FormatExamples())
		}
		if len(args) == 0 {
			return fmt.Errorf("a file is required (or --examples)")
		}
		data, err := payload.LoadFile(args[0])
		if err != nil {
			return err
		}
		resp, err := client.Integrations.CreateIntegrationFromJSON(cmd.Context(), data)
		if err != nil {
			return err
		}
		return reportCreated(cmd, "Integration", resp)
	},
}

var integrationsAttachCmd = &cobra.Command{
	Use:   "attach <agent-id> <integration-id>",
	Short: "Attach an integration to an agent",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		agentID, integrationID, err := agentAndIntegration(args)
		if err != nil {
			return err
		}
		client, err := newClient()
		if err != nil {
			return err
		}
		resp, err := client.Integrations.AddIntegrationToAgent(cmd.Context(), agentID, integrationID)
		if err != nil {
			return err
		}
		return done(cmd, resp, "Integration %d attached to agent %d", integrationID, agentID)
	},
}

var integrationsDetachCmd = &cobra.Command{
	Use:   "detach <agent-id> <integration-id>",
	Short: "Detach an integration from an agent",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		agentID, integrationID, err := agentAndIntegration(args)
		if err != nil {
			return err
		}
		client, err := newClient()
		if err != nil {
			return err
		}
		resp, err := client.Integrations.RemoveIntegrationFromAgent(cmd.Context(), agentID, integrationID)
		if err != nil {
			return err
		}
		return done(cmd, resp, "Integration %d detached from agent %d", integrationID, agentID)
	},
}

func agentAndIntegration(args []string) (int, int, error) {
	agentID, err := idArg(args, 0, "agent ID")
	if err != nil {
		return 0, 0, err
	}
	integrationID, err := idArg(args, 1, "integration ID")
	if err != nil {
		return 0, 0, err
	}
	return agentID, integrationID, nil
}

func init() {
	f := integrationsCreateAPICmd.Flags()
	f.StringVarP(&apiName, "name", "n", "", "integration name")
	f.StringVarP(&apiURL, "url", "u", "", "endpoint URL")
	f.StringVarP(&apiMethod, "method", "m", "GET", "HTTP method")
	f.StringVarP(&apiDescription, "description", "d", "", "what the endpoint does, shown to the agent")
	f.StringArrayVar(&apiHeaders, "header", nil, `static header "Key: Value" (repeatable)`)
	f.StringVar(&apiQueryParams, "query-params", "", "query parameters as a JSON list")
	f.StringVar(&apiBodyType, "body-type", "", "request body type, e.g. json")
	f.StringVar(&apiBodyContent, "body-content", "", "static request body")
	f.IntVar(&apiTimeout, "timeout", 10, "request timeout in seconds")
	f.BoolVar(&apiStopListening, "stop-listening", false, "pause speech recognition while the request runs")
	f.StringVarP(&apiFile, "file", "f", "", "JSON or YAML file with the integration")

	c := integrationsCreateCalCmd.Flags()
	c.StringVarP(&calName, "name", "n", "", "integration name")
	c.StringVar(&calAPIKey, "cal-api-key", "", "Cal.com API key")
	c.StringVar(&calID, "cal-id", "", "Cal.com event type ID")
	c.StringVar(&calTimezone, "timezone", "", "calendar timezone, e.g. America/New_York")
	c.StringVarP(&calDescription, "description", "d", "", "description shown to the agent")

	integrationsCreateFromJSONCmd.Flags().BoolVar(&integrationExamples, "examples", false, "print example documents and exit")

	integrationsCmd.AddCommand(
		integrationsListCmd,
		integrationsListAgentCmd,
		integrationsCreateAPICmd,
		integrationsCreateCalCmd,
		integrationsCreateFromJSONCmd,
		integrationsAttachCmd,
		integrationsDetachCmd,
	)
	rootCmd.AddCommand(integrationsCmd)
}
