package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	omnidim "github.com/ryu-ryuk/omnidim-go"
	"github.com/ryu-ryuk/omnidim-go/internal/interactive"
	"github.com/ryu-ryuk/omnidim-go/internal/output"
	"github.com/ryu-ryuk/omnidim-go/internal/payload"
	"github.com/ryu-ryuk/omnidim-go/internal/views"
)

var (
	agentPage     int
	agentPageSize int
	agentDetails  bool

	agentName                string
	agentWelcome             string
	agentContext             string
	agentCallType            string
	agentVoiceProvider       string
	agentVoiceID             string
	agentModel               string
	agentTemperature         float64
	agentTranscriberProvider string
	agentTranscriberModel    string
	agentWebSearch           bool
	agentWebSearchProvider   string
	agentFiller              bool
	agentFillerAfterSec      int
	agentFile                string
	agentShowDetails         bool

	agentUpdateFile string
	agentUpdateData string
	agentForce      bool
)

var agentsCmd = &cobra.Command{
	Use:     "agents",
	Aliases: []string{"agent"},
	Short:   "Create and manage voice agents",
}

var agentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List agents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		resp, err := client.Agent.List(cmd.Context(), agentPage, agentPageSize)
		if err != nil {
			return err
		}
		if agentDetails {
			if rows, ok := output.Items(resp.JSON, views.AgentListKeys...); ok && len(rows) > 0 {
				logger.Info("fetching agent details", "agents", len(rows), "interval", views.DetailInterval)
				failures, err := views.Enrich(cmd.Context(), client.Agent, views.NewLimiter(), rows)
				if err != nil {
					return err
				}
				for _, f := range failures {
					output.Warning(cmd.ErrOrStderr(), "Could not fetch details for %v", f)
				}
			}
		}
		return render(cmd, resp, views.AgentColumns(agentDetails), views.AgentListKeys...)
	},
}

var agentsGetCmd = &cobra.Command{
	Use:   "get <agent-id>",
	Short: "Show an agent's configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := idArg(args, 0, "agent ID")
		if err != nil {
			return err
		}
		client, err := newClient()
		if err != nil {
			return err
		}
		resp, err := client.Agent.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		return render(cmd, resp, nil)
	},
}

var agentsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an agent",
	Long: `Create an agent from flags or from a JSON/YAML file.

--context accepts plain text, which becomes a single "Purpose" section, or a
JSON list of {"title", "body"} sections. Flags override values from --file.`,
	Example: `  omnidim agents create --name "Front Desk" --context "Answer questions about the hotel"
  omnidim agents create --file agent.yaml --show-details`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := buildCreateAgentRequest(cmd)
		if err != nil {
			return err
		}
		client, err := newClient()
		if err != nil {
			return err
		}
		resp, err := client.Agent.Create(cmd.Context(), req)
		if err != nil {
			return err
		}
		if err := reportCreated(cmd, "Agent", resp); err != nil {
			return err
		}
		if !agentShowDetails {
			return nil
		}
		id, ok := output.ExtractID(resp.JSON, "id")
		if !ok {
			return nil
		}
		details, err := client.Agent.Get(cmd.Context(), id)
		if err != nil {
			output.Warning(cmd.ErrOrStderr(), "Could not fetch agent details: %v", err)
			return nil
		}
		return render(cmd, details, nil)
	},
}

// buildCreateAgentRequest merges --file with the flags that were set.
func buildCreateAgentRequest(cmd *cobra.Command) (omnidim.CreateAgentRequest, error) {
	var req omnidim.CreateAgentRequest
	if agentFile != "" {
		if err := payload.LoadInto(agentFile, &req); err != nil {
			return req, err
		}
	}
	flags := cmd.Flags()

	if flags.Changed("name") {
		req.Name = strings.TrimSpace(agentName)
	}
	if flags.Changed("welcome") {
		req.WelcomeMessage = agentWelcome
	}
	if flags.Changed("context") {
		req.ContextBreakdown = payload.ParseContext(agentContext)
	}
	if flags.Changed("call-type") {
		req.CallType = agentCallType
	}
	if flags.Changed("voice-provider") || flags.Changed("voice-id") {
		if agentVoiceProvider == "" || agentVoiceID == "" {
			return req, fmt.Errorf("--voice-provider and --voice-id must be given together")
		}
		req.Voice = &omnidim.VoiceConfig{Provider: agentVoiceProvider, VoiceID: agentVoiceID}
	}
	if flags.Changed("model") || flags.Changed("temperature") {
		if req.Model == nil {
			req.Model = &omnidim.ModelConfig{}
		}
		if flags.Changed("model") {
			req.Model.Model = agentModel
		}
		if flags.Changed("temperature") {
			req.Model.Temperature = omnidim.Float(agentTemperature)
		}
	}
	if flags.Changed("transcriber-provider") {
		req.Transcriber = &omnidim.TranscriberConfig{Provider: agentTranscriberProvider, Model: agentTranscriberModel}
	}
	if agentWebSearch {
		req.WebSearchProvider = agentWebSearchProvider
	}
	if flags.Changed("enable-filler") || flags.Changed("filler-after-sec") {
		req.Filler = &omnidim.FillerConfig{Enabled: agentFiller}
		if flags.Changed("filler-after-sec") {
			req.Filler.AfterSec = omnidim.Int(agentFillerAfterSec)
		}
	}

	if req.Name == "" {
		return req, fmt.Errorf("agent name is required (--name or --file)")
	}
	if len(req.ContextBreakdown) == 0 {
		return req, fmt.Errorf("agent context is required (--context or --file)")
	}
	return req, nil
}

var agentsUpdateCmd = &cobra.Command{
	Use:   "update <agent-id>",
	Short: "Update an agent",
	Example: `  omnidim agents update 42 --data '{"welcome_message": "Hi!"}'
  omnidim agents update 42 --file changes.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := idArg(args, 0, "agent ID")
		if err != nil {
			return err
		}
		data, err := payload.FromFileOrInline(agentUpdateFile, agentUpdateData)
		if err != nil {
			return err
		}
		client, err := newClient()
		if err != nil {
			return err
		}
		resp, err := client.Agent.Update(cmd.Context(), id, data)
		if err != nil {
			return err
		}
		return done(cmd, resp, "Agent %d updated", id)
	},
}

var agentsDeleteCmd = &cobra.Command{
	Use:   "delete <agent-id>",
	Short: "Delete an agent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := idArg(args, 0, "agent ID")
		if err != nil {
			return err
		}
		if ok, err := confirm(cmd, fmt.Sprintf("Delete agent %d", id), agentForce); err != nil || !ok {
			return err
		}
		client, err := newClient()
		if err != nil {
			return err
		}
		resp, err := client.Agent.Delete(cmd.Context(), id)
		if err != nil {
			return err
		}
		return done(cmd, resp, "Agent %d deleted", id)
	},
}

// confirm asks on the terminal unless force is set.
func confirm(cmd *cobra.Command, label string, force bool) (bool, error) {
	if force {
		return true, nil
	}
	ok, err := interactive.Terminal{}.Confirm(label)
	if err != nil {
		return false, fmt.Errorf("confirmation: %w (use --force to skip)", err)
	}
	if !ok {
		output.Info(cmd.OutOrStdout(), "Cancelled")
	}
	return ok, nil
}

func init() {
	agentsListCmd.Flags().IntVar(&agentPage, "page", 1, "page number")
	agentsListCmd.Flags().IntVar(&agentPageSize, "page-size", 30, "agents per page")
	agentsListCmd.Flags().BoolVar(&agentDetails, "details", false, "fetch per-agent details (one request per agent, rate limited)")

	f := agentsCreateCmd.Flags()
	f.StringVar(&agentName, "name", "", "agent name")
	f.StringVar(&agentWelcome, "welcome", "", "welcome message")
	f.StringVar(&agentContext, "context", "", "context as plain text or a JSON list of {title, body}")
	f.StringVar(&agentCallType, "call-type", "", "Incoming or Outgoing")
	f.StringVar(&agentVoiceProvider, "voice-provider", "", "eleven_labs|deepgram|google|cartesia|rime")
	f.StringVar(&agentVoiceID, "voice-id", "", "provider voice ID")
	f.StringVar(&agentModel, "model", "", "LLM model, e.g. gpt-4o-mini")
	f.Float64Var(&agentTemperature, "temperature", 0.7, "LLM temperature between 0 and 1")
	f.StringVar(&agentTranscriberProvider, "transcriber-provider", "", "speech-to-text provider")
	f.StringVar(&agentTranscriberModel, "transcriber-model", "", "speech-to-text model")
	f.BoolVar(&agentWebSearch, "enable-web-search", false, "let the agent search the web")
	f.StringVar(&agentWebSearchProvider, "web-search-provider", "DuckDuckGo", "DuckDuckGo or OpenAI")
	f.BoolVar(&agentFiller, "enable-filler", false, "speak filler phrases while waiting")
	f.IntVar(&agentFillerAfterSec, "filler-after-sec", 0, "seconds of silence before a filler phrase")
	f.StringVarP(&agentFile, "file", "f", "", "JSON or YAML file with the agent definition")
	f.BoolVar(&agentShowDetails, "show-details", false, "show the full agent after creation")

	agentsUpdateCmd.Flags().StringVarP(&agentUpdateFile, "file", "f", "", "JSON or YAML file with the fields to update")
	agentsUpdateCmd.Flags().StringVar(&agentUpdateData, "data", "", "inline JSON object with the fields to update")

	agentsDeleteCmd.Flags().BoolVar(&agentForce, "force", false, "delete without confirmation")

	agentsCmd.AddCommand(agentsListCmd, agentsGetCmd, agentsCreateCmd, agentsUpdateCmd, agentsDeleteCmd)
	rootCmd.AddCommand(agentsCmd)
}
