package interactive

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	omnidim "github.com/ryu-ryuk/omnidim-go"
	"github.com/ryu-ryuk/omnidim-go/internal/config"
	"github.com/ryu-ryuk/omnidim-go/internal/output"
	"github.com/ryu-ryuk/omnidim-go/internal/payload"
	"github.com/ryu-ryuk/omnidim-go/internal/views"
)

const interactivePageSize = 10

func (s *Session) agentMenu(ctx context.Context) error {
	return s.submenu(ctx, "Agent Management", []action{
		{"List all agents", s.listAgents},
		{"List agents with details", s.listAgentsDetailed},
		{"Create new agent", s.createAgent},
		{"Get agent details", s.getAgent},
		{"Update agent", s.updateAgent},
		{"Delete agent", s.deleteAgent},
	})
}

func (s *Session) listAgents(ctx context.Context) error {
	client, err := s.api()
	if err != nil {
		return err
	}
	resp, err := client.Agent.List(ctx, 1, interactivePageSize)
	if err != nil {
		return err
	}
	return s.render(resp, views.AgentColumns(false), views.AgentListKeys...)
}

func (s *Session) listAgentsDetailed(ctx context.Context) error {
	client, err := s.api()
	if err != nil {
		return err
	}
	resp, err := client.Agent.List(ctx, 1, interactivePageSize)
	if err != nil {
		return err
	}
	if rows, ok := output.Items(resp.JSON, views.AgentListKeys...); ok && len(rows) > 0 {
		output.Info(s.out, "Fetching details for %d agents (rate limited)...", len(rows))
		failures, err := views.Enrich(ctx, client.Agent, s.limiter, rows)
		if err != nil {
			return err
		}
		for _, f := range failures {
			output.Warning(s.out, "Could not fetch details for %v", f)
		}
	}
	return s.render(resp, views.AgentColumns(true), views.AgentListKeys...)
}

func (s *Session) createAgent(ctx context.Context) error {
	client, err := s.api()
	if err != nil {
		return err
	}
	name, err := s.askRequired("Agent name", "")
	if err != nil {
		return err
	}
	welcome, err := s.prompt.Input("Welcome message", "Hello! How can I help you today?", nil)
	if err != nil {
		return err
	}
	contextText, err := s.askRequired("Agent context (plain text or JSON list of {title, body})", "")
	if err != nil {
		return err
	}
	callTypes := []string{"Incoming", "Outgoing"}
	i, err := s.prompt.Select("Call type", callTypes)
	if err != nil {
		return err
	}

	req := omnidim.CreateAgentRequest{
		Name:             name,
		WelcomeMessage:   strings.TrimSpace(welcome),
		ContextBreakdown: payload.ParseContext(contextText),
		CallType:         callTypes[i],
	}
	if ok, err := s.confirm(fmt.Sprintf("Create agent %q", name)); err != nil || !ok {
		return err
	}
	resp, err := client.Agent.Create(ctx, req)
	if err != nil {
		return err
	}
	s.reportCreated("Agent", resp)
	return nil
}

func (s *Session) getAgent(ctx context.Context) error {
	client, err := s.api()
	if err != nil {
		return err
	}
	id, err := s.askID("Agent ID")
	if err != nil {
		return err
	}
	resp, err := client.Agent.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.render(resp, nil)
}

func (s *Session) updateAgent(ctx context.Context) error {
	client, err := s.api()
	if err != nil {
		return err
	}
	id, err := s.askID("Agent ID to update")
	if err != nil {
		return err
	}
	data, err := s.askObject("Fields to update as JSON, e.g. {\"name\": \"New name\"}")
	if err != nil {
		return err
	}
	if _, err := client.Agent.Update(ctx, id, data); err != nil {
		return err
	}
	output.Success(s.out, "Agent %d updated", id)
	return nil
}

func (s *Session) deleteAgent(ctx context.Context) error {
	client, err := s.api()
	if err != nil {
		return err
	}
	id, err := s.askID("Agent ID to delete")
	if err != nil {
		return err
	}
	if ok, err := s.confirm(fmt.Sprintf("Delete agent %d", id)); err != nil || !ok {
		return err
	}
	if _, err := client.Agent.Delete(ctx, id); err != nil {
		return err
	}
	output.Success(s.out, "Agent %d deleted", id)
	return nil
}

func (s *Session) callMenu(ctx context.Context) error {
	return s.submenu(ctx, "Call Management", []action{
		{"List call logs", s.listCallLogs},
		{"Get call log", s.getCallLog},
		{"Dispatch call", s.dispatchCall},
	})
}

func (s *Session) listCallLogs(ctx context.Context) error {
	client, err := s.api()
	if err != nil {
		return err
	}
	agentID, err := s.askOptionalID("Filter by agent ID")
	if err != nil {
		return err
	}
	resp, err := client.Call.GetCallLogs(ctx, omnidim.CallLogOptions{PageSize: interactivePageSize, AgentID: agentID})
	if err != nil {
		return err
	}
	return s.render(resp, views.CallColumns(), views.CallListKeys...)
}

func (s *Session) getCallLog(ctx context.Context) error {
	client, err := s.api()
	if err != nil {
		return err
	}
	id, err := s.askID("Call log ID")
	if err != nil {
		return err
	}
	resp, err := client.Call.GetCallLog(ctx, id)
	if err != nil {
		return err
	}
	return s.render(resp, nil)
}

func (s *Session) dispatchCall(ctx context.Context) error {
	client, err := s.api()
	if err != nil {
		return err
	}
	agentID, err := s.askID("Agent ID")
	if err != nil {
		return err
	}
	raw, err := s.prompt.Input("Phone number to call (e.g. +1234567890)", "", func(v string) error {
		_, err := payload.ValidatePhone(v)
		return err
	})
	if err != nil {
		return err
	}
	phone, err := payload.ValidatePhone(raw)
	if err != nil {
		return err
	}
	callContext, err := s.askOptionalObject("Call context as JSON")
	if err != nil {
		return err
	}
	resp, err := client.Call.DispatchCall(ctx, agentID, phone, callContext)
	if err != nil {
		return err
	}
	output.Success(s.out, "Call to %s dispatched", phone)
	if id, ok := output.ExtractID(resp.JSON, "id"); ok {
		output.Info(s.out, "Call ID: %d", id)
	}
	return nil
}

func (s *Session) simulationMenu(ctx context.Context) error {
	return s.submenu(ctx, "Simulation Management", []action{
		{"List simulations", s.listSimulations},
		{"Get simulation", s.simulationAction("Simulation ID", (*omnidim.SimulationService).Get, "")},
		{"Create simulation", s.createSimulation},
		{"Start simulation", s.simulationAction("Simulation ID to start", (*omnidim.SimulationService).Start, "Simulation %d started")},
		{"Stop simulation", s.simulationAction("Simulation ID to stop", (*omnidim.SimulationService).Stop, "Simulation %d stopped")},
		{"Enhance prompt", s.simulationAction("Simulation ID", (*omnidim.SimulationService).EnhancePrompt, "")},
		{"Delete simulation", s.deleteSimulation},
	})
}

type simulationOp func(*omnidim.SimulationService, context.Context, int) (*omnidim.Response, error)

// simulationAction asks for an ID and runs op. With an empty done message
// the response body is shown instead.
func (s *Session) simulationAction(label string, op simulationOp, done string) func(context.Context) error {
	return func(ctx context.Context) error {
		client, err := s.api()
		if err != nil {
			return err
		}
		id, err := s.askID(label)
		if err != nil {
			return err
		}
		resp, err := op(client.Simulation, ctx, id)
		if err != nil {
			return err
		}
		if done == "" {
			return s.render(resp, nil)
		}
		output.Success(s.out, done, id)
		return nil
	}
}

func (s *Session) listSimulations(ctx context.Context) error {
	client, err := s.api()
	if err != nil {
		return err
	}
	resp, err := client.Simulation.List(ctx, 1, interactivePageSize)
	if err != nil {
		return err
	}
	return s.render(resp, views.SimulationColumns(), views.SimulationListKeys...)
}

func (s *Session) createSimulation(ctx context.Context) error {
	client, err := s.api()
	if err != nil {
		return err
	}
	name, err := s.askRequired("Simulation name", "")
	if err != nil {
		return err
	}
	agentID, err := s.askID("Agent ID to test")
	if err != nil {
		return err
	}
	req := omnidim.CreateSimulationRequest{Name: name, AgentID: agentID}

	scenario, err := s.prompt.Input("Scenario name (blank to skip)", "", nil)
	if err != nil {
		return err
	}
	if scenario = strings.TrimSpace(scenario); scenario != "" {
		description, err := s.askRequired("Scenario description", "")
		if err != nil {
			return err
		}
		expected, err := s.askRequired("Expected result", "")
		if err != nil {
			return err
		}
		req.Scenarios = []omnidim.Scenario{{Name: scenario, Description: description, ExpectedResult: expected}}
	}

	resp, err := client.Simulation.Create(ctx, req)
	if err != nil {
		return err
	}
	s.reportCreated("Simulation", resp)
	return nil
}

func (s *Session) deleteSimulation(ctx context.Context) error {
	client, err := s.api()
	if err != nil {
		return err
	}
	id, err := s.askID("Simulation ID to delete")
	if err != nil {
		return err
	}
	if ok, err := s.confirm(fmt.Sprintf("Delete simulation %d", id)); err != nil || !ok {
		return err
	}
	if _, err := client.Simulation.Delete(ctx, id); err != nil {
		return err
	}
	output.Success(s.out, "Simulation %d deleted", id)
	return nil
}

func (s *Session) knowledgeBaseMenu(ctx context.Context) error {
	return s.submenu(ctx, "Knowledge Base", []action{
		{"List files", s.listFiles},
		{"Upload PDF", s.uploadFile},
		{"Delete file", s.deleteFile},
		{"Attach files to agent", s.attachFiles},
		{"Detach files from agent", s.detachFiles},
	})
}

func (s *Session) listFiles(ctx context.Context) error {
	client, err := s.api()
	if err != nil {
		return err
	}
	resp, err := client.KnowledgeBase.List(ctx)
	if err != nil {
		return err
	}
	return s.render(resp, views.FileColumns(), views.FileListKeys...)
}

func (s *Session) uploadFile(ctx context.Context) error {
	client, err := s.api()
	if err != nil {
		return err
	}
	path, err := s.askRequired("Path to PDF file", "")
	if err != nil {
		return err
	}
	doc, err := payload.ReadPDF(path)
	if err != nil {
		return err
	}
	check, err := client.KnowledgeBase.CanUpload(ctx, doc.Size, "pdf")
	if err != nil {
		return err
	}
	if ok, msg := payload.UploadAllowed(check.Object()); !ok {
		output.Warning(s.out, "Cannot upload %s: %s", doc.Name, msg)
		return nil
	}
	resp, err := client.KnowledgeBase.Create(ctx, doc.Data, doc.Name)
	if err != nil {
		return err
	}
	output.Success(s.out, "Uploaded %s (%s)", doc.Name, output.FileSize(doc.Size))
	if file, ok := resp.Field("file"); ok {
		if id, ok := output.ExtractID(file, "id"); ok {
			output.Info(s.out, "File ID: %d", id)
		}
	}
	return nil
}

func (s *Session) deleteFile(ctx context.Context) error {
	client, err := s.api()
	if err != nil {
		return err
	}
	id, err := s.askID("File ID to delete")
	if err != nil {
		return err
	}
	if ok, err := s.confirm(fmt.Sprintf("Delete file %d", id)); err != nil || !ok {
		return err
	}
	if _, err := client.KnowledgeBase.Delete(ctx, id); err != nil {
		return err
	}
	output.Success(s.out, "File %d deleted", id)
	return nil
}

func (s *Session) askFileIDs() ([]int, error) {
	raw, err := s.prompt.Input("File IDs (comma separated)", "", func(v string) error {
		_, err := payload.ParseIDs(v)
		return err
	})
	if err != nil {
		return nil, err
	}
	return payload.ParseIDs(raw)
}

func (s *Session) attachFiles(ctx context.Context) error {
	client, err := s.api()
	if err != nil {
		return err
	}
	ids, err := s.askFileIDs()
	if err != nil {
		return err
	}
	agentID, err := s.askID("Agent ID")
	if err != nil {
		return err
	}
	when, err := s.prompt.Input("When should the agent use these files? (optional)", "", nil)
	if err != nil {
		return err
	}
	if _, err := client.KnowledgeBase.Attach(ctx, ids, agentID, strings.TrimSpace(when)); err != nil {
		return err
	}
	output.Success(s.out, "Attached %d file(s) to agent %d", len(ids), agentID)
	return nil
}

func (s *Session) detachFiles(ctx context.Context) error {
	client, err := s.api()
	if err != nil {
		return err
	}
	ids, err := s.askFileIDs()
	if err != nil {
		return err
	}
	agentID, err := s.askID("Agent ID")
	if err != nil {
		return err
	}
	if _, err := client.KnowledgeBase.Detach(ctx, ids, agentID); err != nil {
		return err
	}
	output.Success(s.out, "Detached %d file(s) from agent %d", len(ids), agentID)
	return nil
}

func (s *Session) phoneMenu(ctx context.Context) error {
	return s.submenu(ctx, "Phone Numbers", []action{
		{"List phone numbers", s.listPhoneNumbers},
		{"Attach to agent", s.attachPhoneNumber},
		{"Detach from agent", s.detachPhoneNumber},
	})
}

func (s *Session) listPhoneNumbers(ctx context.Context) error {
	client, err := s.api()
	if err != nil {
		return err
	}
	resp, err := client.PhoneNumber.List(ctx, 1, interactivePageSize)
	if err != nil {
		return err
	}
	return s.render(resp, views.PhoneNumberColumns(), views.PhoneNumberListKeys...)
}

func (s *Session) attachPhoneNumber(ctx context.Context) error {
	client, err := s.api()
	if err != nil {
		return err
	}
	phoneID, err := s.askID("Phone number ID")
	if err != nil {
		return err
	}
	agentID, err := s.askID("Agent ID")
	if err != nil {
		return err
	}
	if _, err := client.PhoneNumber.Attach(ctx, phoneID, agentID); err != nil {
		return err
	}
	output.Success(s.out, "Phone number %d attached to agent %d", phoneID, agentID)
	return nil
}

func (s *Session) detachPhoneNumber(ctx context.Context) error {
	client, err := s.api()
	if err != nil {
		return err
	}
	phoneID, err := s.askID("Phone number ID")
	if err != nil {
		return err
	}
	if _, err := client.PhoneNumber.Detach(ctx, phoneID); err != nil {
		return err
	}
	output.Success(s.out, "Phone number %d detached", phoneID)
	return nil
}

func (s *Session) integrationMenu(ctx context.Context) error {
	return s.submenu(ctx, "Integrations", []action{
		{"List integrations", s.listIntegrations},
		{"List agent integrations", s.listAgentIntegrations},
		{"Create from JSON/YAML file", s.createIntegrationFromFile},
		{"Show payload examples", s.showIntegrationExamples},
		{"Attach to agent", s.attachIntegration},
		{"Detach from agent", s.detachIntegration},
	})
}

func (s *Session) listIntegrations(ctx context.Context) error {
	client, err := s.api()
	if err != nil {
		return err
	}
	resp, err := client.Integrations.UserIntegrations(ctx)
	if err != nil {
		return err
	}
	return s.render(resp, views.IntegrationColumns(), views.IntegrationListKeys...)
}

func (s *Session) listAgentIntegrations(ctx context.Context) error {
	client, err := s.api()
	if err != nil {
		return err
	}
	agentID, err := s.askID("Agent ID")
	if err != nil {
		return err
	}
	resp, err := client.Integrations.AgentIntegrations(ctx, agentID)
	if err != nil {
		return err
	}
	return s.render(resp, views.IntegrationColumns(), views.IntegrationListKeys...)
}

func (s *Session) createIntegrationFromFile(ctx context.Context) error {
	client, err := s.api()
	if err != nil {
		return err
	}
	path, err := s.askRequired("Path to integration file", "")
	if err != nil {
		return err
	}
	data, err := payload.LoadFile(path)
	if err != nil {
		return err
	}
	resp, err := client.Integrations.CreateIntegrationFromJSON(ctx, data)
	if err != nil {
		return err
	}
	s.reportCreated("Integration", resp)
	return nil
}

func (s *Session) showIntegrationExamples(context.Context) error {
	client, err := s.api()
	if err != nil {
		return err
	}
	return output.JSON(s.out, client.Integrations.FormatExamples())
}

func (s *Session) attachIntegration(ctx context.Context) error {
	client, err := s.api()
	if err != nil {
		return err
	}
	agentID, err := s.askID("Agent ID")
	if err != nil {
		return err
	}
	integrationID, err := s.askID("Integration ID")
	if err != nil {
		return err
	}
	if _, err := client.Integrations.AddIntegrationToAgent(ctx, agentID, integrationID); err != nil {
		return err
	}
	output.Success(s.out, "Integration %d attached to agent %d", integrationID, agentID)
	return nil
}

func (s *Session) detachIntegration(ctx context.Context) error {
	client, err := s.api()
	if err != nil {
		return err
	}
	agentID, err := s.askID("Agent ID")
	if err != nil {
		return err
	}
	integrationID, err := s.askID("Integration ID")
	if err != nil {
		return err
	}
	if _, err := client.Integrations.RemoveIntegrationFromAgent(ctx, agentID, integrationID); err != nil {
		return err
	}
	output.Success(s.out, "Integration %d detached from agent %d", integrationID, agentID)
	return nil
}

func (s *Session) configMenu(ctx context.Context) error {
	return s.submenu(ctx, "Configuration", []action{
		{"Show configuration", s.showConfig},
		{"Set API key", s.setAPIKey},
		{"Set base URL", s.setBaseURL},
	})
}

func (s *Session) showConfig(context.Context) error {
	output.KeyValues(s.out, map[string]any{
		"api_key":     fmt.Sprintf("%s (%s)", config.MaskKey(s.settings.APIKey), s.settings.APIKeySource),
		"base_url":    fmt.Sprintf("%s (%s)", s.settings.BaseURL, s.settings.BaseURLSource),
		"config_file": s.path,
	})
	return nil
}

func (s *Session) setAPIKey(context.Context) error {
	key, err := s.prompt.Secret("API key")
	if err != nil {
		return err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("API key cannot be empty")
	}
	if err := config.Update(s.path, func(c *config.Config) error {
		c.APIKey = key
		return nil
	}); err != nil {
		return err
	}
	s.settings.APIKey, s.settings.APIKeySource = key, config.SourceFile
	output.Success(s.out, "API key saved to %s", s.path)
	return s.reconnect()
}

func (s *Session) setBaseURL(context.Context) error {
	url, err := s.askRequired("Base URL", s.settings.BaseURL)
	if err != nil {
		return err
	}
	if err := config.Update(s.path, func(c *config.Config) error {
		c.BaseURL = url
		return nil
	}); err != nil {
		return err
	}
	s.settings.BaseURL, s.settings.BaseURLSource = url, config.SourceFile
	output.Success(s.out, "Base URL saved to %s", s.path)
	return s.reconnect()
}

// reconnect rebuilds the client after a settings change.
func (s *Session) reconnect() error {
	if s.settings.APIKey == "" {
		return nil
	}
	opts := append(s.settings.ClientOptions(), omnidim.WithLogger(s.logger))
	client, err := omnidim.NewClient(s.settings.APIKey, opts...)
	if err != nil {
		return err
	}
	s.client = client
	return nil
}

func (s *Session) askObject(label string) (map[string]any, error) {
	raw, err := s.prompt.Input(label, "", func(v string) error {
		_, err := payload.ParseObject(v)
		return err
	})
	if err != nil {
		return nil, err
	}
	return payload.ParseObject(raw)
}

// askOptionalObject returns nil for a blank answer.
func (s *Session) askOptionalObject(label string) (map[string]any, error) {
	raw, err := s.prompt.Input(label+" (blank for none)", "", func(v string) error {
		if strings.TrimSpace(v) == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), new(map[string]any))
	})
	if err != nil || strings.TrimSpace(raw) == "" {
		return nil, err
	}
	return payload.ParseObject(raw)
}
