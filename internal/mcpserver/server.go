// Package mcpserver exposes the OmniDimension API as Model Context Protocol
// tools and resources over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	omnidim "github.com/ryu-ryuk/omnidim-go"
)

const (
	serverName = "omnidim"

	assistantPageScheme   = "assistants://{page}/{page_size}"
	assistantDetailScheme = "assistants://{assistant_id}"
	assistantURIPrefix    = "assistants://"

	defaultResourcePageSize = 20
)

// Server routes MCP requests to an API client.
type Server struct {
	client *omnidim.Client
	logger *slog.Logger
}

func New(client *omnidim.Client, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{client: client, logger: logger}
}

// MCPServer builds an MCP server with every tool and resource registered.
func (s *Server) MCPServer(version string) *server.MCPServer {
	srv := server.NewMCPServer(serverName, version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	srv.AddTool(mcp.NewTool("dispatch_a_call",
		mcp.WithDescription("Dispatch an outbound call from an assistant to a phone number"),
		mcp.WithNumber("assistant_id", mcp.Required(), mcp.Description("ID of the assistant placing the call")),
		mcp.WithString("to_number", mcp.Required(), mcp.Description("Destination in E.164 form, e.g. +15551234567")),
		mcp.WithObject("call_context", mcp.Description("Key/value context made available to the assistant during the call")),
	), s.dispatchCall)

	srv.AddTool(mcp.NewTool("create_assistant",
		mcp.WithDescription("Create a new voice assistant"),
		mcp.WithString("name", mcp.Required(), mcp.Description("Assistant name")),
		mcp.WithArray("context_breakdown", mcp.Required(),
			mcp.Description("Prompt sections, each with a title and a body"),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title": map[string]any{"type": "string"},
					"body":  map[string]any{"type": "string"},
				},
				"required": []string{"title", "body"},
			}),
		),
		mcp.WithString("welcome_message", mcp.Description("First sentence the assistant speaks")),
	), s.createAssistant)

	srv.AddTool(mcp.NewTool("list_assistants",
		mcp.WithDescription("List assistants one page at a time"),
		mcp.WithNumber("page", mcp.Description("Page number, default 1")),
		mcp.WithNumber("page_size", mcp.Description("Assistants per page, default 30")),
	), s.listAssistants)

	srv.AddTool(mcp.NewTool("get_assistant",
		mcp.WithDescription("Get the full configuration of an assistant"),
		mcp.WithNumber("assistant_id", mcp.Required(), mcp.Description("Assistant ID")),
	), s.getAssistant)

	srv.AddTool(mcp.NewTool("list_call_logs",
		mcp.WithDescription("List call logs, optionally for one assistant"),
		mcp.WithNumber("page", mcp.Description("Page number, default 1")),
		mcp.WithNumber("page_size", mcp.Description("Logs per page, default 30")),
		mcp.WithNumber("assistant_id", mcp.Description("Only logs of this assistant")),
	), s.listCallLogs)

	srv.AddTool(mcp.NewTool("get_call_log",
		mcp.WithDescription("Get one call log with its transcript"),
		mcp.WithNumber("call_log_id", mcp.Required(), mcp.Description("Call log ID")),
	), s.getCallLog)

	srv.AddTool(mcp.NewTool("list_simulations",
		mcp.WithDescription("List simulations one page at a time"),
		mcp.WithNumber("page", mcp.Description("Page number, default 1")),
		mcp.WithNumber("page_size", mcp.Description("Simulations per page, default 10")),
	), s.listSimulations)

	srv.AddTool(mcp.NewTool("start_simulation",
		mcp.WithDescription("Start running a simulation's test calls"),
		mcp.WithNumber("simulation_id", mcp.Required(), mcp.Description("Simulation ID")),
	), s.startSimulation)

	srv.AddResourceTemplate(mcp.NewResourceTemplate(assistantPageScheme, "Assistants",
		mcp.WithTemplateDescription("One page of assistants"),
		mcp.WithTemplateMIMEType("application/json"),
	), s.readAssistantPage)

	srv.AddResourceTemplate(mcp.NewResourceTemplate(assistantDetailScheme, "Assistant",
		mcp.WithTemplateDescription("Configuration of a single assistant"),
		mcp.WithTemplateMIMEType("application/json"),
	), s.readAssistant)

	return srv
}

// ServeStdio serves MCP over stdin/stdout until the input closes.
func (s *Server) ServeStdio(version string) error {
	if err := server.ServeStdio(s.MCPServer(version)); err != nil {
		return fmt.Errorf("serving mcp over stdio: %w", err)
	}
	return nil
}

func (s *Server) dispatchCall(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	assistantID, err := req.RequireInt("assistant_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	toNumber, err := req.RequireString("to_number")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var callContext map[string]any
	if raw, ok := req.GetArguments()["call_context"]; ok && raw != nil {
		callContext, ok = raw.(map[string]any)
		if !ok {
			return mcp.NewToolResultError("call_context must be an object"), nil
		}
	}
	return s.result(ctx, "dispatch_a_call", func() (*omnidim.Response, error) {
		return s.client.Call.DispatchCall(ctx, assistantID, toNumber, callContext)
	})
}

func (s *Server) createAssistant(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, ok := req.GetArguments()["context_breakdown"]
	if !ok {
		return mcp.NewToolResultError(`required argument "context_breakdown" not found`), nil
	}
	var sections []omnidim.ContextSection
	if err := remarshal(raw, &sections); err != nil {
		return mcp.NewToolResultError("context_breakdown must be a list of {title, body} objects"), nil
	}
	create := omnidim.CreateAgentRequest{
		Name:             name,
		ContextBreakdown: sections,
		WelcomeMessage:   req.GetString("welcome_message", ""),
	}
	return s.result(ctx, "create_assistant", func() (*omnidim.Response, error) {
		return s.client.Agent.Create(ctx, create)
	})
}

func (s *Server) listAssistants(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, pageSize := req.GetInt("page", 1), req.GetInt("page_size", 30)
	return s.result(ctx, "list_assistants", func() (*omnidim.Response, error) {
		return s.client.Agent.List(ctx, page, pageSize)
	})
}

func (s *Server) getAssistant(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("assistant_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.result(ctx, "get_assistant", func() (*omnidim.Response, error) {
		return s.client.Agent.Get(ctx, id)
	})
}

func (s *Server) listCallLogs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opts := omnidim.CallLogOptions{
		Page:     req.GetInt("page", 1),
		PageSize: req.GetInt("page_size", 30),
		AgentID:  req.GetInt("assistant_id", 0),
	}
	return s.result(ctx, "list_call_logs", func() (*omnidim.Response, error) {
		return s.client.Call.GetCallLogs(ctx, opts)
	})
}

func (s *Server) getCallLog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("call_log_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.result(ctx, "get_call_log", func() (*omnidim.Response, error) {
		return s.client.Call.GetCallLog(ctx, id)
	})
}

func (s *Server) listSimulations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, pageSize := req.GetInt("page", 1), req.GetInt("page_size", 10)
	return s.result(ctx, "list_simulations", func() (*omnidim.Response, error) {
		return s.client.Simulation.List(ctx, page, pageSize)
	})
}

func (s *Server) startSimulation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("simulation_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.result(ctx, "start_simulation", func() (*omnidim.Response, error) {
		return s.client.Simulation.Start(ctx, id)
	})
}

// result runs call and reports SDK failures as tool errors so the model
// sees them.
func (s *Server) result(ctx context.Context, tool string, call func() (*omnidim.Response, error)) (*mcp.CallToolResult, error) {
	resp, err := call()
	if err != nil {
		s.logger.WarnContext(ctx, "mcp tool failed", "tool", tool, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.logger.DebugContext(ctx, "mcp tool", "tool", tool, "status", resp.Status)
	return mcp.NewToolResultStructuredOnly(resp), nil
}

func (s *Server) readAssistantPage(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	parts := strings.Split(strings.TrimPrefix(req.Params.URI, assistantURIPrefix), "/")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid assistants page URI %q", req.Params.URI)
	}
	page, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid page %q", parts[0])
	}
	pageSize, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid page size %q", parts[1])
	}
	if pageSize <= 0 {
		pageSize = defaultResourcePageSize
	}
	resp, err := s.client.Agent.List(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	return jsonContents(req.Params.URI, resp.JSON)
}

func (s *Server) readAssistant(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	raw := strings.TrimPrefix(req.Params.URI, assistantURIPrefix)
	id, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid assistant id %q", raw)
	}
	resp, err := s.client.Agent.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return jsonContents(req.Params.URI, resp.JSON)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: uri, MIMEType: "application/json", Text: string(data)},
	}, nil
}

func remarshal(in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
