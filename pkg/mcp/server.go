// Package mcp adapts cursorwatch-d to the Model Context Protocol so agents
// can inspect quota state before spending it.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/cursorwatch/cursorwatch/pkg/client"
)

// Server adapts cursorwatch-d to MCP.
type Server struct {
	mcpServer *server.MCPServer
	apiClient *client.Client
}

// NewServer creates a new MCP server instance talking to the daemon at apiURL.
func NewServer(apiURL string) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"cursorwatch",
			"1.0.0",
		),
		apiClient: client.NewClient(apiURL),
	}
	s.registerResources()
	s.registerTools()
	s.registerPrompts()
	return s
}

// Serve starts the MCP server on stdio.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcpServer)
}

// --- Resources ---

func (s *Server) registerResources() {
	// cursorwatch://summary
	s.mcpServer.AddResource(mcp.NewResource(
		"cursorwatch://summary",
		"Cursor Usage Summary",
		mcp.WithResourceDescription("Latest known usage quota summary with derived percentages"),
		mcp.WithMIMEType("application/json"),
	), s.handleReadSummary)

	// cursorwatch://history
	s.mcpServer.AddResource(mcp.NewResource(
		"cursorwatch://history",
		"Fetch History",
		mcp.WithResourceDescription("Recent fetch attempts with outcomes and quota snapshots"),
		mcp.WithMIMEType("application/json"),
	), s.handleReadHistory)
}

// --- Tools ---

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool(
		"get_usage_summary",
		mcp.WithDescription("Fetch the current Cursor usage summary. Degrades to cached or placeholder data on failure."),
		mcp.WithBoolean("force", mcp.Description("Bypass the freshness window (default false)")),
	), s.handleGetUsageSummary)

	s.mcpServer.AddTool(mcp.NewTool(
		"test_connectivity",
		mcp.WithDescription("Probe the full fetch pipeline (transport + parse) and report success or failure."),
	), s.handleTestConnectivity)
}

// --- Prompts ---

func (s *Server) registerPrompts() {
	s.mcpServer.AddPrompt(mcp.NewPrompt(
		"quota-aware",
		mcp.WithPromptDescription("Provides context about Cursor quota concepts (buckets, freshness, fallback)"),
	), s.handleGetPrompt)
}

// --- Handlers ---

func (s *Server) handleReadSummary(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	summary, err := s.apiClient.GetSummary(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch summary: %w", err)
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summary: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleReadHistory(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	records, err := s.apiClient.GetHistory(ctx, 50)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history: %w", err)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal history: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleGetUsageSummary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	force := mcp.ParseBoolean(request, "force", false)

	summary, err := s.apiClient.GetSummary(ctx, force)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("API error: %v", err)), nil
	}

	msg := fmt.Sprintf("Source: %s\nIndividual usage: %d%%", summary.Source, summary.IndividualPercentage)
	if summary.Summary != nil && summary.Summary.IndividualUsage != nil && summary.Summary.IndividualUsage.Overall != nil {
		overall := summary.Summary.IndividualUsage.Overall
		msg += fmt.Sprintf(" (%.0f of %.0f, %.0f remaining)", overall.Used, overall.Limit, overall.Remaining)
	}
	if summary.Message != "" {
		msg += "\nWarning: " + summary.Message
	}
	return mcp.NewToolResultText(msg), nil
}

func (s *Server) handleTestConnectivity(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ok, err := s.apiClient.Connectivity(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("API error: %v", err)), nil
	}
	if ok {
		return mcp.NewToolResultText("Connectivity OK: transport and parse pipeline succeeded."), nil
	}
	return mcp.NewToolResultText("Connectivity FAILED: check the session token and network/proxy settings."), nil
}

func (s *Server) handleGetPrompt(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := request.Params.Name
	if name != "quota-aware" {
		return nil, fmt.Errorf("prompt not found: %s", name)
	}

	promptText := `You are interacting with cursorwatch, a local daemon that tracks Cursor usage quotas.

Concepts:
- Summary: the latest quota snapshot (individual and team buckets, each with used/limit/remaining).
- Source: where a summary came from: fresh (live fetch), cache (within the 60s freshness window), stale (last known value after a failed fetch), placeholder (no credentials or no data at all).
- Percentage: round(100*used/limit), 0 when the limit is 0 or the plan is unlimited.

Use 'get_usage_summary' to check quota before quota-heavy work. A stale or placeholder source means the live fetch failed; treat numbers as indicative, not current.
Use 'test_connectivity' to diagnose token or network problems.
`

	return mcp.NewGetPromptResult(
		"quota-aware",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(promptText)),
		},
	), nil
}
