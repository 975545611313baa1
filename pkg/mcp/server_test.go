package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func mockDaemon(t *testing.T) *httptest.Server {
	t.Helper()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/summary":
			w.Write([]byte(`{
				"summary": {"individualUsage": {"overall": {"enabled": true, "used": 794, "limit": 5000, "remaining": 4206}}},
				"source": "fresh",
				"individualPercentage": 16,
				"teamOnDemandPercentage": 0,
				"teamPooledPercentage": 0
			}`))
		case "/v1/history":
			w.Write([]byte(`[{"id": 1, "source": "fresh", "used": 794, "limit": 5000}]`))
		case "/v1/connectivity":
			w.Write([]byte(`{"ok": true}`))
		default:
			http.NotFound(w, r)
		}
	})
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return ts
}

func TestMCPServer_ReadSummary(t *testing.T) {
	ts := mockDaemon(t)
	s := NewServer(ts.URL)

	req := mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{URI: "cursorwatch://summary"},
	}
	result, err := s.handleReadSummary(context.Background(), req)
	if err != nil {
		t.Fatalf("handleReadSummary failed: %v", err)
	}
	if len(result) != 1 {
		t.Fatalf("Expected 1 resource content, got %d", len(result))
	}

	content, ok := result[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("Expected TextResourceContents")
	}
	if content.MIMEType != "application/json" {
		t.Errorf("Expected application/json, got %s", content.MIMEType)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(content.Text), &decoded); err != nil {
		t.Errorf("Failed to parse result JSON: %v", err)
	}
	if decoded["source"] != "fresh" {
		t.Errorf("Unexpected source in resource: %v", decoded["source"])
	}
}

func TestMCPServer_GetUsageSummaryTool(t *testing.T) {
	ts := mockDaemon(t)
	s := NewServer(ts.URL)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      "get_usage_summary",
			Arguments: map[string]interface{}{"force": true},
		},
	}
	result, err := s.handleGetUsageSummary(context.Background(), req)
	if err != nil {
		t.Fatalf("handleGetUsageSummary failed: %v", err)
	}
	if result.IsError {
		t.Errorf("Expected success, got error result")
	}
	if len(result.Content) == 0 {
		t.Fatalf("Expected content in result")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok || !strings.Contains(text.Text, "16%") {
		t.Errorf("Expected percentage in tool output, got %+v", result.Content[0])
	}
}

func TestMCPServer_TestConnectivityTool(t *testing.T) {
	ts := mockDaemon(t)
	s := NewServer(ts.URL)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: "test_connectivity"},
	}
	result, err := s.handleTestConnectivity(context.Background(), req)
	if err != nil {
		t.Fatalf("handleTestConnectivity failed: %v", err)
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok || !strings.Contains(text.Text, "OK") {
		t.Errorf("Expected OK in tool output, got %+v", result.Content[0])
	}
}

func TestMCPServer_Prompt(t *testing.T) {
	ts := mockDaemon(t)
	s := NewServer(ts.URL)

	req := mcp.GetPromptRequest{}
	req.Params.Name = "quota-aware"
	result, err := s.handleGetPrompt(context.Background(), req)
	if err != nil {
		t.Fatalf("handleGetPrompt failed: %v", err)
	}
	if len(result.Messages) != 1 {
		t.Errorf("Expected 1 prompt message, got %d", len(result.Messages))
	}

	req.Params.Name = "unknown"
	if _, err := s.handleGetPrompt(context.Background(), req); err == nil {
		t.Errorf("Expected error for unknown prompt")
	}
}
