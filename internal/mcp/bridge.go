// Package mcp bridges tools served by MCP (Model Context Protocol)
// servers into the local tool registry. Each remote tool becomes a
// BridgeTool the loop dispatches like any builtin; the package owns the
// client connections and their lifecycle.
package mcp

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"github.com/taskforge/taskforge/internal/tools"
)

// toolCaller is the slice of the MCP client a bridge needs.
type toolCaller interface {
	CallTool(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error)
}

// BridgeTool adapts one remote MCP tool to the tools.Tool interface.
// The registered name is "{prefix}__{name}" when the server has a
// prefix, which keeps same-named tools from different servers apart.
type BridgeTool struct {
	serverName     string
	toolName       string
	registeredName string
	description    string
	inputSchema    map[string]interface{}
	client         toolCaller
	timeout        time.Duration
	connected      *atomic.Bool
}

// NewBridgeTool wraps an MCP tool definition. timeoutSec <= 0 falls
// back to 60; connected may be nil for always-connected clients.
func NewBridgeTool(serverName string, def mcpgo.Tool, client toolCaller, prefix string, timeoutSec int, connected *atomic.Bool) *BridgeTool {
	registered := def.Name
	if prefix != "" {
		registered = prefix + "__" + def.Name
	}
	if timeoutSec <= 0 {
		timeoutSec = 60
	}
	return &BridgeTool{
		serverName:     serverName,
		toolName:       def.Name,
		registeredName: registered,
		description:    def.Description,
		inputSchema:    inputSchemaToMap(def.InputSchema),
		client:         client,
		timeout:        time.Duration(timeoutSec) * time.Second,
		connected:      connected,
	}
}

func (t *BridgeTool) Name() string                       { return t.registeredName }
func (t *BridgeTool) Description() string                { return t.description }
func (t *BridgeTool) Parameters() map[string]interface{} { return t.inputSchema }

// ServerName is the owning MCP server.
func (t *BridgeTool) ServerName() string { return t.serverName }

// OriginalName is the remote tool name without the server prefix.
func (t *BridgeTool) OriginalName() string { return t.toolName }

func (t *BridgeTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	if t.connected != nil && !t.connected.Load() {
		return nil, fmt.Errorf("mcp server %q is disconnected", t.serverName)
	}

	callCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	req := mcpgo.CallToolRequest{}
	req.Params.Name = t.toolName
	req.Params.Arguments = args

	result, err := t.client.CallTool(callCtx, req)
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("mcp tool %q timed out after %s", t.registeredName, t.timeout)
		}
		return nil, fmt.Errorf("mcp tool %q: %w", t.registeredName, err)
	}

	text := extractTextContent(result)
	if result.IsError {
		return nil, fmt.Errorf("mcp tool %q: %s", t.registeredName, text)
	}
	return text, nil
}

func inputSchemaToMap(schema mcpgo.ToolInputSchema) map[string]interface{} {
	m := map[string]interface{}{"type": schema.Type}
	if schema.Type == "" {
		m["type"] = "object"
	}
	if len(schema.Properties) > 0 {
		m["properties"] = schema.Properties
	}
	if len(schema.Required) > 0 {
		m["required"] = schema.Required
	}
	if schema.AdditionalProperties != nil {
		m["additionalProperties"] = schema.AdditionalProperties
	}
	return m
}

// extractTextContent flattens a tool result to text. Non-text content
// (images, audio) is noted but not carried: the transcript is text-only.
func extractTextContent(result *mcpgo.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	var parts []string
	for _, c := range result.Content {
		switch v := c.(type) {
		case mcpgo.TextContent:
			parts = append(parts, v.Text)
		case *mcpgo.TextContent:
			parts = append(parts, v.Text)
		default:
			parts = append(parts, fmt.Sprintf("[non-text content: %T]", c))
		}
	}
	return strings.Join(parts, "\n")
}

var _ tools.Tool = (*BridgeTool)(nil)
