package bus

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Event wire types consumed by the UI/SSE bridges. The shapes are part
// of the external contract; field names must not drift.
const (
	TypeAgentThought  = "agent_thought"
	TypeAgentResponse = "agent_response"
	TypeToolStart     = "tool.start"
	TypeToolResult    = "tool_result"
)

// ThoughtEvent carries the model's intermediate reasoning.
type ThoughtEvent struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// ResponseEvent carries the run's final answer.
type ResponseEvent struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// ToolStartEvent announces a tool dispatch before execution.
type ToolStartEvent struct {
	Type string        `json:"type"`
	Data ToolStartData `json:"data"`
}

type ToolStartData struct {
	Name string      `json:"name"`
	Args interface{} `json:"args"`
}

// ToolResultEvent carries a completed tool's payload (or error payload).
type ToolResultEvent struct {
	Type     string      `json:"type"`
	ToolName string      `json:"toolName"`
	Result   interface{} `json:"result"`
}

func NewThoughtEvent(content string) ThoughtEvent {
	return ThoughtEvent{Type: TypeAgentThought, Content: content}
}

func NewResponseEvent(content string) ResponseEvent {
	return ResponseEvent{Type: TypeAgentResponse, Content: content}
}

func NewToolStartEvent(name string, args interface{}) ToolStartEvent {
	return ToolStartEvent{Type: TypeToolStart, Data: ToolStartData{Name: name, Args: args}}
}

func NewToolResultEvent(toolName string, result interface{}) ToolResultEvent {
	return ToolResultEvent{Type: TypeToolResult, ToolName: toolName, Result: result}
}

// PublishJSON marshals and publishes an event. Serialization failures
// are logged and swallowed: event delivery is best-effort and must never
// fail a run.
func PublishJSON(ctx context.Context, t Transport, channel string, event interface{}) {
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Error("event marshal failed", "channel", channel, "error", err)
		return
	}
	if err := t.Publish(ctx, channel, payload); err != nil {
		slog.Warn("event publish failed", "channel", channel, "error", err)
	}
}
