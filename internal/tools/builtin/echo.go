package builtin

import (
	"context"

	"github.com/taskforge/taskforge/internal/tools"
)

// EchoTool returns its input text. Kept registered in every build: it is
// the canonical smoke-test target for the dispatch pipeline.
type EchoTool struct{}

func NewEchoTool() *EchoTool { return &EchoTool{} }

func (t *EchoTool) Name() string { return "echo" }

func (t *EchoTool) Description() string {
	return "Echo the given text back unchanged. Useful for testing tool dispatch."
}

func (t *EchoTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"text": map[string]interface{}{
				"type":        "string",
				"description": "Text to echo back.",
			},
		},
		"required":             []interface{}{"text"},
		"additionalProperties": false,
	}
}

func (t *EchoTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	text, _ := args["text"].(string)
	tools.RunContextFrom(ctx).Log.Debug("echo", "len", len(text))
	return text, nil
}
