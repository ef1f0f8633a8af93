// Package builtin holds the tools bundled with the worker itself.
// Everything heavier (files, shell, browser) arrives through the MCP
// bridge; builtins are only what the loop protocol needs.
package builtin

import (
	"context"

	"github.com/taskforge/taskforge/internal/tools"
)

// DefaultFinishResponse is filled in when the model issues a bare finish
// command with no params.
const DefaultFinishResponse = "Goal accomplished."

// FinishTool ends the run. It never returns a result: it raises a
// FinishSignal carrying the final answer, which the loop unwraps into
// the run's terminal result.
type FinishTool struct{}

func NewFinishTool() *FinishTool { return &FinishTool{} }

func (t *FinishTool) Name() string { return "finish" }

func (t *FinishTool) Description() string {
	return "Call this tool when the objective is complete. The response parameter is the final answer shown to the user."
}

func (t *FinishTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"response": map[string]interface{}{
				"type":        "string",
				"description": "The final answer to deliver to the user.",
			},
		},
		"required":             []interface{}{"response"},
		"additionalProperties": false,
	}
}

func (t *FinishTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	rc := tools.RunContextFrom(ctx)
	response, _ := args["response"].(string)
	if response == "" {
		response = DefaultFinishResponse
	}
	rc.Log.Info("goal accomplished", "response", response)
	return nil, &tools.FinishSignal{Answer: response}
}
