package agent

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/taskforge/taskforge/internal/session"
	"github.com/taskforge/taskforge/internal/tools"
)

const promptPreamble = `You are an autonomous agent working towards an objective. Think step by step and use the available tools to make progress.

You MUST respond with a single JSON object and nothing else. The object may contain:
- "thought": your reasoning about the current state and what to do next.
- "command": a tool invocation, as {"name": "<tool name>", "params": {...}}.
- "answer": the final answer, once the objective is complete.

Provide either a command to keep working or an answer to finish. Use the "finish" tool (or an "answer") when the objective is accomplished. Invent nothing: only tools listed below exist.`

// BuildSystemPrompt assembles the per-iteration system prompt: the
// response-format rules, the current tool catalogue, and the session's
// working context. It is rebuilt from live state every iteration so
// mid-run registry or context changes are always visible to the model.
func BuildSystemPrompt(sess *session.Session, registry *tools.Registry) string {
	var b strings.Builder
	b.WriteString(promptPreamble)
	b.WriteString("\n\n## Available Tools\n")
	for _, tool := range registry.GetAll() {
		fmt.Fprintf(&b, "\n### %s\n%s\n", tool.Name(), tool.Description())
		if schema := tool.Parameters(); schema != nil {
			if enc, err := json.Marshal(schema); err == nil {
				fmt.Fprintf(&b, "Parameters: %s\n", enc)
			}
		}
	}

	if wc := sess.ContextSnapshot(); len(wc) > 0 {
		b.WriteString("\n## Working Context\n")
		keys := make([]string, 0, len(wc))
		for k := range wc {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "- %s: %s\n", k, wc[k])
		}
	}
	return b.String()
}
