package llm

import "context"

// Roles understood by the provider protocol. The agent history knows a
// third role ("tool") which is remapped before projection — providers
// only ever see user and model turns.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Part is a single content fragment of a conversation turn.
type Part struct {
	Text string `json:"text"`
}

// Content is one turn of the conversation as sent to the provider.
type Content struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// TextContent builds a single-part Content.
func TextContent(role, text string) Content {
	return Content{Role: role, Parts: []Part{{Text: text}}}
}

// Text joins all parts of the content.
func (c Content) Text() string {
	if len(c.Parts) == 1 {
		return c.Parts[0].Text
	}
	var out string
	for _, p := range c.Parts {
		out += p.Text
	}
	return out
}

// Provider is the LLM collaborator contract. Implementations may retry
// internally; the agent loop never retries a provider call itself.
type Provider interface {
	Name() string
	GetResponse(ctx context.Context, contents []Content, systemPrompt string) (string, error)
}
