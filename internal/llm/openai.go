package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	openaiDefaultBase    = "https://api.openai.com/v1"
	openaiDefaultModel   = "gpt-4o-mini"
	openaiDefaultTimeout = 120 * time.Second
)

// OpenAIProvider speaks the OpenAI-compatible chat completions protocol.
// Most hosted gateways (together, groq, dashscope compatible-mode, local
// llama servers) accept the same wire format, so this single provider
// covers them via APIBase.
type OpenAIProvider struct {
	name    string
	apiKey  string
	apiBase string
	model   string
	client  *http.Client
}

func NewOpenAIProvider(name, apiKey, apiBase, model string) *OpenAIProvider {
	if name == "" {
		name = "openai"
	}
	if apiBase == "" {
		apiBase = openaiDefaultBase
	}
	if model == "" {
		model = openaiDefaultModel
	}
	return &OpenAIProvider{
		name:    name,
		apiKey:  apiKey,
		apiBase: strings.TrimRight(apiBase, "/"),
		model:   model,
		client:  &http.Client{Timeout: openaiDefaultTimeout},
	}
}

func (p *OpenAIProvider) Name() string { return p.name }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// GetResponse sends the projected history plus system prompt and returns
// the raw assistant text. The history role "model" maps to the protocol
// role "assistant".
func (p *OpenAIProvider) GetResponse(ctx context.Context, contents []Content, systemPrompt string) (string, error) {
	msgs := make([]chatMessage, 0, len(contents)+1)
	if systemPrompt != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: systemPrompt})
	}
	for _, c := range contents {
		role := "user"
		if c.Role == RoleModel {
			role = "assistant"
		}
		msgs = append(msgs, chatMessage{Role: role, Content: c.Text()})
	}

	body, err := json.Marshal(chatRequest{Model: p.model, Messages: msgs})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiBase+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: chat completion request: %w", p.name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return "", fmt.Errorf("%s: read response: %w", p.name, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s: chat completion HTTP %d: %s", p.name, resp.StatusCode, firstLine(raw))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("%s: decode response: %w", p.name, err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("%s: API error (%s): %s", p.name, parsed.Error.Type, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%s: no choices in response", p.name)
	}

	slog.Debug("chat completion ok",
		"provider", p.name,
		"model", p.model,
		"messages", len(msgs),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return parsed.Choices[0].Message.Content, nil
}

func firstLine(b []byte) string {
	s := strings.TrimSpace(string(b))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 300 {
		s = s[:300]
	}
	return s
}
