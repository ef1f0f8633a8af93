package tools

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Registry manages tool registration and dispatch. Shared read-mostly
// across concurrent runs after startup; registration from discovery
// adapters (MCP registrar, config reload) may still happen at runtime.
type Registry struct {
	mu      sync.RWMutex
	tools   map[string]Tool
	order   []string // registration order, for stable GetAll
	limiter *RateLimiter
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// SetRateLimiter installs a per-session execution budget. A nil limiter
// disables the gate. Set once during startup, before runs begin.
func (r *Registry) SetRateLimiter(limiter *RateLimiter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.limiter = limiter
}

// Register adds a tool. A name collision returns DuplicateToolError —
// the registry rejects rather than overwriting so loader conflicts
// surface at startup.
func (r *Registry) Register(tool Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := tool.Name()
	if _, exists := r.tools[name]; exists {
		return &DuplicateToolError{Name: name}
	}
	r.tools[name] = tool
	r.order = append(r.order, name)
	slog.Info("tool registered", "tool", name)
	return nil
}

// Unregister removes a tool by name. Used by discovery adapters when a
// backing server disappears.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[name]; !exists {
		return
	}
	delete(r.tools, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	slog.Info("tool unregistered", "tool", name)
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// GetAll returns a snapshot of all registered tools in registration
// order. Used to build the tool catalogue for the next LLM prompt.
func (r *Registry) GetAll() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Execute looks up a tool, validates raw params against its schema,
// applies the rate-limit gate, and delegates. String output is scrubbed
// for credential shapes before it can reach the transcript; the tool's
// error comes back unchanged — including a FinishSignal — because error
// policy belongs to the loop, not the registry.
func (r *Registry) Execute(ctx context.Context, name string, rawParams map[string]interface{}) (interface{}, error) {
	r.mu.RLock()
	tool, ok := r.tools[name]
	limiter := r.limiter
	r.mu.RUnlock()
	if !ok {
		return nil, &ToolNotFoundError{Name: name}
	}

	params, issues := ValidateParams(tool.Parameters(), rawParams)
	if len(issues) > 0 {
		return nil, &InvalidParametersError{Tool: name, Issues: issues}
	}

	rc := RunContextFrom(ctx)
	if limiter != nil {
		if err := limiter.Allow(rateKey(rc)); err != nil {
			rc.Log.Warn("tool rate limited", "tool", name)
			return nil, err
		}
	}
	rc.Log.Info("executing tool", "tool", name, "params", params)

	start := time.Now()
	result, err := tool.Execute(ctx, params)
	rc.Log.Debug("tool executed",
		"tool", name,
		"duration_ms", time.Since(start).Milliseconds(),
		"error", err != nil,
	)
	if s, isString := result.(string); isString {
		result = ScrubCredentials(s)
	}
	return result, err
}

func rateKey(rc *RunContext) string {
	if rc.Session != nil {
		return rc.Session.ID
	}
	if rc.JobID != "" {
		return rc.JobID
	}
	return "global"
}
