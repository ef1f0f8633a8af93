package tools

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// mockTool is a minimal tool for testing the registry.
type mockTool struct {
	name   string
	schema map[string]interface{}
	execFn func(ctx context.Context, args map[string]interface{}) (interface{}, error)
}

func (m *mockTool) Name() string        { return m.name }
func (m *mockTool) Description() string { return "mock tool" }
func (m *mockTool) Parameters() map[string]interface{} {
	if m.schema != nil {
		return m.schema
	}
	return map[string]interface{}{"type": "object", "properties": map[string]interface{}{}}
}
func (m *mockTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	if m.execFn != nil {
		return m.execFn(ctx, args)
	}
	return "ok", nil
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(&mockTool{name: "test_tool"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	got, ok := reg.Get("test_tool")
	if !ok {
		t.Fatal("tool not found")
	}
	if got.Name() != "test_tool" {
		t.Errorf("expected test_tool, got %s", got.Name())
	}
}

// Registration policy: a name collision is rejected, never overwritten.
func TestRegistry_RegisterDuplicateRejected(t *testing.T) {
	reg := NewRegistry()
	first := &mockTool{name: "t1"}
	if err := reg.Register(first); err != nil {
		t.Fatalf("first register: %v", err)
	}
	err := reg.Register(&mockTool{name: "t1"})
	var dup *DuplicateToolError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateToolError, got %v", err)
	}
	if dup.Name != "t1" {
		t.Errorf("expected name t1, got %s", dup.Name)
	}
	// Original registration must survive.
	got, _ := reg.Get("t1")
	if got != Tool(first) {
		t.Error("duplicate registration must not overwrite the original")
	}
}

func TestRegistry_GetAllStableOrder(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"c", "a", "b"} {
		if err := reg.Register(&mockTool{name: name}); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}
	for i := 0; i < 5; i++ {
		all := reg.GetAll()
		if len(all) != 3 {
			t.Fatalf("expected 3 tools, got %d", len(all))
		}
		if all[0].Name() != "c" || all[1].Name() != "a" || all[2].Name() != "b" {
			t.Fatalf("snapshot order changed: %s %s %s", all[0].Name(), all[1].Name(), all[2].Name())
		}
	}
}

func TestRegistry_Unregister(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(&mockTool{name: "t1"})
	reg.Unregister("t1")
	if _, ok := reg.Get("t1"); ok {
		t.Error("tool should be unregistered")
	}
	if reg.Count() != 0 {
		t.Errorf("expected 0, got %d", reg.Count())
	}
	// Name is free for re-registration now.
	if err := reg.Register(&mockTool{name: "t1"}); err != nil {
		t.Errorf("re-register after unregister: %v", err)
	}
}

func TestRegistry_ExecuteUnknownTool(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Execute(context.Background(), "missing", nil)
	var notFound *ToolNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ToolNotFoundError, got %v", err)
	}
}

func TestRegistry_ExecuteValidatesParams(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(&mockTool{
		name: "typed",
		schema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"path": map[string]interface{}{"type": "string"},
			},
			"required": []interface{}{"path"},
		},
	})

	_, err := reg.Execute(context.Background(), "typed", map[string]interface{}{})
	var invalid *InvalidParametersError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidParametersError, got %v", err)
	}
	if len(invalid.Issues) == 0 {
		t.Error("expected validation diagnostics")
	}

	result, err := reg.Execute(context.Background(), "typed", map[string]interface{}{"path": "/tmp/x"})
	if err != nil {
		t.Fatalf("valid params rejected: %v", err)
	}
	if result != "ok" {
		t.Errorf("expected ok, got %v", result)
	}
}

// Tool errors pass through the registry unchanged; propagation policy
// belongs to the loop.
func TestRegistry_ExecutePropagatesToolError(t *testing.T) {
	reg := NewRegistry()
	toolErr := errors.New("backend exploded")
	_ = reg.Register(&mockTool{
		name: "failing",
		execFn: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			return nil, toolErr
		},
	})
	_, err := reg.Execute(context.Background(), "failing", nil)
	if !errors.Is(err, toolErr) {
		t.Fatalf("expected tool error unchanged, got %v", err)
	}
}

func TestRegistry_ExecutePropagatesFinishSignal(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(&mockTool{
		name: "done",
		execFn: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			return nil, &FinishSignal{Answer: "all set"}
		},
	})
	_, err := reg.Execute(context.Background(), "done", nil)
	var finish *FinishSignal
	if !errors.As(err, &finish) {
		t.Fatalf("expected FinishSignal, got %v", err)
	}
	if finish.Answer != "all set" {
		t.Errorf("expected carried answer, got %q", finish.Answer)
	}
}

func TestRegistry_ExecuteRateLimited(t *testing.T) {
	reg := NewRegistry()
	reg.SetRateLimiter(NewRateLimiter(2))
	_ = reg.Register(&mockTool{name: "budgeted"})

	for i := 0; i < 2; i++ {
		if _, err := reg.Execute(context.Background(), "budgeted", nil); err != nil {
			t.Fatalf("execution %d: %v", i, err)
		}
	}
	_, err := reg.Execute(context.Background(), "budgeted", nil)
	if err == nil || !strings.Contains(err.Error(), "rate limit") {
		t.Fatalf("expected rate limit error, got %v", err)
	}
}

func TestRegistry_ExecuteScrubsStringOutput(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(&mockTool{
		name: "leaky",
		execFn: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			return "env dump: OPENAI_API_KEY=sk-abcdefghij1234567890ABCD done", nil
		},
	})
	result, err := reg.Execute(context.Background(), "leaky", nil)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	out, ok := result.(string)
	if !ok {
		t.Fatalf("result type = %T", result)
	}
	if strings.Contains(out, "sk-abcdefghij1234567890ABCD") {
		t.Errorf("credential reached caller: %q", out)
	}
	if !strings.Contains(out, redactedPlaceholder) {
		t.Errorf("expected placeholder in %q", out)
	}
}
