package builtin

import (
	"context"
	"errors"
	"testing"

	"github.com/taskforge/taskforge/internal/tools"
)

func TestFinishTool_RaisesSignalWithResponse(t *testing.T) {
	ft := NewFinishTool()
	_, err := ft.Execute(context.Background(), map[string]interface{}{"response": "done and dusted"})
	var sig *tools.FinishSignal
	if !errors.As(err, &sig) {
		t.Fatalf("expected FinishSignal, got %v", err)
	}
	if sig.Answer != "done and dusted" {
		t.Errorf("expected carried answer, got %q", sig.Answer)
	}
}

func TestFinishTool_EmptyResponseGetsDefault(t *testing.T) {
	ft := NewFinishTool()
	_, err := ft.Execute(context.Background(), map[string]interface{}{})
	var sig *tools.FinishSignal
	if !errors.As(err, &sig) {
		t.Fatalf("expected FinishSignal, got %v", err)
	}
	if sig.Answer != DefaultFinishResponse {
		t.Errorf("expected default response, got %q", sig.Answer)
	}
}

func TestEchoTool(t *testing.T) {
	et := NewEchoTool()
	result, err := et.Execute(context.Background(), map[string]interface{}{"text": "ok"})
	if err != nil {
		t.Fatalf("echo: %v", err)
	}
	if result != "ok" {
		t.Errorf("expected ok, got %v", result)
	}
}

func TestBuiltinsRegister(t *testing.T) {
	reg := tools.NewRegistry()
	for _, tool := range []tools.Tool{NewFinishTool(), NewEchoTool()} {
		if err := reg.Register(tool); err != nil {
			t.Fatalf("register %s: %v", tool.Name(), err)
		}
	}
	if reg.Count() != 2 {
		t.Errorf("expected 2 builtins, got %d", reg.Count())
	}
}
