package agent

import (
	"strings"
	"testing"

	"github.com/taskforge/taskforge/internal/session"
	"github.com/taskforge/taskforge/internal/tools"
	"github.com/taskforge/taskforge/internal/tools/builtin"
)

func TestBuildSystemPrompt_ListsTools(t *testing.T) {
	sess := session.New("")
	registry := tools.NewRegistry()
	if err := registry.Register(builtin.NewEchoTool()); err != nil {
		t.Fatal(err)
	}
	if err := registry.Register(builtin.NewFinishTool()); err != nil {
		t.Fatal(err)
	}

	prompt := BuildSystemPrompt(sess, registry)

	for _, want := range []string{"### echo", "### finish", "JSON", "Parameters:"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, "Working Context") {
		t.Error("empty working context should not be rendered")
	}
}

func TestBuildSystemPrompt_RendersWorkingContext(t *testing.T) {
	sess := session.New("")
	sess.SetContext("lastAction", "echo")
	sess.SetContext("currentFile", "/tmp/notes.md")
	registry := tools.NewRegistry()

	prompt := BuildSystemPrompt(sess, registry)

	if !strings.Contains(prompt, "- lastAction: echo") {
		t.Error("lastAction missing")
	}
	if !strings.Contains(prompt, "- currentFile: /tmp/notes.md") {
		t.Error("currentFile missing")
	}
}

func TestBuildSystemPrompt_ReflectsLiveRegistry(t *testing.T) {
	sess := session.New("")
	registry := tools.NewRegistry()
	before := BuildSystemPrompt(sess, registry)
	if strings.Contains(before, "### echo") {
		t.Fatal("echo listed before registration")
	}
	if err := registry.Register(builtin.NewEchoTool()); err != nil {
		t.Fatal(err)
	}
	after := BuildSystemPrompt(sess, registry)
	if !strings.Contains(after, "### echo") {
		t.Error("prompt not rebuilt from live registry")
	}
}
