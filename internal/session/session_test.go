package session

import (
	"testing"

	"github.com/taskforge/taskforge/internal/llm"
)

func TestSession_AppendOnlyOrder(t *testing.T) {
	s := New("sess-1")
	s.PushUser("objective")
	s.PushModel("raw model text")
	s.PushToolResult(`Tool result: "ok"`)
	s.PushModel("answer text")

	h := s.Snapshot()
	if len(h) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(h))
	}
	wantRoles := []string{RoleUser, RoleModel, RoleTool, RoleModel}
	for i, want := range wantRoles {
		if h[i].Role != want {
			t.Errorf("entry %d: expected role %s, got %s", i, want, h[i].Role)
		}
	}
	for _, m := range h {
		if m.ID == "" {
			t.Error("every entry should carry an id")
		}
	}
}

func TestSession_Monotonicity(t *testing.T) {
	s := New("")
	prev := 0
	for i := 0; i < 50; i++ {
		switch i % 3 {
		case 0:
			s.PushUser("u")
		case 1:
			s.PushModel("m")
		default:
			s.PushToolResult("t")
		}
		if s.Len() <= prev {
			t.Fatalf("history shrank at step %d", i)
		}
		prev = s.Len()
	}
}

func TestProjectForLLM_RemapsToolToUser(t *testing.T) {
	s := New("sess-2")
	s.PushUser("do the thing")
	s.PushModel("calling a tool")
	s.PushToolResult(`Tool result: "done"`)

	got := s.ProjectForLLM()
	if len(got) != 3 {
		t.Fatalf("expected 3 contents, got %d", len(got))
	}
	if got[2].Role != llm.RoleUser {
		t.Errorf("tool entry should project as user, got %s", got[2].Role)
	}
	if got[2].Text() != `Tool result: "done"` {
		t.Errorf("unexpected projected text: %q", got[2].Text())
	}
}

func TestProjectForLLM_DropsUnknownRoles(t *testing.T) {
	s := New("sess-3")
	s.PushUser("hello")
	s.push("canvas", "should be dropped")
	s.PushModel("world")

	got := s.ProjectForLLM()
	if len(got) != 2 {
		t.Fatalf("expected unknown role dropped, got %d contents", len(got))
	}
}

func TestProjectForLLM_NotCached(t *testing.T) {
	s := New("sess-4")
	s.PushUser("one")
	if n := len(s.ProjectForLLM()); n != 1 {
		t.Fatalf("expected 1, got %d", n)
	}
	s.PushModel("two")
	if n := len(s.ProjectForLLM()); n != 2 {
		t.Fatalf("projection must see new entries, got %d", n)
	}
}

func TestWorkingContext(t *testing.T) {
	s := New("sess-5")
	s.SetContext("lastAction", "echo")
	s.SetContext("currentFile", "/tmp/a.txt")
	if s.Context("lastAction") != "echo" {
		t.Error("lastAction not recorded")
	}
	snap := s.ContextSnapshot()
	snap["lastAction"] = "mutated"
	if s.Context("lastAction") != "echo" {
		t.Error("snapshot must be a copy")
	}
}
