package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Agent.MaxIterations != 10 {
		t.Errorf("maxIterations = %d, want 10", cfg.Agent.MaxIterations)
	}
	if cfg.Agent.ToolTimeoutSeconds != 60 {
		t.Errorf("toolTimeoutSeconds = %d, want 60", cfg.Agent.ToolTimeoutSeconds)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("redis addr = %q", cfg.Redis.Addr)
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "cfg.yaml", `
agent:
  maxIterations: 25
llm:
  model: gpt-4o-mini
queue:
  cap: 3
  drop: new
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Agent.MaxIterations != 25 {
		t.Errorf("maxIterations = %d", cfg.Agent.MaxIterations)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("model = %q", cfg.LLM.Model)
	}
	if cfg.Queue.Cap != 3 || cfg.Queue.Drop != "new" {
		t.Errorf("queue = %+v", cfg.Queue)
	}
	// Untouched sections keep defaults.
	if cfg.Worker.Concurrency != 4 {
		t.Errorf("concurrency = %d, want default 4", cfg.Worker.Concurrency)
	}
}

func TestLoad_JSON5(t *testing.T) {
	path := writeFile(t, "cfg.json5", `{
  // comments are allowed
  agent: { maxIterations: 7, toolTimeoutSeconds: 0 },
  mcp: { servers: [ { name: "files", command: "mcp-fs", prefix: "fs" } ] },
}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Agent.MaxIterations != 7 {
		t.Errorf("maxIterations = %d", cfg.Agent.MaxIterations)
	}
	if cfg.Agent.ToolTimeoutSeconds != 0 {
		t.Errorf("explicit 0 timeout was not preserved: %d", cfg.Agent.ToolTimeoutSeconds)
	}
	if len(cfg.MCP.Servers) != 1 || cfg.MCP.Servers[0].Prefix != "fs" {
		t.Errorf("mcp servers = %+v", cfg.MCP.Servers)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("AGENT_MAX_ITERATIONS", "3")
	t.Setenv("LLM_API_KEY", "sk-test")
	t.Setenv("REDIS_ADDR", "redis:6380")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Agent.MaxIterations != 3 {
		t.Errorf("maxIterations = %d, want 3", cfg.Agent.MaxIterations)
	}
	if cfg.LLM.APIKey != "sk-test" {
		t.Errorf("apiKey = %q", cfg.LLM.APIKey)
	}
	if cfg.Redis.Addr != "redis:6380" {
		t.Errorf("redis addr = %q", cfg.Redis.Addr)
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	path := writeFile(t, "cfg.yaml", "agent:\n  maxIterations: -1\n")
	if _, err := Load(path); err == nil {
		t.Error("negative maxIterations accepted")
	}

	path = writeFile(t, "cfg2.yaml", "sessions:\n  backend: cassandra\n")
	if _, err := Load(path); err == nil {
		t.Error("unknown session backend accepted")
	}
}

func TestLoad_UnknownExtension(t *testing.T) {
	path := writeFile(t, "cfg.toml", "x = 1")
	if _, err := Load(path); err == nil {
		t.Error("unsupported extension accepted")
	}
}

func TestLoopConfig(t *testing.T) {
	cfg := Default()
	cfg.Agent.ToolTimeoutSeconds = 5
	lc := cfg.LoopConfig()
	if lc.ToolTimeout != 5*time.Second {
		t.Errorf("toolTimeout = %s", lc.ToolTimeout)
	}
	if lc.MaxIterations != 10 {
		t.Errorf("maxIterations = %d", lc.MaxIterations)
	}
}

func TestNormalizeSessionName(t *testing.T) {
	cases := map[string]string{
		"":                DefaultSessionName,
		"  ":              DefaultSessionName,
		"My Project":      "my-project",
		"already-fine":    "already-fine",
		"--weird--":       "weird",
		"Ünïcode Névér!!": "n-code-n-v-r",
	}
	for in, want := range cases {
		if got := NormalizeSessionName(in); got != want {
			t.Errorf("NormalizeSessionName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path := writeFile(t, "cfg.yaml", "agent:\n  maxIterations: 5\n")

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatal(err)
	}
	w.debounce = 10 * time.Millisecond

	var latest atomic.Int64
	w.OnChange(func(cfg *Config) {
		latest.Store(int64(cfg.Agent.MaxIterations))
	})
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(path, []byte("agent:\n  maxIterations: 9\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for latest.Load() != 9 {
		if time.Now().After(deadline) {
			t.Fatalf("reload never fired, latest = %d", latest.Load())
		}
		time.Sleep(10 * time.Millisecond)
	}
}
