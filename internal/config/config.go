// Package config loads and watches the taskforge configuration.
// Files may be YAML (.yaml/.yml) or JSON5 (.json5/.json); environment
// variables override files, and defaults fill in the rest.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/titanous/json5"
	"gopkg.in/yaml.v3"

	"github.com/taskforge/taskforge/internal/agent"
	"github.com/taskforge/taskforge/internal/mcp"
	"github.com/taskforge/taskforge/internal/scheduler"
)

// Config is the root configuration.
type Config struct {
	LLM      LLMConfig      `json:"llm" yaml:"llm"`
	Agent    AgentConfig    `json:"agent" yaml:"agent"`
	Redis    RedisConfig    `json:"redis" yaml:"redis"`
	Worker   WorkerConfig   `json:"worker" yaml:"worker"`
	Queue    QueueConfig    `json:"queue" yaml:"queue"`
	Sessions SessionsConfig `json:"sessions" yaml:"sessions"`
	MCP      MCPConfig      `json:"mcp" yaml:"mcp"`
	Log      LogConfig      `json:"log" yaml:"log"`
}

type LLMConfig struct {
	Provider      string `json:"provider" yaml:"provider"`
	Model         string `json:"model" yaml:"model"`
	APIKey        string `json:"apiKey" yaml:"apiKey"`
	APIBase       string `json:"apiBase" yaml:"apiBase"`
	ContextWindow int    `json:"contextWindow" yaml:"contextWindow"`
}

type AgentConfig struct {
	MaxIterations int `json:"maxIterations" yaml:"maxIterations"`
	// ToolTimeoutSeconds bounds one tool execution. Explicit 0 disables
	// the bound.
	ToolTimeoutSeconds int `json:"toolTimeoutSeconds" yaml:"toolTimeoutSeconds"`
	// MaxToolCallsPerHour caps tool executions per session. 0 disables
	// the limit.
	MaxToolCallsPerHour int `json:"maxToolCallsPerHour" yaml:"maxToolCallsPerHour"`
}

type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
}

type WorkerConfig struct {
	Concurrency int `json:"concurrency" yaml:"concurrency"`
}

type QueueConfig struct {
	Cap  int    `json:"cap" yaml:"cap"`
	Drop string `json:"drop" yaml:"drop"`
}

type SessionsConfig struct {
	// Backend is "memory", "file", or "redis".
	Backend string `json:"backend" yaml:"backend"`
	Dir     string `json:"dir" yaml:"dir"`
}

type MCPConfig struct {
	Servers []mcp.ServerConfig `json:"servers" yaml:"servers"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"` // "text" or "json"
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:      "openai",
			Model:         "gpt-4o",
			APIBase:       "https://api.openai.com/v1",
			ContextWindow: 128000,
		},
		Agent: AgentConfig{
			MaxIterations:      10,
			ToolTimeoutSeconds: 60,
		},
		Redis:    RedisConfig{Addr: "localhost:6379"},
		Worker:   WorkerConfig{Concurrency: 4},
		Queue:    QueueConfig{Cap: 10, Drop: string(scheduler.DropOld)},
		Sessions: SessionsConfig{Backend: "memory", Dir: "./data/sessions"},
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path on top of the defaults and applies env overrides.
// An empty path loads defaults plus env only.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse yaml config: %w", err)
			}
		case ".json", ".json5":
			if err := json5.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse json config: %w", err)
			}
		default:
			return nil, fmt.Errorf("unsupported config extension %q", filepath.Ext(path))
		}
	}
	applyEnv(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.LLM.APIKey, "LLM_API_KEY")
	setString(&cfg.LLM.APIBase, "LLM_API_BASE")
	setString(&cfg.LLM.Model, "LLM_MODEL")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setInt(&cfg.Agent.MaxIterations, "AGENT_MAX_ITERATIONS")
	setInt(&cfg.Agent.ToolTimeoutSeconds, "AGENT_TOOL_TIMEOUT_SECONDS")
	setInt(&cfg.Agent.MaxToolCallsPerHour, "AGENT_MAX_TOOL_CALLS_PER_HOUR")
	setInt(&cfg.Worker.Concurrency, "WORKER_CONCURRENCY")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return
		}
		*dst = n
	}
}

func (c *Config) validate() error {
	if c.Agent.MaxIterations <= 0 {
		return fmt.Errorf("agent.maxIterations must be positive, got %d", c.Agent.MaxIterations)
	}
	if c.Agent.ToolTimeoutSeconds < 0 {
		return fmt.Errorf("agent.toolTimeoutSeconds must not be negative, got %d", c.Agent.ToolTimeoutSeconds)
	}
	if c.Agent.MaxToolCallsPerHour < 0 {
		return fmt.Errorf("agent.maxToolCallsPerHour must not be negative, got %d", c.Agent.MaxToolCallsPerHour)
	}
	switch c.Sessions.Backend {
	case "memory", "file", "redis":
	default:
		return fmt.Errorf("sessions.backend must be memory, file, or redis, got %q", c.Sessions.Backend)
	}
	return nil
}

// LoopConfig converts the file-level settings into the loop's config.
func (c *Config) LoopConfig() agent.Config {
	return agent.Config{
		MaxIterations: c.Agent.MaxIterations,
		ToolTimeout:   time.Duration(c.Agent.ToolTimeoutSeconds) * time.Second,
		ContextWindow: c.LLM.ContextWindow,
	}
}

// SchedulerConfig converts the queue settings.
func (c *Config) SchedulerConfig() scheduler.Config {
	return scheduler.Config{
		Cap:  c.Queue.Cap,
		Drop: scheduler.DropPolicy(c.Queue.Drop),
	}
}
