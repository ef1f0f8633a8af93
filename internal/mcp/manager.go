package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	mcpclient "github.com/mark3labs/mcp-go/client"
	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"github.com/taskforge/taskforge/internal/tools"
)

// ServerConfig describes one MCP server to connect. Exactly one of
// Command (stdio transport) or URL (SSE transport) must be set.
type ServerConfig struct {
	Name       string            `json:"name" yaml:"name"`
	Command    string            `json:"command,omitempty" yaml:"command,omitempty"`
	Args       []string          `json:"args,omitempty" yaml:"args,omitempty"`
	Env        map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
	URL        string            `json:"url,omitempty" yaml:"url,omitempty"`
	Prefix     string            `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	TimeoutSec int               `json:"timeoutSeconds,omitempty" yaml:"timeoutSeconds,omitempty"`
	Disabled   bool              `json:"disabled,omitempty" yaml:"disabled,omitempty"`
}

type serverConn struct {
	client    *mcpclient.Client
	connected atomic.Bool
	toolNames []string
}

// Manager owns the MCP server connections and keeps the registry in
// sync with them. Reload tears everything down and reconnects, which is
// how config hot-reload applies server changes.
type Manager struct {
	mu       sync.Mutex
	registry *tools.Registry
	servers  map[string]*serverConn
	log      *slog.Logger
}

func NewManager(registry *tools.Registry) *Manager {
	return &Manager{
		registry: registry,
		servers:  make(map[string]*serverConn),
		log:      slog.Default().With("component", "mcp"),
	}
}

// ConnectAll connects every enabled server. A server that fails to
// connect is logged and skipped; one broken server must not block the
// rest of the catalogue.
func (m *Manager) ConnectAll(ctx context.Context, configs []ServerConfig) {
	for _, cfg := range configs {
		if cfg.Disabled {
			continue
		}
		if err := m.connect(ctx, cfg); err != nil {
			m.log.Error("mcp server connection failed", "server", cfg.Name, "error", err)
		}
	}
}

func (m *Manager) connect(ctx context.Context, cfg ServerConfig) error {
	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	initReq := mcpgo.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcpgo.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcpgo.Implementation{Name: "taskforge", Version: "1.0.0"}
	if _, err := client.Initialize(ctx, initReq); err != nil {
		client.Close()
		return fmt.Errorf("initialize: %w", err)
	}

	listed, err := client.ListTools(ctx, mcpgo.ListToolsRequest{})
	if err != nil {
		client.Close()
		return fmt.Errorf("list tools: %w", err)
	}

	conn := &serverConn{client: client}
	conn.connected.Store(true)

	for _, def := range listed.Tools {
		bridge := NewBridgeTool(cfg.Name, def, client, cfg.Prefix, cfg.TimeoutSec, &conn.connected)
		if err := m.registry.Register(bridge); err != nil {
			m.log.Warn("mcp tool not registered", "server", cfg.Name, "tool", bridge.Name(), "error", err)
			continue
		}
		conn.toolNames = append(conn.toolNames, bridge.Name())
	}

	m.mu.Lock()
	m.servers[cfg.Name] = conn
	m.mu.Unlock()

	m.log.Info("mcp server connected", "server", cfg.Name, "tools", len(conn.toolNames))
	return nil
}

func newClient(cfg ServerConfig) (*mcpclient.Client, error) {
	switch {
	case cfg.Command != "":
		env := make([]string, 0, len(cfg.Env))
		for k, v := range cfg.Env {
			env = append(env, k+"="+v)
		}
		return mcpclient.NewStdioMCPClient(cfg.Command, env, cfg.Args...)
	case cfg.URL != "":
		return mcpclient.NewSSEMCPClient(cfg.URL)
	default:
		return nil, fmt.Errorf("server %q has neither command nor url", cfg.Name)
	}
}

// Reload replaces the current server set with configs. Existing bridge
// tools are unregistered before the new connections register theirs.
func (m *Manager) Reload(ctx context.Context, configs []ServerConfig) {
	m.Close()
	m.ConnectAll(ctx, configs)
}

// Close disconnects every server and removes its tools from the
// registry. Safe to call twice.
func (m *Manager) Close() {
	m.mu.Lock()
	servers := m.servers
	m.servers = make(map[string]*serverConn)
	m.mu.Unlock()

	for name, conn := range servers {
		conn.connected.Store(false)
		for _, toolName := range conn.toolNames {
			m.registry.Unregister(toolName)
		}
		if err := conn.client.Close(); err != nil {
			m.log.Warn("mcp client close failed", "server", name, "error", err)
		}
	}
}

// ToolCount reports how many bridge tools are currently registered.
func (m *Manager) ToolCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, conn := range m.servers {
		n += len(conn.toolNames)
	}
	return n
}
