package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/taskforge/taskforge/internal/bus"
	"github.com/taskforge/taskforge/internal/config"
	"github.com/taskforge/taskforge/internal/jobs"
	"github.com/taskforge/taskforge/internal/llm"
	"github.com/taskforge/taskforge/internal/mcp"
	"github.com/taskforge/taskforge/internal/store"
	"github.com/taskforge/taskforge/internal/tools"
	"github.com/taskforge/taskforge/internal/tools/builtin"
	"github.com/taskforge/taskforge/internal/worker"
)

func workerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the job worker",
		Long:  "Consumes pending jobs from Redis and executes agent runs until stopped.",
		Run: func(cmd *cobra.Command, args []string) {
			runWorker()
		},
	}
}

func runWorker() {
	cfg := loadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: redis unreachable at %s: %v\n", cfg.Redis.Addr, err)
		os.Exit(1)
	}
	defer client.Close()

	registry := buildRegistry(cfg)
	manager := mcp.NewManager(registry)
	manager.ConnectAll(ctx, cfg.MCP.Servers)
	defer manager.Close()

	if path := resolveConfigPath(); path != "" {
		watcher, err := config.NewWatcher(path)
		if err != nil {
			slog.Warn("config watcher unavailable", "error", err)
		} else {
			watcher.OnChange(func(next *config.Config) {
				manager.Reload(ctx, next.MCP.Servers)
			})
			if err := watcher.Start(); err != nil {
				slog.Warn("config watcher failed to start", "error", err)
			} else {
				defer watcher.Stop()
			}
		}
	}

	sessions, err := buildSessionStore(cfg, client)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	redisStore := jobs.NewRedisStore(client)
	w := worker.New(worker.Options{
		Queue:        redisStore,
		Store:        redisStore,
		Sessions:     sessions,
		Registry:     registry,
		Provider:     buildProvider(cfg),
		Transport:    bus.NewRedisTransport(client),
		Concurrency:  cfg.Worker.Concurrency,
		Agent:        cfg.LoopConfig(),
		SchedulerCfg: cfg.SchedulerConfig(),
	})

	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "Error: worker stopped: %v\n", err)
		os.Exit(1)
	}
	slog.Info("worker shut down")
}

func buildRegistry(cfg *config.Config) *tools.Registry {
	registry := tools.NewRegistry()
	registry.SetRateLimiter(tools.NewRateLimiter(cfg.Agent.MaxToolCallsPerHour))
	for _, tool := range []tools.Tool{builtin.NewFinishTool(), builtin.NewEchoTool()} {
		if err := registry.Register(tool); err != nil {
			slog.Error("builtin registration failed", "tool", tool.Name(), "error", err)
		}
	}
	return registry
}

func buildProvider(cfg *config.Config) llm.Provider {
	return llm.NewOpenAIProvider(cfg.LLM.Provider, cfg.LLM.APIKey, cfg.LLM.APIBase, cfg.LLM.Model)
}

func buildSessionStore(cfg *config.Config, client *redis.Client) (store.SessionStore, error) {
	switch cfg.Sessions.Backend {
	case "file":
		return store.NewFileSessionStore(cfg.Sessions.Dir)
	case "redis":
		return store.NewRedisSessionStore(client), nil
	default:
		return store.NewMemorySessionStore(), nil
	}
}
