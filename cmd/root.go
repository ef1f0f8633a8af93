// Package cmd holds the taskforge CLI.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taskforge/taskforge/internal/config"
)

var configPath string

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "taskforge",
		Short: "Autonomous LLM task agent",
		Long:  "taskforge runs LLM-driven agent jobs: it loops a model against a tool registry until the objective is answered.",
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (yaml or json5)")
	cmd.AddCommand(workerCmd())
	cmd.AddCommand(runCmd())
	cmd.AddCommand(toolsCmd())
	cmd.AddCommand(interruptCmd())
	return cmd
}

// Execute is the CLI entry point.
func Execute() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfigPath prefers the --config flag, then the env var.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return os.Getenv("TASKFORGE_CONFIG")
}

func loadConfig() *config.Config {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	setupLogging(cfg.Log)
	return cfg
}

func setupLogging(lc config.LogConfig) {
	var level slog.Level
	switch strings.ToLower(lc.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if lc.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
