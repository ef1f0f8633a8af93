package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/taskforge/taskforge/internal/agent"
	"github.com/taskforge/taskforge/internal/bus"
	"github.com/taskforge/taskforge/internal/config"
	"github.com/taskforge/taskforge/internal/jobs"
	"github.com/taskforge/taskforge/internal/mcp"
	"github.com/taskforge/taskforge/internal/store"
)

func runCmd() *cobra.Command {
	var sessionName string
	cmd := &cobra.Command{
		Use:   "run <objective>",
		Short: "Run one agent job in-process and print the result",
		Long:  "Executes a single objective without Redis or a separate worker. Events stream to stdout as they happen.",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runOnce(args[0], sessionName)
		},
	}
	cmd.Flags().StringVar(&sessionName, "session", "", "session name to continue (default: fresh session)")
	return cmd
}

func runOnce(objective, sessionName string) {
	cfg := loadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	transport := bus.NewMemory()
	defer transport.Close()

	registry := buildRegistry(cfg)
	manager := mcp.NewManager(registry)
	manager.ConnectAll(ctx, cfg.MCP.Servers)
	defer manager.Close()

	sessions := store.NewMemorySessionStore()
	var sessionID string
	if sessionName != "" {
		sessionID = config.NormalizeSessionName(sessionName)
	}
	sess, err := sessions.GetOrCreate(ctx, sessionID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	sess.PushUser(objective)

	jobStore := jobs.NewMemoryStore()
	job := jobs.NewJob(objective, sess.ID)
	if err := jobStore.Create(ctx, job); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	sub, err := transport.Subscribe(ctx, bus.EventsChannel(job.ID))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	printDone := make(chan struct{})
	go func() {
		defer close(printDone)
		for payload := range sub.Messages() {
			printEvent(payload)
		}
	}()

	loop := agent.New(job, sess, registry, buildProvider(cfg), transport, jobStore, nil, cfg.LoopConfig())
	result := loop.Run(ctx)

	sub.Close()
	<-printDone

	fmt.Println(result.Answer)
	if result.Status != agent.StatusCompleted {
		os.Exit(1)
	}
}

func printEvent(payload []byte) {
	var envelope struct {
		Type     string          `json:"type"`
		Content  string          `json:"content"`
		ToolName string          `json:"toolName"`
		Data     json.RawMessage `json:"data"`
		Result   json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return
	}
	switch envelope.Type {
	case bus.TypeAgentThought:
		fmt.Printf("· %s\n", envelope.Content)
	case bus.TypeToolStart:
		fmt.Printf("→ %s\n", string(envelope.Data))
	case bus.TypeToolResult:
		fmt.Printf("← %s %s\n", envelope.ToolName, truncateForDisplay(string(envelope.Result)))
	}
}

func truncateForDisplay(s string) string {
	const max = 200
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
