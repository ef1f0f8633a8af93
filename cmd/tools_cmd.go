package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/taskforge/taskforge/internal/mcp"
)

func toolsCmd() *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tools available to the agent",
		Long:  "Shows builtin tools plus everything the configured MCP servers expose.",
		Run: func(cmd *cobra.Command, args []string) {
			runToolsList(jsonOutput)
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

type toolListEntry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Server      string `json:"server,omitempty"`
}

func runToolsList(jsonOutput bool) {
	cfg := loadConfig()

	ctx := context.Background()
	registry := buildRegistry(cfg)
	manager := mcp.NewManager(registry)
	manager.ConnectAll(ctx, cfg.MCP.Servers)
	defer manager.Close()

	var entries []toolListEntry
	for _, tool := range registry.GetAll() {
		entry := toolListEntry{Name: tool.Name(), Description: tool.Description()}
		if bridge, ok := tool.(*mcp.BridgeTool); ok {
			entry.Server = bridge.ServerName()
		}
		entries = append(entries, entry)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(entries); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSERVER\tDESCRIPTION")
	for _, e := range entries {
		server := e.Server
		if server == "" {
			server = "builtin"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Name, server, e.Description)
	}
	w.Flush()
}
