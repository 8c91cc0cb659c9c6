// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Enables LLM agents like Claude to use the todo memory via stdio
package commands

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/harper/todo-agent/internal/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs the todo memory as an MCP (Model Context Protocol) server,
enabling LLM agents like Claude to manage your to-do list via stdio.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by an agent host)
  todo mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "todo": {
  #       "command": "todo",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

func runMCP(cmd *cobra.Command, args []string) error {
	mgr, cfg, err := openManager()
	if err != nil {
		return err
	}

	server := mcp.NewServer(mgr)

	log.Info("todo MCP server starting on stdio", "memory", cfg.MemoryPath())
	if err := mcpserver.ServeStdio(server); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
