// ABOUTME: MCP command starts the Model Context Protocol server
// ABOUTME: Lets LLM agents mark meals and read streaks over stdio
package commands

import (
	"github.com/spf13/cobra"

	"github.com/harper/mealstreak/internal/mcp"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs mealstreak as an MCP (Model Context Protocol) server so agents
like Claude can mark meals and read streaks via stdio.

Configure in Claude Desktop's config file to enable the tools.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by Claude Desktop)
  mealstreak mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "mealstreak": {
  #       "command": "mealstreak",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}
}

func runMCP(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	return mcp.Serve(cmd.Context(), a, versionInfo.Version)
}
