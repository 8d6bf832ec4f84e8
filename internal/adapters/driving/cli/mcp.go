package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lecturelens/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can search
your lectures.

Tools:
  search_lectures  rank a session's passages against a query
  ask_lectures     answer a question from a session (needs an LLM provider)

Resources:
  lecturelens://sessions
  lecturelens://sessions/{sessionId}/documents
  lecturelens://sessions/{sessionId}/documents/{documentId}

By default, the server communicates over stdio. Use --port to serve HTTP
instead, for the MCP Inspector or remote clients.

Examples:
  lecturelens mcp serve
  lecturelens mcp serve --port 8080

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "lecturelens": {
        "command": "/path/to/lecturelens",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	ports := &mcp.Ports{
		Query:   queryService,
		Session: sessionService,
		Chat:    chatService,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}
