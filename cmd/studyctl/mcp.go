package main

import (
	"github.com/spf13/cobra"

	mcpadapter "github.com/kirillkom/doc-study-gateway/internal/adapters/mcp"
)

func (c *cli) mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the study tools over MCP stdio",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			handlers := mcpadapter.NewHandlers(c.ws.Tools, c.ws.Cache, c.ws.Chat, c.ws.Sessions)
			return mcpadapter.Serve(mcpadapter.NewServer(version, handlers))
		},
	}
}
