package main

import (
	"github.com/spf13/cobra"

	"github.com/ryu-ryuk/omnidim-go/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the API as MCP tools over stdio",
	Long: `Start a Model Context Protocol server on stdin/stdout.

Tools: dispatch_a_call, create_assistant, list_assistants, get_assistant,
list_call_logs, get_call_log, list_simulations, start_simulation.
Resources: assistants://{page}/{page_size} and assistants://{assistant_id}.

Logs go to stderr so they never corrupt the protocol stream.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		logger.Info("starting mcp server", "base_url", client.BaseURL())
		return mcpserver.New(client, logger).ServeStdio(version)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
