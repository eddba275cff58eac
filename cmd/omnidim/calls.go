package main

import (
	"github.com/spf13/cobra"

	omnidim "github.com/ryu-ryuk/omnidim-go"
	"github.com/ryu-ryuk/omnidim-go/internal/output"
	"github.com/ryu-ryuk/omnidim-go/internal/payload"
	"github.com/ryu-ryuk/omnidim-go/internal/views"
)

var (
	callPage     int
	callPageSize int
	callAgentID  int
	callContext  string
)

var callsCmd = &cobra.Command{
	Use:     "calls",
	Aliases: []string{"call"},
	Short:   "Dispatch calls and read call logs",
}

var callsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List call logs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		resp, err := client.Call.GetCallLogs(cmd.Context(), omnidim.CallLogOptions{
			Page:     callPage,
			PageSize: callPageSize,
			AgentID:  callAgentID,
		})
		if err != nil {
			return err
		}
		return render(cmd, resp, views.CallColumns(), views.CallListKeys...)
	},
}

var callsGetCmd = &cobra.Command{
	Use:   "get <call-log-id>",
	Short: "Show a call log with its transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := idArg(args, 0, "call log ID")
		if err != nil {
			return err
		}
		client, err := newClient()
		if err != nil {
			return err
		}
		resp, err := client.Call.GetCallLog(cmd.Context(), id)
		if err != nil {
			return err
		}
		return render(cmd, resp, nil)
	},
}

var callsDispatchCmd = &cobra.Command{
	Use:     "dispatch <agent-id> <to-number>",
	Short:   "Place an outbound call from an agent",
	Example: `  omnidim calls dispatch 42 +15551234567 --context '{"customer_name": "Ada"}'`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		agentID, err := idArg(args, 0, "agent ID")
		if err != nil {
			return err
		}
		phone, err := payload.ValidatePhone(args[1])
		if err != nil {
			return err
		}
		var ctxData map[string]any
		if callContext != "" {
			if ctxData, err = payload.ParseObject(callContext); err != nil {
				return err
			}
		}
		client, err := newClient()
		if err != nil {
			return err
		}
		resp, err := client.Call.DispatchCall(cmd.Context(), agentID, phone, ctxData)
		if err != nil {
			return err
		}
		if err := done(cmd, resp, "Call to %s dispatched", phone); err != nil {
			return err
		}
		if id, ok := output.ExtractID(resp.JSON, "id"); ok && outFormat == output.FormatTable {
			output.Info(cmd.OutOrStdout(), "Call ID: %d", id)
		}
		return nil
	},
}

func init() {
	callsListCmd.Flags().IntVar(&callPage, "page", 1, "page number")
	callsListCmd.Flags().IntVar(&callPageSize, "page-size", 30, "logs per page")
	callsListCmd.Flags().IntVar(&callAgentID, "agent-id", 0, "only logs of this agent")

	callsDispatchCmd.Flags().StringVar(&callContext, "context", "", "call context as a JSON object")

	callsCmd.AddCommand(callsListCmd, callsGetCmd, callsDispatchCmd)
	rootCmd.AddCommand(callsCmd)
}
