package main

import (
	"github.com/spf13/cobra"

	"github.com/ryu-ryuk/omnidim-go/internal/views"
)

var (
	phonePage     int
	phonePageSize int
)

var phoneCmd = &cobra.Command{
	Use:     "phone",
	Aliases: []string{"phone-numbers"},
	Short:   "Attach phone numbers to agents",
}

var phoneListCmd = &cobra.Command{
	Use:   "list",
	Short: "List imported phone numbers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		resp, err := client.PhoneNumber.List(cmd.Context(), phonePage, phonePageSize)
		if err != nil {
			return err
		}
		return render(cmd, resp, views.PhoneNumberColumns(), views.PhoneNumberListKeys...)
	},
}

var phoneAttachCmd = &cobra.Command{
	Use:   "attach <phone-number-id> <agent-id>",
	Short: "Route a phone number to an agent",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		phoneID, err := idArg(args, 0, "phone number ID")
		if err != nil {
			return err
		}
		agentID, err := idArg(args, 1, "agent ID")
		if err != nil {
			return err
		}
		client, err := newClient()
		if err != nil {
			return err
		}
		resp, err := client.PhoneNumber.Attach(cmd.Context(), phoneID, agentID)
		if err != nil {
			return err
		}
		return done(cmd, resp, "Phone number %d attached to agent %d", phoneID, agentID)
	},
}

var phoneDetachCmd = &cobra.Command{
	Use:   "detach <phone-number-id>",
	Short: "Detach a phone number from its agent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		phoneID, err := idArg(args, 0, "phone number ID")
		if err != nil {
			return err
		}
		client, err := newClient()
		if err != nil {
			return err
		}
		resp, err := client.PhoneNumber.Detach(cmd.Context(), phoneID)
		if err != nil {
			return err
		}
		return done(cmd, resp, "Phone number %d detached", phoneID)
	},
}

func init() {
	phoneListCmd.Flags().IntVar(&phonePage, "page", 1, "page number")
	phoneListCmd.Flags().IntVar(&phonePageSize, "page-size", 30, "numbers per page")

	phoneCmd.AddCommand(phoneListCmd, phoneAttachCmd, phoneDetachCmd)
	rootCmd.AddCommand(phoneCmd)
}
