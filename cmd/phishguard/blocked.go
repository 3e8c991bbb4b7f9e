package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/PhishGuard/backend/internal/messaging"
)

func newBlockedCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blocked",
		Short: "Manage your personal block list",
	}
	cmd.AddCommand(blockedSubcommand(opts, "list", "List the URLs you blocked", messaging.KindListBlocked, cobra.NoArgs))
	cmd.AddCommand(blockedSubcommand(opts, "add <url>", "Block a URL and report it", messaging.KindSetBlock, cobra.ExactArgs(1)))
	cmd.AddCommand(blockedSubcommand(opts, "remove <url>", "Unblock a URL you blocked", messaging.KindRemoveBlock, cobra.ExactArgs(1)))
	return cmd
}

func blockedSubcommand(opts *options, use, short string, kind messaging.Kind, args cobra.PositionalArgs) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			comps, err := opts.components(cmd.Context())
			if err != nil {
				return err
			}
			defer comps.Close()

			msg := messaging.Message{Kind: kind}
			if len(args) > 0 {
				msg.URL = args[0]
			}
			resp := comps.Router.Handle(cmd.Context(), msg)
			if !resp.OK {
				return fmt.Errorf("%s: %s", kind, resp.Error)
			}
			return printJSON(cmd.OutOrStdout(), resp.Data)
		},
	}
}
