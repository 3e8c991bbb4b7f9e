package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/PhishGuard/backend/internal/messaging"
)

func newCheckCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check <url>",
		Short: "Analyze a URL the way the popup does",
		Long: `Evaluate a URL without touching any tab and print the verdict together
with its block status.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			comps, err := opts.components(cmd.Context())
			if err != nil {
				return err
			}
			defer comps.Close()

			resp := comps.Router.Handle(cmd.Context(), messaging.Message{
				Kind: messaging.KindAnalyzeForPopup,
				URL:  args[0],
			})
			if err := printJSON(cmd.OutOrStdout(), resp); err != nil {
				return err
			}
			if !resp.OK {
				return fmt.Errorf("check %s: %s", args[0], resp.Error)
			}
			return nil
		},
	}
}
