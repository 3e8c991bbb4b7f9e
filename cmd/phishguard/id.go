package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newIDCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "id",
		Short: "Print this installation's client id",
		Long:  `Print the client id, creating and persisting one on first use.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			comps, err := opts.components(cmd.Context())
			if err != nil {
				return err
			}
			defer comps.Close()

			id, err := comps.Identity.Get(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), id)
			return err
		},
	}
}
