package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newResultCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "result",
		Short: "Fetch the latest result stored for the cached token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			client, session := ctx.session(cfg)
			token, err := session.GetValid(cmd.Context())
			if err != nil {
				return describeError(err)
			}

			res, found, err := client.GetResult(cmd.Context(), token)
			if err != nil {
				return describeError(err)
			}
			if !found {
				color.New(color.FgYellow).Fprintln(cmd.ErrOrStderr(), "No result yet (pending)")
				return nil
			}

			if asJSON {
				raw, err := res.MarshalJSON()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(raw))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Text())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw result JSON")
	return cmd
}
