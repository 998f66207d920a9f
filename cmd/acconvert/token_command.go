package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newTokenCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Show or refresh the cached client token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			rec, ok := ctx.tokenCache(cfg).Load()
			if !ok {
				color.New(color.FgYellow).Fprintln(cmd.OutOrStdout(), "No valid cached token")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Token valid until %s (%s left)\n",
				rec.ExpiresAt.Local().Format(time.Kitchen),
				time.Until(rec.ExpiresAt).Round(time.Second))
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "refresh",
		Short: "Exchange the client secret for a fresh token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			_, session := ctx.session(cfg)
			if _, err := session.Reauthenticate(cmd.Context()); err != nil {
				return describeError(err)
			}
			color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), "Token refreshed")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Forget the cached token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			ctx.tokenCache(cfg).Clear()
			fmt.Fprintln(cmd.OutOrStdout(), "Token cache cleared")
			return nil
		},
	})

	return cmd
}
