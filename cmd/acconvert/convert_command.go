package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/acrelay/pkg/relaysdk"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var (
		file   string
		agent  string
		format string
		mode   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "convert [criteria]",
		Short: "Submit acceptance criteria and wait for the converted result",
		Long: "Submit acceptance criteria and wait for the converted result.\n\n" +
			"Criteria are read from the argument, from --file, or from stdin when neither is given.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			criteria, err := readCriteria(cmd.InOrStdin(), args, file)
			if err != nil {
				return err
			}

			if mode != "" {
				cfg.Mode = mode
				if err := cfg.normalize(); err != nil {
					return err
				}
			}

			client, session := ctx.session(cfg)
			conv := relaysdk.NewConverter(client, session)
			conv.Mode = relaysdk.Mode(cfg.Mode)
			conv.PollInterval = cfg.pollInterval
			conv.AwaitTimeout = cfg.timeout

			job := relaysdk.Job{
				Criteria:     criteria,
				Agent:        firstNonEmpty(agent, cfg.Agent),
				OutputFormat: firstNonEmpty(format, cfg.OutputFormat),
			}

			out := cmd.OutOrStdout()
			color.New(color.FgCyan).Fprintf(cmd.ErrOrStderr(), "Converting with %s (%s)...\n", job.Agent, job.OutputFormat)

			outcome, err := conv.Submit(cmd.Context(), job)
			if err != nil {
				return describeError(err)
			}

			if outcome.Status == relaysdk.StatusTimedOut {
				color.New(color.FgYellow).Fprintln(cmd.ErrOrStderr(), outcome.Message)
				return nil
			}

			if asJSON {
				raw, err := outcome.Result.MarshalJSON()
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(raw))
				return nil
			}

			color.New(color.FgGreen).Fprintf(cmd.ErrOrStderr(), "Received via %s\n", outcome.Via)
			fmt.Fprintln(out, outcome.Text())
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read criteria from a file")
	cmd.Flags().StringVar(&agent, "agent", "", "AI agent the workflow should use")
	cmd.Flags().StringVar(&format, "format", "", "Output format requested from the workflow")
	cmd.Flags().StringVar(&mode, "mode", "", "Result mode: auto, direct or async")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw result JSON")

	return cmd
}

func readCriteria(stdin io.Reader, args []string, file string) (string, error) {
	var raw string
	switch {
	case len(args) == 1:
		raw = args[0]
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read criteria: %w", err)
		}
		raw = string(b)
	default:
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read criteria: %w", err)
		}
		raw = string(b)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("acceptance criteria are required")
	}
	return raw, nil
}

// describeError turns SDK sentinels into something a person can act on.
func describeError(err error) error {
	switch {
	case errors.Is(err, relaysdk.ErrNoSecretProvided):
		return errors.New("no client secret provided (set ACCONVERT_CLIENT_SECRET or run interactively)")
	case errors.Is(err, relaysdk.ErrUnauthorized):
		return fmt.Errorf("not authorized, check the client secret: %w", err)
	}
	return err
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
