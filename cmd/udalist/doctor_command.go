package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"udalist/internal/generate"
	"udalist/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check directories and state files before a build",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			for _, line := range renderSectionHeader("Preflight", colorize) {
				fmt.Fprintln(out, line)
			}
			results := preflight.RunAll(cfg)
			for _, r := range results {
				fmt.Fprintln(out, renderStatusLine(r.Name, preflightKind(r), r.Detail, colorize))
			}

			fmt.Fprintln(out)
			for _, line := range renderSectionHeader("Classes", colorize) {
				fmt.Fprintln(out, line)
			}
			report, err := generate.Check(cfg)
			if err != nil {
				fmt.Fprintln(out, renderStatusLine("Class check", statusError, err.Error(), colorize))
			} else {
				fmt.Fprintln(out, renderCheckLine(report, colorize))
			}

			if blocking := preflight.Blocking(results); len(blocking) > 0 {
				return fmt.Errorf("%d required check(s) failed", len(blocking))
			}
			return nil
		},
	}
}
