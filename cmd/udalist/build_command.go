package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"udalist/internal/generate"
	"udalist/internal/preflight"
	"udalist/internal/textutil"
)

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var skipPreflight bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Generate manifests for the source and target domains",
		Long: `Walk <root_dir>/<domain>[/<split>]/<class>/ for the configured source and
target domains and write one "<path> <label>" manifest per domain and split.
Class vocabularies of the two domains are compared once afterwards.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !skipPreflight {
				if blocking := preflight.Blocking(preflight.RunAll(cfg)); len(blocking) > 0 {
					details := make([]string, 0, len(blocking))
					for _, r := range blocking {
						details = append(details, r.Name+": "+r.Detail)
					}
					return errors.New("preflight failed: " + strings.Join(details, "; "))
				}
			}

			out := cmd.OutOrStdout()
			logOut := out
			if jsonOutput {
				// Keep stdout parseable.
				logOut = cmd.ErrOrStderr()
			}
			logger, err := ctx.logger(logOut)
			if err != nil {
				return err
			}

			summary, err := generate.Run(cmd.Context(), cfg, generate.Options{
				Logger:   logger,
				Progress: cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, summary)
			}

			fmt.Fprintln(out, renderBuildSummary(summary))
			fmt.Fprintln(out, renderCheckLine(summary.Check, shouldColorize(out)))
			fmt.Fprintf(out, "Run %s\n", summary.RunID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run summary as JSON")
	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Skip directory readiness checks")
	return cmd
}

func renderBuildSummary(summary *generate.Summary) string {
	rows := make([][]string, 0, len(summary.Manifests))
	for _, m := range summary.Manifests {
		split := textutil.Ternary(m.Split == "", "-", m.Split)
		if m.Result.Missing {
			rows = append(rows, []string{textutil.DisplayName(m.Domain), split, "-", "-", "-", "missing: " + m.Result.Dir})
			continue
		}
		rows = append(rows, []string{
			textutil.DisplayName(m.Domain),
			split,
			strconv.Itoa(len(m.Result.Applied)),
			humanize.Comma(int64(m.Result.Lines)),
			humanize.Bytes(uint64(m.Bytes)),
			m.Result.Output,
		})
	}
	return tableSpec{
		Headers: []string{"Domain", "Split", "Classes", "Images", "Size", "Manifest"},
		Rows:    rows,
		Aligns:  []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
		Footer:  []string{"Total", "", "", humanize.Comma(int64(summary.Lines())), "", ""},
	}.render()
}
