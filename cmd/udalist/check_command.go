package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"udalist/internal/classcheck"
	"udalist/internal/generate"
	"udalist/internal/textutil"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var strict bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Compare source and target class vocabularies without writing manifests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			report, err := generate.Check(cfg)
			if err != nil {
				return err
			}

			if jsonOutput {
				if err := writeJSON(cmd, report); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				if report.Status != classcheck.StatusSkipped {
					fmt.Fprintln(out, renderVocabularyTable(report))
				}
				fmt.Fprintln(out, renderCheckLine(report, shouldColorize(out)))
			}

			if strict && report.Status == classcheck.StatusMismatch {
				return fmt.Errorf("class vocabularies differ: %s", strings.Join(report.SymmetricDifference(), ", "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when the vocabularies differ")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the report as JSON")
	return cmd
}

func renderVocabularyTable(report classcheck.Report) string {
	rows := max(len(report.SourceVocab), len(report.TargetVocab))
	body := make([][]string, 0, rows)
	for i := 0; i < rows; i++ {
		row := []string{strconv.Itoa(i), "", ""}
		if i < len(report.SourceVocab) {
			row[1] = report.SourceVocab[i]
		}
		if i < len(report.TargetVocab) {
			row[2] = report.TargetVocab[i]
		}
		body = append(body, row)
	}
	return tableSpec{
		Headers: []string{"Label", textutil.DisplayName(report.Source), textutil.DisplayName(report.Target)},
		Rows:    body,
		Aligns:  []columnAlignment{alignRight, alignLeft, alignLeft},
	}.render()
}

func renderCheckLine(report classcheck.Report, colorize bool) string {
	var message string
	switch report.Status {
	case classcheck.StatusMatch:
		message = fmt.Sprintf("classes match (%d classes)", report.SourceCount)
	case classcheck.StatusMismatch:
		diff := report.SymmetricDifference()
		if len(diff) == 0 {
			message = fmt.Sprintf("class order differs (%d vs %d classes)", report.SourceCount, report.TargetCount)
		} else {
			message = fmt.Sprintf("class mismatch: %s has %d, %s has %d; only on one side: %s",
				report.Source, report.SourceCount, report.Target, report.TargetCount, strings.Join(diff, ", "))
		}
	default:
		message = "skipped (a domain has no classes)"
	}
	return renderStatusLine("Class check", checkKind(report.Status), message, colorize)
}
