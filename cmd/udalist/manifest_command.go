package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"udalist/internal/fileutil"
	"udalist/internal/manifest"
)

type manifestStatsOutput struct {
	Path     string        `json:"path"`
	Bytes    int64         `json:"bytes"`
	Lines    int           `json:"lines"`
	MaxLabel int           `json:"max_label"`
	Labels   []labelOutput `json:"labels"`
}

type labelOutput struct {
	Label int `json:"label"`
	Count int `json:"count"`
}

func newManifestCommand() *cobra.Command {
	manifestCmd := &cobra.Command{
		Use:         "manifest",
		Short:       "Manifest file utilities",
		Annotations: map[string]string{"skipConfigLoad": "true"},
	}
	manifestCmd.AddCommand(newManifestStatsCommand())
	return manifestCmd
}

func newManifestStatsCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats <manifest>...",
		Short: "Summarize records per label in manifest files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results := make([]manifestStatsOutput, 0, len(args))
			for _, path := range args {
				entries, err := manifest.ReadFile(path)
				if err != nil {
					return err
				}
				stats := manifest.Summarize(entries)
				item := manifestStatsOutput{
					Path:     path,
					Bytes:    fileutil.FileSize(path),
					Lines:    stats.Lines,
					MaxLabel: stats.MaxLabel,
				}
				for _, lc := range stats.Labels {
					item.Labels = append(item.Labels, labelOutput{Label: lc.Label, Count: lc.Count})
				}
				results = append(results, item)
			}

			if jsonOutput {
				return writeJSON(cmd, results)
			}
			out := cmd.OutOrStdout()
			for i, r := range results {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintln(out, renderManifestStats(r))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print as JSON")
	return cmd
}

func renderManifestStats(r manifestStatsOutput) string {
	rows := make([][]string, 0, len(r.Labels))
	for _, l := range r.Labels {
		share := "0%"
		if r.Lines > 0 {
			share = humanize.FtoaWithDigits(float64(l.Count)*100/float64(r.Lines), 1) + "%"
		}
		rows = append(rows, []string{strconv.Itoa(l.Label), humanize.Comma(int64(l.Count)), share})
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s, %s records)\n", r.Path, humanize.Bytes(uint64(r.Bytes)), humanize.Comma(int64(r.Lines)))
	b.WriteString(tableSpec{
		Headers: []string{"Label", "Records", "Share"},
		Rows:    rows,
		Aligns:  []columnAlignment{alignRight, alignRight, alignRight},
	}.render())
	return b.String()
}
