package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"udalist/internal/history"
	"udalist/internal/textutil"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Browse recorded generation runs",
	}
	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	return historyCmd
}

func (c *commandContext) withHistory(fn func(*history.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		return errors.New("history is disabled (set history.enabled = true)")
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, runs)
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						shortID(run.ID),
						humanize.Time(run.StartedAt),
						run.Source + " -> " + run.Target,
						strconv.Itoa(run.ManifestCount),
						run.CheckStatus,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Started", "Domains", "Manifests", "Check"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to show (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print as JSON")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a run and the manifests it wrote (ID prefixes accepted)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				run, err := store.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, run)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderRun(run))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print as JSON")
	return cmd
}

func renderRun(run *history.Run) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run:        %s\n", run.ID)
	fmt.Fprintf(&b, "Started:    %s (%s)\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"), humanize.Time(run.StartedAt))
	fmt.Fprintf(&b, "Duration:   %s\n", run.Duration().Round(time.Millisecond))
	fmt.Fprintf(&b, "Root:       %s\n", run.RootDir)
	fmt.Fprintf(&b, "Output:     %s\n", run.OutputDir)
	fmt.Fprintf(&b, "Domains:    %s -> %s (split aware: %s)\n", run.Source, run.Target, yesNo(run.SplitAware))
	check := run.CheckStatus
	if len(run.CheckDifference) > 0 {
		check += " (" + strings.Join(run.CheckDifference, ", ") + ")"
	}
	fmt.Fprintf(&b, "Check:      %s\n", check)

	rows := make([][]string, 0, len(run.Manifests))
	for _, m := range run.Manifests {
		if m.Missing {
			rows = append(rows, []string{textutil.DisplayName(m.Domain), m.Split, "-", "-", "-", "missing"})
			continue
		}
		rows = append(rows, []string{
			textutil.DisplayName(m.Domain),
			m.Split,
			strconv.Itoa(m.Classes),
			humanize.Comma(int64(m.Lines)),
			humanize.Bytes(uint64(m.Bytes)),
			m.Path,
		})
	}
	b.WriteString(renderTable(
		[]string{"Domain", "Split", "Classes", "Images", "Size", "Manifest"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
	))
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
