package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"udalist/internal/datasets"
	"udalist/internal/imagelist"
	"udalist/internal/textutil"
)

type inspectClass struct {
	Label int    `json:"label"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type inspectSample struct {
	Path  string `json:"path"`
	Label int    `json:"label"`
	Class string `json:"class"`
}

type inspectOutput struct {
	Dataset  string          `json:"dataset"`
	Task     string          `json:"task"`
	Split    string          `json:"split,omitempty"`
	Manifest string          `json:"manifest"`
	Samples  int             `json:"samples"`
	Classes  []inspectClass  `json:"classes"`
	Head     []inspectSample `json:"head,omitempty"`
}

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var (
		split       string
		root        string
		datasetName string
		limit       int
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:         "inspect <task>",
		Short:       "Load a generated manifest through a dataset registry",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := datasets.Lookup(datasetName)
			if err != nil {
				return err
			}
			if strings.TrimSpace(root) == "" {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return fmt.Errorf("%w (or pass --root)", err)
				}
				root = cfg.OutputDir
			}

			task := args[0]
			var list *imagelist.List
			if split == "" {
				list, err = ds.New(root, task)
			} else {
				list, err = ds.NewSplit(root, task, split)
			}
			if err != nil {
				return err
			}

			result := buildInspectOutput(ds, task, split, list, limit)
			if jsonOutput {
				return writeJSON(cmd, result)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderInspect(result))
			return nil
		},
	}

	cmd.Flags().StringVar(&split, "split", "", "Split name; empty loads the flat {task}_list.txt manifest")
	cmd.Flags().StringVar(&root, "root", "", "Directory holding manifests (defaults to output_dir from the config)")
	cmd.Flags().StringVar(&datasetName, "dataset", datasets.NeuroDomainVegFru.Name, "Dataset registry name")
	cmd.Flags().IntVar(&limit, "limit", 5, "Number of leading samples to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print as JSON")
	return cmd
}

func buildInspectOutput(ds *datasets.Dataset, task, split string, list *imagelist.List, limit int) inspectOutput {
	out := inspectOutput{
		Dataset:  ds.Name,
		Task:     task,
		Split:    split,
		Manifest: list.ManifestPath(),
		Samples:  list.Len(),
	}
	classes := list.Classes()
	for label, count := range list.ClassCounts() {
		out.Classes = append(out.Classes, inspectClass{Label: label, Name: classes[label], Count: count})
	}
	for i := 0; i < min(limit, list.Len()); i++ {
		sample, err := list.Sample(i)
		if err != nil {
			break
		}
		out.Head = append(out.Head, inspectSample{Path: sample.Path, Label: sample.Label, Class: classes[sample.Label]})
	}
	return out
}

func renderInspect(out inspectOutput) string {
	var b strings.Builder
	title := textutil.JoinNonEmpty(" / ", textutil.DisplayName(out.Task), textutil.DisplayName(out.Split))
	fmt.Fprintf(&b, "%s: %s samples from %s\n", title, humanize.Comma(int64(out.Samples)), out.Manifest)

	rows := make([][]string, 0, len(out.Classes))
	for _, c := range out.Classes {
		rows = append(rows, []string{strconv.Itoa(c.Label), c.Name, humanize.Comma(int64(c.Count))})
	}
	b.WriteString(tableSpec{
		Headers: []string{"Label", "Class", "Samples"},
		Rows:    rows,
		Aligns:  []columnAlignment{alignRight, alignLeft, alignRight},
		Footer:  []string{"", "Total", humanize.Comma(int64(out.Samples))},
	}.render())

	if len(out.Head) > 0 {
		b.WriteString("\n")
		head := make([][]string, 0, len(out.Head))
		for _, s := range out.Head {
			head = append(head, []string{s.Path, s.Class})
		}
		b.WriteString(renderTable([]string{"Path", "Class"}, head, nil))
	}
	return b.String()
}
