package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// tableSpec describes one rendered table. Footer is optional.
type tableSpec struct {
	Title   string
	Headers []string
	Rows    [][]string
	Aligns  []columnAlignment
	Footer  []string
}

func toRow(columns int, cells []string) table.Row {
	r := make(table.Row, columns)
	for i := range r {
		if i < len(cells) {
			r[i] = cells[i]
		} else {
			r[i] = ""
		}
	}
	return r
}

func (s tableSpec) render() string {
	columns := len(s.Headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	if s.Title != "" {
		tw.SetTitle(s.Title)
	}
	tw.AppendHeader(toRow(columns, s.Headers))
	for _, row := range s.Rows {
		tw.AppendRow(toRow(columns, row))
	}
	if len(s.Footer) > 0 {
		tw.AppendFooter(toRow(columns, s.Footer))
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(s.Aligns) && s.Aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
			AlignFooter: align,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	return tableSpec{Headers: headers, Rows: rows, Aligns: aligns}.render()
}
