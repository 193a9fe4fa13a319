package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Sumatoshi-tech/punctscan/internal/punctuation"
)

const msgNoRecords = "No documents analyzed"

// WriteTable renders records as a terminal table. Categories are rows and
// documents are columns, so wide category sets stay readable.
func WriteTable(w io.Writer, records []punctuation.Record) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, msgNoRecords)
		if err != nil {
			return fmt.Errorf("write table: %w", err)
		}

		return nil
	}

	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Format.Header = text.FormatDefault
	tbl.Style().Format.Footer = text.FormatDefault

	header := table.Row{"category"}
	for _, rec := range records {
		header = append(header, rec.Filename)
	}

	tbl.AppendHeader(header)

	words := table.Row{punctuation.FieldWordCount}
	for _, rec := range records {
		words = append(words, rec.WordCount)
	}

	tbl.AppendRow(words)
	tbl.AppendSeparator()

	for _, cat := range punctuation.AllCategories() {
		r := table.Row{cat.Label()}
		for _, rec := range records {
			r = append(r, rec.Counts[cat])
		}

		tbl.AppendRow(r)
	}

	totals := table.Row{"total marks"}
	for _, rec := range records {
		totals = append(totals, rec.Counts.Total())
	}

	tbl.AppendFooter(totals)

	configs := make([]table.ColumnConfig, 0, len(records))
	for i := range records {
		configs = append(configs, table.ColumnConfig{Number: i + 2, Align: text.AlignRight, AlignFooter: text.AlignRight})
	}

	tbl.SetColumnConfigs(configs)
	tbl.Render()

	return nil
}
