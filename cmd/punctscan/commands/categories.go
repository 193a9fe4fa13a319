package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/punctscan/internal/punctuation"
	"github.com/Sumatoshi-tech/punctscan/internal/report"
)

// NewCategoriesCommand creates the categories command.
func NewCategoriesCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List the punctuation categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch format {
			case report.FormatTable:
				writeCategoryTable(cmd.OutOrStdout())

				return nil
			case report.FormatJSON:
				return writeCategoryJSON(cmd.OutOrStdout())
			default:
				return fmt.Errorf("%w: %q (supported: table, json)", report.ErrUnsupportedFormat, format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", report.FormatTable, "output format: table or json")

	return cmd
}

func writeCategoryTable(w io.Writer) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.DrawBorder = false
	tbl.AppendHeader(table.Row{"name", "label"})

	for _, cat := range punctuation.AllCategories() {
		tbl.AppendRow(table.Row{cat.String(), cat.Label()})
	}

	tbl.Render()
}

func writeCategoryJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	err := enc.Encode(punctuation.Names())
	if err != nil {
		return fmt.Errorf("encode categories: %w", err)
	}

	return nil
}
