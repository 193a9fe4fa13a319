package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/punctscan/internal/analyzer"
	"github.com/Sumatoshi-tech/punctscan/internal/observability"
	"github.com/Sumatoshi-tech/punctscan/internal/punctuation"
	"github.com/Sumatoshi-tech/punctscan/internal/report"
	"github.com/Sumatoshi-tech/punctscan/internal/safeconv"
)

// ErrDocumentsFailed is returned when at least one document could not be analyzed.
var ErrDocumentsFailed = errors.New("some documents failed")

const outputFileMode = 0o644

type analyzeOptions struct {
	format   string
	output   string
	chartOut string
	htmlOut  string
	marks    []string
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(global *GlobalOptions) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <file.docx>...",
		Short: "Analyze punctuation in DOCX documents",
		Long: `Analyze counts punctuation marks in each document, prints a summary in the
requested format and optionally renders a line chart over all documents.

Documents that fail to parse are reported and skipped; the summary covers the
rest.`,
		Example: `  punctscan analyze essay.docx
  punctscan analyze *.docx --format csv --output summary.csv
  punctscan analyze a.docx b.docx --chart graph.png --marks commas,full_stops`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, global, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", report.FormatTable, "output format: table, csv, json or yaml")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the summary to this file instead of stdout")
	cmd.Flags().StringVar(&opts.chartOut, "chart", "", "write a PNG line chart to this file")
	cmd.Flags().StringVar(&opts.htmlOut, "html", "", "write an interactive HTML chart to this file")
	cmd.Flags().StringSliceVar(&opts.marks, "marks", nil, "categories to chart (default: all)")

	return cmd
}

func runAnalyze(cmd *cobra.Command, global *GlobalOptions, opts *analyzeOptions, paths []string) error {
	format, err := report.ValidateFormat(opts.format)
	if err != nil {
		return err
	}

	var categories []punctuation.Category

	if cmd.Flags().Changed("marks") {
		categories, err = punctuation.ParseCategories(opts.marks)
		if err != nil {
			return fmt.Errorf("--marks: %w", err)
		}
	}

	ctx := cmd.Context()

	rt, err := newApp(global, observability.ModeCLI)
	if err != nil {
		return err
	}
	defer rt.close(ctx)

	status := cmd.ErrOrStderr()
	if global.Quiet {
		status = io.Discard
	}

	failed := analyzeFiles(ctx, rt.svc, paths, status)
	if failed == len(paths) {
		return fmt.Errorf("%w: %d of %d", ErrDocumentsFailed, failed, len(paths))
	}

	summary, err := rt.svc.Report(ctx, format)
	if err != nil {
		return err
	}

	err = writeOutput(cmd.OutOrStdout(), opts.output, summary)
	if err != nil {
		return err
	}

	req := analyzer.ChartRequest{Categories: categories}

	if opts.chartOut != "" {
		err = exportFile(opts.chartOut, status, func() ([]byte, error) { return rt.svc.ExportChart(ctx, req) })
		if err != nil {
			return err
		}
	}

	if opts.htmlOut != "" {
		err = exportFile(opts.htmlOut, status, func() ([]byte, error) { return rt.svc.ExportChartHTML(ctx, req) })
		if err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrDocumentsFailed, failed, len(paths))
	}

	return nil
}

// analyzeFiles analyzes every path in order and returns the failure count.
func analyzeFiles(ctx context.Context, svc *analyzer.Service, paths []string, status io.Writer) int {
	failed := 0

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			color.New(color.FgRed).Fprintf(status, "✗ %s: %v\n", path, err)

			failed++

			continue
		}

		rec, err := svc.Analyze(ctx, data, filepath.Base(path))
		if err != nil {
			color.New(color.FgRed).Fprintf(status, "✗ %s: %v\n", path, err)

			failed++

			continue
		}

		color.New(color.FgGreen).Fprintf(status, "✓ %s (%s, %s words, %s marks)\n",
			path, humanize.Bytes(safeconv.MustIntToUint64(len(data))), humanize.Comma(int64(rec.WordCount)),
			humanize.Comma(int64(rec.Counts.Total())))
	}

	return failed
}

func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := io.Copy(stdout, bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("write summary: %w", err)
		}

		return nil
	}

	err := os.WriteFile(path, data, outputFileMode)
	if err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	return nil
}

func exportFile(path string, status io.Writer, render func() ([]byte, error)) error {
	data, err := render()
	if err != nil {
		return err
	}

	err = os.WriteFile(path, data, outputFileMode)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	color.New(color.FgCyan).Fprintf(status, "→ %s (%s)\n", path, humanize.Bytes(safeconv.MustIntToUint64(len(data))))

	return nil
}
