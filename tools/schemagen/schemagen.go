// Package main generates JSON schemas for the punctscan exports and API bodies.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Sumatoshi-tech/punctscan/internal/report"
	"github.com/Sumatoshi-tech/punctscan/internal/server"
)

const (
	dirMode  = 0o755
	fileMode = 0o644
)

var outputDir string

func main() {
	flag.StringVar(&outputDir, "o", "docs/schemas", "Output directory for schemas")
	flag.Parse()

	if err := os.MkdirAll(outputDir, dirMode); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	schemas := map[string]map[string]any{
		"punctuation_summary":  report.RecordsSchema(),
		"record_chart_request": server.ChartRequestSchema(),
	}

	for name, schema := range schemas {
		if err := writeSchema(name, schema); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing schema for %s: %v\n", name, err)
			os.Exit(1)
		}

		fmt.Printf("Generated schema for %s\n", name)
	}

	fmt.Println("All schemas generated successfully")
}

func writeSchema(name string, schema map[string]any) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	path := filepath.Join(outputDir, name+".json")

	return os.WriteFile(path, append(data, '\n'), fileMode)
}
