package report

import (
	"github.com/Sumatoshi-tech/punctscan/internal/punctuation"
)

// JSONSchemaDraft is the meta-schema of every schema built here.
const JSONSchemaDraft = "http://json-schema.org/draft-07/schema#"

// RecordSchema describes one flat record as written by WriteJSON.
func RecordSchema() map[string]any {
	props := make(map[string]any, punctuation.NumCategories+2)
	props[punctuation.FieldFilename] = map[string]any{"type": "string", "minLength": 1}
	props[punctuation.FieldWordCount] = map[string]any{"type": "integer", "minimum": 0}

	for _, name := range punctuation.Names() {
		props[name] = map[string]any{"type": "integer", "minimum": 0}
	}

	required := make([]any, 0, len(props))
	for _, col := range Columns() {
		required = append(required, col)
	}

	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

// RecordsSchema describes the JSON summary export: an array of records.
func RecordsSchema() map[string]any {
	return map[string]any{
		"$schema":     JSONSchemaDraft,
		"title":       "Punctuation Summary",
		"description": "Per-document punctuation counts in analysis order",
		"type":        "array",
		"items":       RecordSchema(),
	}
}
