// Package extract turns parsed word-processing documents into a flat,
// normalized text string ready for punctuation classification.
package extract

import (
	"regexp"
	"strings"
)

// Document is the structural view of a word-processing document that the
// extractor understands. Only plain text is retained.
type Document struct {
	// Paragraphs holds body paragraph text in document order.
	Paragraphs []string
	// Sections holds the header and footer of each section in document order.
	Sections []Section
	// Tables holds body tables in document order.
	Tables []Table
}

// Section pairs the default header and footer in effect for one section.
type Section struct {
	Header Region
	Footer Region
}

// Region is a header or footer part.
type Region struct {
	Paragraphs []string
}

// Table is an ordered grid of cell texts.
type Table struct {
	Rows [][]string
}

// ellipsisToken replaces every run of spaced or unspaced periods.
const ellipsisToken = "..."

// periodRun matches two or more periods, each optionally surrounded by a
// single whitespace character. Whitespace covers the Unicode space
// separators as well as ASCII control spacing.
var periodRun = regexp.MustCompile(`(?:[\s\v\x1c-\x1f\x{85}\p{Z}]?\.[\s\v\x1c-\x1f\x{85}\p{Z}]?){2,}`)

// Extract flattens doc into one string and normalizes period runs.
// A nil or empty document yields "".
func Extract(doc *Document) string {
	return Normalize(Concat(doc))
}

// Concat flattens doc without normalization. Body paragraphs are joined by a
// single space. Each section's header and then its footer follow directly,
// their paragraphs joined by a space. Every table cell comes last, each
// followed by one trailing space.
func Concat(doc *Document) string {
	if doc == nil {
		return ""
	}

	var sb strings.Builder

	sb.WriteString(strings.Join(doc.Paragraphs, " "))

	for _, sec := range doc.Sections {
		sb.WriteString(strings.Join(sec.Header.Paragraphs, " "))
		sb.WriteString(strings.Join(sec.Footer.Paragraphs, " "))
	}

	for _, table := range doc.Tables {
		for _, row := range table.Rows {
			for _, cell := range row {
				sb.WriteString(cell)
				sb.WriteByte(' ')
			}
		}
	}

	return sb.String()
}

// Normalize collapses every run of two or more periods, optionally
// interleaved with single whitespace characters, into "...".
func Normalize(text string) string {
	return periodRun.ReplaceAllLiteralString(text, ellipsisToken)
}
