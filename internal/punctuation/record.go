package punctuation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Field names shared by every flat record encoding.
const (
	FieldFilename  = "filename"
	FieldWordCount = "word_count"
)

// ErrEmptyFilename is returned when a record is built without a filename.
var ErrEmptyFilename = errors.New("filename must not be empty")

// Counts holds one count per category, indexed by Category. Being an array,
// it is copied by value and never aliased between records.
type Counts [NumCategories]int

// Get returns the count for c, or zero for an unknown category.
func (c Counts) Get(cat Category) int {
	if !cat.Valid() {
		return 0
	}

	return c[cat]
}

// Total sums all category counts.
func (c Counts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}

	return total
}

// Map returns the counts keyed by canonical category name.
func (c Counts) Map() map[string]int {
	m := make(map[string]int, NumCategories)
	for i, n := range c {
		m[categoryNames[i]] = n
	}

	return m
}

// CountsFromMap builds Counts from a name-keyed map. Missing categories are
// zero; unknown names are rejected.
func CountsFromMap(m map[string]int) (Counts, error) {
	var counts Counts

	for name, n := range m {
		cat, err := ParseCategory(name)
		if err != nil {
			return Counts{}, err
		}

		counts[cat] = n
	}

	return counts, nil
}

// Record is the analysis result for one document.
type Record struct {
	Filename  string
	WordCount int
	Counts    Counts
}

// NewRecord classifies text and returns the record for filename.
func NewRecord(filename, text string) (Record, error) {
	if strings.TrimSpace(filename) == "" {
		return Record{}, ErrEmptyFilename
	}

	words, counts := Classify(text)

	return Record{Filename: filename, WordCount: words, Counts: counts}, nil
}

// MarshalJSON encodes the record as a flat object: filename, word_count and
// one key per category.
func (r Record) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(r.Row())
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}

	return data, nil
}

// UnmarshalJSON decodes the flat object produced by MarshalJSON.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage

	err := json.Unmarshal(data, &raw)
	if err != nil {
		return fmt.Errorf("unmarshal record: %w", err)
	}

	var out Record

	counts := make(map[string]int, NumCategories)

	for key, value := range raw {
		switch key {
		case FieldFilename:
			err = json.Unmarshal(value, &out.Filename)
		case FieldWordCount:
			err = json.Unmarshal(value, &out.WordCount)
		default:
			var n int

			err = json.Unmarshal(value, &n)
			counts[key] = n
		}

		if err != nil {
			return fmt.Errorf("unmarshal record field %q: %w", key, err)
		}
	}

	out.Counts, err = CountsFromMap(counts)
	if err != nil {
		return err
	}

	*r = out

	return nil
}

// Row returns the record as a flat name->value map including filename and
// word_count.
func (r Record) Row() map[string]any {
	row := make(map[string]any, NumCategories+2)
	row[FieldFilename] = r.Filename
	row[FieldWordCount] = r.WordCount

	for i, n := range r.Counts {
		row[categoryNames[i]] = n
	}

	return row
}
