// Package punctuation classifies text into punctuation categories and word
// totals, and defines the per-document analysis record.
package punctuation

import (
	"errors"
	"fmt"
	"strings"
)

// Category identifies one punctuation class. The set is closed.
type Category int

// Categories in their fixed enumeration order. Report columns and chart
// defaults follow this order.
const (
	Apostrophes Category = iota
	Colons
	Commas
	CurlyBrackets
	DoubleInvertedCommas
	Ellipses
	EmDashes
	EnDashes
	ExclamationMarks
	FullStops
	Hyphens
	OtherPunctuationMarks
	QuestionMarks
	RoundBrackets
	Semicolons
	Slashes
	SquareBrackets
	VerticalBars

	// NumCategories is the size of the enumeration.
	NumCategories = int(VerticalBars) + 1
)

// ErrUnknownCategory is returned when a name is not part of the enumeration.
var ErrUnknownCategory = errors.New("unknown punctuation category")

var categoryNames = [NumCategories]string{
	"apostrophes",
	"colons",
	"commas",
	"curly_brackets",
	"double_inverted_commas",
	"ellipses",
	"em_dashes",
	"en_dashes",
	"exclamation_marks",
	"full_stops",
	"hyphens",
	"other_punctuation_marks",
	"question_marks",
	"round_brackets",
	"semicolons",
	"slashes",
	"square_brackets",
	"vertical_bars",
}

// AllCategories returns every category in enumeration order.
func AllCategories() []Category {
	all := make([]Category, NumCategories)
	for i := range all {
		all[i] = Category(i)
	}

	return all
}

// Names returns the canonical names of all categories in enumeration order.
func Names() []string {
	names := make([]string, NumCategories)
	copy(names, categoryNames[:])

	return names
}

// Valid reports whether c is part of the enumeration.
func (c Category) Valid() bool {
	return c >= 0 && int(c) < NumCategories
}

// String returns the canonical snake_case name.
func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("category(%d)", int(c))
	}

	return categoryNames[c]
}

// Label returns the display name, with underscores rendered as spaces.
func (c Category) Label() string {
	return strings.ReplaceAll(c.String(), "_", " ")
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCategory, int(c))
	}

	return []byte(categoryNames[c]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}

	*c = parsed

	return nil
}

// ParseCategory resolves a canonical category name.
func ParseCategory(name string) (Category, error) {
	for i, n := range categoryNames {
		if n == name {
			return Category(i), nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
}

// ParseCategories resolves a list of names, preserving order. Surrounding
// whitespace is ignored and empty entries are skipped.
func ParseCategories(names []string) ([]Category, error) {
	out := make([]Category, 0, len(names))

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		c, err := ParseCategory(name)
		if err != nil {
			return nil, err
		}

		out = append(out, c)
	}

	return out, nil
}
