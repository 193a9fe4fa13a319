package extract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/punctscan/internal/extract"
	"github.com/Sumatoshi-tech/punctscan/internal/punctuation"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "single period untouched", in: "End.", want: "End."},
		{name: "two periods", in: "Hmm..", want: "Hmm..."},
		{name: "three periods keep trailing word", in: "Wait... what", want: "Wait...what"},
		{name: "spaced periods", in: "so . . . then", want: "so...then"},
		{name: "long run", in: "and.......", want: "and..."},
		{name: "non-breaking spaces", in: "a\u00a0.\u00a0.\u00a0b", want: "a...b"},
		{name: "separate sentences", in: "One. Two.", want: "One. Two."},
		{name: "unicode ellipsis untouched", in: "well…", want: "well…"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, extract.Normalize(tt.in))
		})
	}
}

func TestConcat_RegionOrder(t *testing.T) {
	t.Parallel()

	doc := &extract.Document{
		Paragraphs: []string{"Body one.", "Body two."},
		Sections: []extract.Section{{
			Header: extract.Region{Paragraphs: []string{"Head", "line"}},
			Footer: extract.Region{Paragraphs: []string{"Foot"}},
		}},
		Tables: []extract.Table{
			{Rows: [][]string{{"r1c1", "r1c2"}, {"r2c1"}}},
		},
	}

	assert.Equal(t, "Body one. Body two.Head lineFootr1c1 r1c2 r2c1 ", extract.Concat(doc))
}

func TestConcat_SectionPairs(t *testing.T) {
	t.Parallel()

	doc := &extract.Document{
		Paragraphs: []string{"Body."},
		Sections: []extract.Section{
			{Header: extract.Region{Paragraphs: []string{"A"}}, Footer: extract.Region{Paragraphs: []string{"x"}}},
			{Header: extract.Region{Paragraphs: []string{"B"}}, Footer: extract.Region{Paragraphs: []string{"y"}}},
		},
	}

	assert.Equal(t, "Body.AxBy", extract.Concat(doc))
}

func TestExtract_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, extract.Extract(nil))
	assert.Empty(t, extract.Extract(&extract.Document{}))
}

func TestExtract_TableOnly(t *testing.T) {
	t.Parallel()

	doc := &extract.Document{
		Tables: []extract.Table{{Rows: [][]string{{"A/B"}}}},
	}

	text := extract.Extract(doc)
	words, counts := punctuation.Classify(text)

	assert.Equal(t, 2, words)

	want := punctuation.Counts{}
	want[punctuation.Slashes] = 1
	assert.Equal(t, want, counts)
}

func TestExtract_CollapsesEllipsisBeforeCounting(t *testing.T) {
	t.Parallel()

	doc := &extract.Document{Paragraphs: []string{"Well . . . maybe.."}}

	_, counts := punctuation.Classify(extract.Extract(doc))

	assert.Equal(t, 2, counts[punctuation.Ellipses])
	// "Well...maybe..." has six periods and two tokens.
	assert.Equal(t, 4, counts[punctuation.FullStops])
}
