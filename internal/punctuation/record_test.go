package punctuation_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/punctscan/internal/punctuation"
)

func TestRecordJSON_FlatShape(t *testing.T) {
	t.Parallel()

	rec := punctuation.Record{Filename: "a.docx", WordCount: 12}
	rec.Counts[punctuation.Slashes] = 3

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var flat map[string]any
	require.NoError(t, json.Unmarshal(data, &flat))

	assert.Len(t, flat, punctuation.NumCategories+2)
	assert.Equal(t, "a.docx", flat["filename"])
	assert.InDelta(t, 12, flat["word_count"], 0)
	assert.InDelta(t, 3, flat["slashes"], 0)
	assert.InDelta(t, 0, flat["vertical_bars"], 0)

	var decoded punctuation.Record
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, rec, decoded)
}

func TestRecordJSON_UnknownCategory(t *testing.T) {
	t.Parallel()

	var rec punctuation.Record

	err := json.Unmarshal([]byte(`{"filename":"x","word_count":1,"tildes":2}`), &rec)
	require.ErrorIs(t, err, punctuation.ErrUnknownCategory)
}

func TestCountsFromMap(t *testing.T) {
	t.Parallel()

	counts, err := punctuation.CountsFromMap(map[string]int{"commas": 4, "hyphens": 1})
	require.NoError(t, err)

	assert.Equal(t, 4, counts.Get(punctuation.Commas))
	assert.Equal(t, 1, counts.Get(punctuation.Hyphens))
	assert.Equal(t, 5, counts.Total())
	assert.Zero(t, counts.Get(punctuation.Category(99)))
}

func TestCategories(t *testing.T) {
	t.Parallel()

	all := punctuation.AllCategories()
	require.Len(t, all, 18)
	assert.Equal(t, punctuation.Apostrophes, all[0])
	assert.Equal(t, punctuation.VerticalBars, all[17])

	names := punctuation.Names()
	assert.Equal(t, "double_inverted_commas", names[4])
	assert.Equal(t, "other punctuation marks", punctuation.OtherPunctuationMarks.Label())

	cats, err := punctuation.ParseCategories([]string{" commas", "", "full_stops "})
	require.NoError(t, err)
	assert.Equal(t, []punctuation.Category{punctuation.Commas, punctuation.FullStops}, cats)

	_, err = punctuation.ParseCategory("tildes")
	require.ErrorIs(t, err, punctuation.ErrUnknownCategory)

	assert.False(t, punctuation.Category(-1).Valid())
	assert.Equal(t, "category(42)", punctuation.Category(42).String())
}
