package chart_test

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/punctscan/internal/chart"
	"github.com/Sumatoshi-tech/punctscan/internal/punctuation"
)

func twoRecords() []punctuation.Record {
	a := punctuation.Record{Filename: "A.docx", WordCount: 5}
	a.Counts[punctuation.Commas] = 3
	a.Counts[punctuation.FullStops] = 1

	b := punctuation.Record{Filename: "B.DOCX", WordCount: 8}
	b.Counts[punctuation.Commas] = 1
	b.Counts[punctuation.FullStops] = 4

	return []punctuation.Record{a, b}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		records    []punctuation.Record
		categories []punctuation.Category
		wantErr    error
	}{
		{"ok", twoRecords(), []punctuation.Category{punctuation.Commas}, nil},
		{"empty selection", twoRecords(), []punctuation.Category{}, chart.ErrInvalidSelection},
		{"nil selection", twoRecords(), nil, chart.ErrInvalidSelection},
		{"unknown category", twoRecords(), []punctuation.Category{punctuation.Category(99)}, chart.ErrInvalidSelection},
		{"no records", nil, []punctuation.Category{punctuation.Commas}, chart.ErrEmptyInput},
		{"selection checked first", nil, []punctuation.Category{}, chart.ErrInvalidSelection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := chart.Validate(tt.records, tt.categories)
			if tt.wantErr == nil {
				require.NoError(t, err)

				return
			}

			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestBuild(t *testing.T) {
	t.Parallel()

	data, err := chart.Build(twoRecords(), []punctuation.Category{
		punctuation.FullStops, punctuation.Commas, punctuation.FullStops,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, data.Labels)
	require.Len(t, data.Series, 2)

	assert.Equal(t, punctuation.FullStops, data.Series[0].Category)
	assert.Equal(t, "full stops", data.Series[0].Name)
	assert.Equal(t, []int{1, 4}, data.Series[0].Values)

	assert.Equal(t, punctuation.Commas, data.Series[1].Category)
	assert.Equal(t, []int{3, 1}, data.Series[1].Values)
}

func TestDisplayName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"report.docx":       "report",
		"Report.DOCX":       "Report",
		"notes.v2.docx":     "notes.v2",
		"plain":             "plain",
		"archive.zip":       "archive.zip",
		"dir/template.dotx": "dir/template",
	}

	for in, want := range tests {
		assert.Equal(t, want, chart.DisplayName(in), in)
	}
}

func TestNewRenderer_Defaults(t *testing.T) {
	t.Parallel()

	r := chart.NewRenderer(chart.Options{})

	assert.Equal(t, chart.DefaultOptions(), r.Options())
}

func TestRenderPNG(t *testing.T) {
	t.Parallel()

	r := chart.NewRenderer(chart.DefaultOptions())

	data, err := r.RenderPNG(twoRecords(), punctuation.AllCategories())
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	bounds := img.Bounds()
	assert.Greater(t, bounds.Dx(), bounds.Dy())

	again, err := r.RenderPNG(twoRecords(), punctuation.AllCategories())
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestRenderPNG_SingleRecord(t *testing.T) {
	t.Parallel()

	r := chart.NewRenderer(chart.Options{Theme: chart.ThemeDark})

	data, err := r.RenderPNG(twoRecords()[:1], []punctuation.Category{punctuation.Commas})
	require.NoError(t, err)

	_, err = png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
}

func TestRenderPNG_Errors(t *testing.T) {
	t.Parallel()

	r := chart.NewRenderer(chart.DefaultOptions())

	_, err := r.RenderPNG(nil, punctuation.AllCategories())
	require.ErrorIs(t, err, chart.ErrEmptyInput)

	_, err = r.RenderPNG(twoRecords(), []punctuation.Category{})
	require.ErrorIs(t, err, chart.ErrInvalidSelection)
}

func TestRenderHTML(t *testing.T) {
	t.Parallel()

	r := chart.NewRenderer(chart.DefaultOptions())

	data, err := r.RenderHTML(twoRecords(), []punctuation.Category{punctuation.Commas, punctuation.FullStops})
	require.NoError(t, err)

	page := string(data)
	assert.Contains(t, page, "Punctuation Frequency Across Documents")
	assert.Contains(t, page, "commas")
	assert.Contains(t, page, "full stops")
	assert.Contains(t, page, `"A"`)

	again, err := r.RenderHTML(twoRecords(), []punctuation.Category{punctuation.Commas, punctuation.FullStops})
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestRenderHTML_Errors(t *testing.T) {
	t.Parallel()

	r := chart.NewRenderer(chart.DefaultOptions())

	_, err := r.RenderHTML(nil, []punctuation.Category{punctuation.Commas})
	require.ErrorIs(t, err, chart.ErrEmptyInput)
}

func TestScheme_CategoryColors(t *testing.T) {
	t.Parallel()

	light := chart.SchemeFor(chart.ThemeLight)
	dark := chart.SchemeFor(chart.ThemeDark)

	assert.Equal(t, light, chart.SchemeFor("neon"))
	assert.NotEqual(t, dark.Background, light.Background)

	seen := map[string]bool{}

	for _, cat := range punctuation.AllCategories() {
		c := light.CategoryColor(cat)
		assert.Regexp(t, `^#[0-9a-f]{6}$`, c, cat.String())
		assert.False(t, seen[c], "duplicate color for %s", cat)

		seen[c] = true
	}

	assert.Equal(t, light.TextMuted, light.CategoryColor(punctuation.Category(-1)))
}
