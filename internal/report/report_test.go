package report_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/punctscan/internal/punctuation"
	"github.com/Sumatoshi-tech/punctscan/internal/report"
)

func sampleRecords() []punctuation.Record {
	a := punctuation.Record{Filename: "A.docx", WordCount: 10}
	a.Counts[punctuation.Commas] = 2

	b := punctuation.Record{Filename: "B, final.docx", WordCount: 20}
	b.Counts[punctuation.VerticalBars] = 1

	c := punctuation.Record{Filename: "C.docx", WordCount: 0}

	return []punctuation.Record{a, b, c}
}

func TestColumns(t *testing.T) {
	t.Parallel()

	cols := report.Columns()

	require.Len(t, cols, punctuation.NumCategories+2)
	assert.Equal(t, "filename", cols[0])
	assert.Equal(t, "word_count", cols[1])
	assert.Equal(t, punctuation.Names(), cols[2:])
}

func TestBuildCSV_RowsInInputOrder(t *testing.T) {
	t.Parallel()

	data, err := report.BuildCSV(sampleRecords())
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, report.Columns(), rows[0])
	assert.Equal(t, "A.docx", rows[1][0])
	assert.Equal(t, "B, final.docx", rows[2][0])
	assert.Equal(t, "C.docx", rows[3][0])

	assert.Equal(t, "10", rows[1][1])
	assert.Equal(t, "2", rows[1][2+int(punctuation.Commas)])
	assert.Equal(t, "1", rows[2][2+int(punctuation.VerticalBars)])
}

func TestBuildCSV_HeaderOnlyWhenEmpty(t *testing.T) {
	t.Parallel()

	data, err := report.BuildCSV(nil)
	require.NoError(t, err)

	assert.Equal(t, strings.Join(report.Columns(), ",")+"\n", string(data))
}

func TestWrite_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, report.Write(&buf, "JSON", sampleRecords()))

	var decoded []punctuation.Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, sampleRecords(), decoded)
}

func TestWrite_JSONEmptyIsArray(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, report.WriteJSON(&buf, nil))

	assert.JSONEq(t, "[]", buf.String())
}

func TestWrite_YAMLKeepsColumnOrder(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, report.Write(&buf, report.FormatYAML, sampleRecords()))

	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))

	seq := doc.Content[0]
	require.Len(t, seq.Content, 3)

	first := seq.Content[0]
	keys := make([]string, 0, len(first.Content)/2)

	for i := 0; i < len(first.Content); i += 2 {
		keys = append(keys, first.Content[i].Value)
	}

	assert.Equal(t, report.Columns(), keys)

	var rows []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &rows))
	assert.Equal(t, "B, final.docx", rows[1]["filename"])
	assert.Equal(t, 20, rows[1]["word_count"])
}

func TestWrite_Table(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, report.Write(&buf, report.FormatTable, sampleRecords()))

	out := buf.String()
	assert.Contains(t, out, "A.docx")
	assert.Contains(t, out, "double inverted commas")
	assert.Contains(t, out, "word_count")
	assert.Contains(t, out, "category")
	assert.Contains(t, out, "total marks")
	assert.NotContains(t, out, "A.DOCX")
	assert.NotContains(t, out, "TOTAL MARKS")
}

func TestWrite_TableEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, report.WriteTable(&buf, nil))

	assert.Equal(t, "No documents analyzed\n", buf.String())
}

func TestValidateFormat(t *testing.T) {
	t.Parallel()

	got, err := report.ValidateFormat(" Csv ")
	require.NoError(t, err)
	assert.Equal(t, report.FormatCSV, got)

	_, err = report.ValidateFormat("xml")
	require.ErrorIs(t, err, report.ErrUnsupportedFormat)

	var buf bytes.Buffer
	require.ErrorIs(t, report.Write(&buf, "xml", nil), report.ErrUnsupportedFormat)
}
