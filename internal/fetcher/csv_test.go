package fetcher

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamCSV_Basic(t *testing.T) {
	input := "canonical_id,schema,value\nE1,Person,John Smith\nE2,Company,Acme\n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{})
	rows, err := collectRecords(t, rowCh, errCh)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "E1", rows[0].Get("canonical_id"))
	assert.Equal(t, "John Smith", rows[0].Get("value"))
	assert.Equal(t, "Company", rows[1].Get("schema"))
}

func TestStreamCSV_MissingColumn(t *testing.T) {
	input := "a,b\n1,2\n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{})
	rows, err := collectRecords(t, rowCh, errCh)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "", rows[0].Get("lang"))
	assert.False(t, rows[0].Has("lang"))
	assert.True(t, rows[0].Has("a"))
}

func TestStreamCSV_ShortRow(t *testing.T) {
	input := "a,b,c\n1\n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{})
	rows, err := collectRecords(t, rowCh, errCh)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "1", rows[0].Get("a"))
	assert.Equal(t, "", rows[0].Get("c"))
}

func TestStreamCSV_TabDelimited(t *testing.T) {
	input := "a\tb\n1\t2\n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{Delimiter: '\t'})
	rows, err := collectRecords(t, rowCh, errCh)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2", rows[0].Get("b"))
}

func TestStreamCSV_ByteOrderMark(t *testing.T) {
	input := "\ufeffid,name\n1,x\n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{})
	rows, err := collectRecords(t, rowCh, errCh)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "1", rows[0].Get("id"))
}

func TestStreamCSV_TrimSpace(t *testing.T) {
	input := "a,b\n  x , y \n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{TrimSpace: true})
	rows, err := collectRecords(t, rowCh, errCh)
	require.NoError(t, err)
	assert.Equal(t, "x", rows[0].Get("a"))
	assert.Equal(t, "y", rows[0].Get("b"))
}

func TestStreamCSV_Empty(t *testing.T) {
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(""), CSVOptions{})
	rows, err := collectRecords(t, rowCh, errCh)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestStreamCSV_MalformedQuote(t *testing.T) {
	input := "a,b\n\"unterminated,2\n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{})
	_, err := collectRecords(t, rowCh, errCh)
	assert.Error(t, err)
}

func TestStreamCSV_ContextCancellation(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("a,b,c\n")
	for range 10000 {
		sb.WriteString("1,2,3\n")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rowCh, errCh := StreamCSV(ctx, strings.NewReader(sb.String()), CSVOptions{})
	_, err := collectRecords(t, rowCh, errCh)
	assert.Error(t, err)
}

func TestParseDelimiter(t *testing.T) {
	tests := []struct {
		in   string
		want rune
	}{
		{"", ','},
		{",", ','},
		{"comma", ','},
		{"tab", '\t'},
		{`\t`, '\t'},
		{"\t", '\t'},
		{"pipe", '|'},
		{";", ';'},
		{"#", '#'},
	}
	for _, tt := range tests {
		got, err := ParseDelimiter(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseDelimiter("ab")
	assert.Error(t, err)
}
