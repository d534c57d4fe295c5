package loader

import (
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-sentiment/src/posts"
)

const sampleCSV = "\ufeffUnnamed: 0,Text,Sentiment,Timestamp,Platform,Hashtags\n" +
	"0,\"Hello, world\", Positive ,2023-01-15 12:30:00, Twitter ,#a #b\n" +
	"1,Rainy day,Negative,2023-01-16 08:00:00,Instagram,#rain\n"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadCSV(t *testing.T) {
	table, err := Load(writeFile(t, "posts.csv", sampleCSV), Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Unnamed: 0", "Text", "Sentiment", "Timestamp", "Platform", "Hashtags"}, table.Columns)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "Hello, world", table.Rows[0][1])
	assert.Equal(t, " Positive ", table.Rows[0][2], "cells are kept verbatim")
	assert.Equal(t, 2, table.Index("Sentiment"))
	assert.Equal(t, -1, table.Index("Missing"))
}

func TestLoadGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posts.csv.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(sampleCSV))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	table, err := Load(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
}

func TestLoadDelimiter(t *testing.T) {
	content := "Text;Sentiment\nhi;Positive\n"
	table, err := Load(writeFile(t, "posts.csv", content), Options{Comma: ';'})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"hi", "Positive"}}, table.Rows)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.csv") }},
		{"empty file", func(t *testing.T) string { return writeFile(t, "empty.csv", "") }},
		{"ragged row", func(t *testing.T) string { return writeFile(t, "ragged.csv", "a,b\n1,2,3\n") }},
		{"not gzip", func(t *testing.T) string { return writeFile(t, "plain.csv.gz", sampleCSV) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path(t), Options{})
			var dataErr *posts.DataAccessError
			require.True(t, errors.As(err, &dataErr), "got %v", err)
			assert.NotEmpty(t, dataErr.Path)
		})
	}
}

func TestLoadMissingFileUnwraps(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"), Options{})
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestFromRowsSkipsHeader(t *testing.T) {
	header := []string{"Text", "Sentiment"}
	payloads := [][]byte{
		[]byte("hi,Positive"),
		[]byte("Text,Sentiment"),
		[]byte("\"a, b\",Negative"),
	}
	table, err := FromRows(header, payloads, Options{})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"hi", "Positive"}, {"a, b", "Negative"}}, table.Rows)

	_, err = FromRows(header, [][]byte{[]byte("only-one-field")}, Options{})
	assert.Error(t, err)
	_, err = FromRows(nil, nil, Options{})
	assert.Error(t, err)
}

func TestEncodeRowRoundTrip(t *testing.T) {
	row := []string{"Hello, \"world\"", " Positive ", "#a #b"}
	line, err := EncodeRow(row, Options{})
	require.NoError(t, err)
	assert.False(t, strings.HasSuffix(string(line), "\n"))

	table, err := FromRows([]string{"Text", "Sentiment", "Hashtags"}, [][]byte{line}, Options{})
	require.NoError(t, err)
	assert.Equal(t, [][]string{row}, table.Rows)
}

func TestParseHeader(t *testing.T) {
	cols, err := ParseHeader("\ufeff Text ;Sentiment", Options{Comma: ';'})
	require.NoError(t, err)
	assert.Equal(t, []string{"Text", "Sentiment"}, cols)
}
