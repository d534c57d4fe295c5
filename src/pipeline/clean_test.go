package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-sentiment/src/posts"
)

func rawPosts(rows ...[]string) posts.RawTable {
	return posts.RawTable{
		Columns: []string{"Unnamed: 0", "Text", "Sentiment", "Timestamp", "Platform", "Hashtags", "Retweets", "Likes"},
		Rows:    rows,
	}
}

func TestIsIndexColumn(t *testing.T) {
	for _, name := range []string{"Unnamed: 0", "Unnamed: 0.1", "", "  ", "index", "Index"} {
		assert.True(t, IsIndexColumn(name), name)
	}
	for _, name := range []string{"Unnamed", "Text", "Unnamed: x", "indexes"} {
		assert.False(t, IsIndexColumn(name), name)
	}
}

func TestDropIndexColumnsKeepsInput(t *testing.T) {
	raw := rawPosts([]string{"0", "hi", "Positive", "2023-01-15 12:30:00", "Twitter", "#a", "1", "2"})
	out := DropIndexColumns(raw)

	assert.Equal(t, []string{"Text", "Sentiment", "Timestamp", "Platform", "Hashtags", "Retweets", "Likes"}, out.Columns)
	assert.Equal(t, "hi", out.Rows[0][0])
	assert.Len(t, raw.Columns, 8, "input table must not change")
}

func TestCleanNormalizesSentiment(t *testing.T) {
	raw := rawPosts(
		[]string{"0", "hi", " Positive ", "2023-01-15 12:30:00", " Twitter ", " #a ", "1.0", "2"},
		[]string{"1", "yo", "NEGATIVE", "2023-01-16 08:00:00", "Instagram", "#b", "", ""},
		[]string{"2", "ok", "Élan", "2023-01-16 08:05:00", "Facebook", "#c", "3", "4"},
	)
	table, err := Cleaner{}.Clean(raw)
	require.NoError(t, err)
	require.Equal(t, len(raw.Rows), table.Len())

	assert.Equal(t, []string{"positive", "negative", "élan"}, table.Sentiments())
	first := table.At(0)
	assert.Equal(t, "Twitter", first.Platform)
	assert.Equal(t, "#a", first.Hashtags)
	assert.Equal(t, 1.0, first.Retweets)
	assert.Equal(t, 2.0, first.Likes)
	assert.True(t, first.Timestamp.Equal(time.Date(2023, 1, 15, 12, 30, 0, 0, time.UTC)))
	assert.Zero(t, table.At(1).Likes)
}

func TestCleanMissingColumn(t *testing.T) {
	raw := posts.RawTable{
		Columns: []string{"Text", "Timestamp", "Platform", "Hashtags"},
		Rows:    [][]string{{"hi", "2023-01-15 12:30:00", "Twitter", "#a"}},
	}
	_, err := Cleaner{}.Clean(raw)

	var schemaErr *posts.SchemaError
	require.True(t, errors.As(err, &schemaErr), "got %v", err)
	assert.Equal(t, posts.ColSentiment, schemaErr.Column)
}

func TestCleanMalformedTimestamp(t *testing.T) {
	raw := rawPosts(
		[]string{"0", "hi", "Positive", "2023-01-15 12:30:00", "Twitter", "#a", "1", "2"},
		[]string{"1", "yo", "Negative", "not a date", "Twitter", "#b", "1", "2"},
	)
	_, err := Cleaner{}.Clean(raw)

	var parseErr *posts.ParseError
	require.True(t, errors.As(err, &parseErr), "got %v", err)
	assert.Equal(t, 2, parseErr.Row)
	assert.Equal(t, posts.ColTimestamp, parseErr.Column)
	assert.Equal(t, "not a date", parseErr.Value)
}

func TestCleanEmptySentiment(t *testing.T) {
	raw := rawPosts([]string{"0", "hi", "   ", "2023-01-15 12:30:00", "Twitter", "#a", "1", "2"})
	_, err := Cleaner{}.Clean(raw)

	var parseErr *posts.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, posts.ColSentiment, parseErr.Column)
}

func TestCleanBadNumber(t *testing.T) {
	raw := rawPosts([]string{"0", "hi", "Positive", "2023-01-15 12:30:00", "Twitter", "#a", "many", "2"})
	_, err := Cleaner{}.Clean(raw)

	var parseErr *posts.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, posts.ColRetweets, parseErr.Column)
}

func TestCleanUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	raw := rawPosts([]string{"0", "hi", "Positive", "2023-01-15 12:30:00", "Twitter", "#a", "", ""})
	table, err := Cleaner{Location: loc}.Clean(raw)
	require.NoError(t, err)

	assert.Equal(t, 12, table.At(0).Hour())
	assert.True(t, table.At(0).Timestamp.Equal(time.Date(2023, 1, 15, 10, 30, 0, 0, time.UTC)))
}
