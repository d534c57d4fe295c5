package pipeline

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"social-sentiment/src/posts"
)

// indexColumnRe matches the row-index artifacts left behind by dataframe exports.
var indexColumnRe = regexp.MustCompile(`^Unnamed: \d+(\.\d+)?$`)

// IsIndexColumn reports whether a column exists only as an export row index.
func IsIndexColumn(name string) bool {
	n := strings.TrimSpace(name)
	return n == "" || strings.EqualFold(n, "index") || indexColumnRe.MatchString(n)
}

// DropIndexColumns returns a copy of t without row-index artifact columns.
func DropIndexColumns(t posts.RawTable) posts.RawTable {
	var keep []int
	for i, c := range t.Columns {
		if !IsIndexColumn(c) {
			keep = append(keep, i)
		}
	}
	out := posts.RawTable{Columns: make([]string, len(keep))}
	for j, i := range keep {
		out.Columns[j] = t.Columns[i]
	}
	out.Rows = make([][]string, len(t.Rows))
	for r, row := range t.Rows {
		nr := make([]string, len(keep))
		for j, i := range keep {
			nr[j] = row[i]
		}
		out.Rows[r] = nr
	}
	return out
}

// NormalizeSentiment trims surrounding whitespace and lowercases a label.
func NormalizeSentiment(s string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(s))
}

// Cleaner turns a RawTable into a typed Table.
type Cleaner struct {
	// Location is used for timestamps without an explicit zone. Nil means UTC.
	Location *time.Location
}

// Clean drops index columns, validates the schema, parses timestamps and
// numeric fields, and normalizes sentiment labels. The output has exactly as
// many records as t has rows; any unparsable cell fails the whole table.
func (c Cleaner) Clean(t posts.RawTable) (posts.Table, error) {
	t = DropIndexColumns(t)

	idx := make(map[string]int, len(posts.RequiredColumns))
	for _, name := range posts.RequiredColumns {
		i := t.Index(name)
		if i < 0 {
			return posts.Table{}, &posts.SchemaError{Column: name}
		}
		idx[name] = i
	}
	optional := func(name string) int { return t.Index(name) }
	userIdx, countryIdx := optional(posts.ColUser), optional(posts.ColCountry)
	retweetIdx, likeIdx := optional(posts.ColRetweets), optional(posts.ColLikes)

	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}

	records := make([]posts.Record, 0, len(t.Rows))
	for r, row := range t.Rows {
		rowNum := r + 1

		rawTS := strings.TrimSpace(row[idx[posts.ColTimestamp]])
		ts, err := parseTimestamp(rawTS, loc)
		if err != nil {
			return posts.Table{}, &posts.ParseError{Row: rowNum, Column: posts.ColTimestamp, Value: rawTS, Err: err}
		}

		rawSentiment := row[idx[posts.ColSentiment]]
		sentiment := NormalizeSentiment(rawSentiment)
		if sentiment == "" {
			return posts.Table{}, &posts.ParseError{Row: rowNum, Column: posts.ColSentiment, Value: rawSentiment, Err: errors.New("empty label")}
		}

		rec := posts.Record{
			Sentiment: sentiment,
			Timestamp: ts,
			Platform:  strings.TrimSpace(row[idx[posts.ColPlatform]]),
			Hashtags:  strings.TrimSpace(row[idx[posts.ColHashtags]]),
			Text:      strings.TrimSpace(row[idx[posts.ColText]]),
		}
		if userIdx >= 0 {
			rec.User = strings.TrimSpace(row[userIdx])
		}
		if countryIdx >= 0 {
			rec.Country = strings.TrimSpace(row[countryIdx])
		}
		if retweetIdx >= 0 {
			if rec.Retweets, err = parseNumber(row[retweetIdx]); err != nil {
				return posts.Table{}, &posts.ParseError{Row: rowNum, Column: posts.ColRetweets, Value: row[retweetIdx], Err: err}
			}
		}
		if likeIdx >= 0 {
			if rec.Likes, err = parseNumber(row[likeIdx]); err != nil {
				return posts.Table{}, &posts.ParseError{Row: rowNum, Column: posts.ColLikes, Value: row[likeIdx], Err: err}
			}
		}
		records = append(records, rec)
	}
	return posts.NewTable(records), nil
}

func parseTimestamp(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	return dateparse.ParseIn(s, loc)
}

// parseNumber accepts integers and decimals; an empty cell is zero.
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
