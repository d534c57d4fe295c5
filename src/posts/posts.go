package posts

import "time"

// Canonical column names of the posts dataset.
const (
	ColSentiment = "Sentiment"
	ColTimestamp = "Timestamp"
	ColPlatform  = "Platform"
	ColHashtags  = "Hashtags"
	ColText      = "Text"
	ColUser      = "User"
	ColCountry   = "Country"
	ColRetweets  = "Retweets"
	ColLikes     = "Likes"
)

// RequiredColumns lists the columns every dataset must carry after cleaning.
var RequiredColumns = []string{ColSentiment, ColTimestamp, ColPlatform, ColHashtags, ColText}

// RawTable is a delimited file as read from disk: a header and string cells in file order.
type RawTable struct {
	Columns []string
	Rows    [][]string
}

// Index returns the position of the named column, or -1.
func (t RawTable) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Len returns the number of data rows.
func (t RawTable) Len() int {
	return len(t.Rows)
}

// Record represents one cleaned social-media post
type Record struct {
	Sentiment string    `json:"sentiment" yaml:"sentiment"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Platform  string    `json:"platform" yaml:"platform"`
	Hashtags  string    `json:"hashtags" yaml:"hashtags"`
	Text      string    `json:"text" yaml:"text"`
	User      string    `json:"user,omitempty" yaml:"user,omitempty"`
	Country   string    `json:"country,omitempty" yaml:"country,omitempty"`
	Retweets  float64   `json:"retweets" yaml:"retweets"`
	Likes     float64   `json:"likes" yaml:"likes"`
}

// Hour is the hour of day (0-23) the post was made.
func (r Record) Hour() int {
	return r.Timestamp.Hour()
}

// Date is the calendar day of the post with the time of day discarded.
// It is expressed at midnight UTC so values compare and hash consistently.
func (r Record) Date() time.Time {
	y, m, d := r.Timestamp.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Table is an ordered, read-only sequence of Records. Stages never modify a
// Table in place; they return a new one.
type Table struct {
	records []Record
}

// NewTable copies records into a new Table.
func NewTable(records []Record) Table {
	cp := make([]Record, len(records))
	copy(cp, records)
	return Table{records: cp}
}

// Len returns the number of records.
func (t Table) Len() int {
	return len(t.records)
}

// At returns the i-th record.
func (t Table) At(i int) Record {
	return t.records[i]
}

// Records returns a copy of the records in insertion order.
func (t Table) Records() []Record {
	cp := make([]Record, len(t.records))
	copy(cp, t.records)
	return cp
}

// Sentiments returns the sentiment column.
func (t Table) Sentiments() []string {
	out := make([]string, len(t.records))
	for i, r := range t.records {
		out[i] = r.Sentiment
	}
	return out
}

// Hashtags returns the hashtag column.
func (t Table) Hashtags() []string {
	out := make([]string, len(t.records))
	for i, r := range t.records {
		out[i] = r.Hashtags
	}
	return out
}

// Filter returns a new Table holding the records for which keep reports true.
func (t Table) Filter(keep func(Record) bool) Table {
	var out []Record
	for _, r := range t.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return Table{records: out}
}
