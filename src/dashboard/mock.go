package dashboard

import (
	"context"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"social-sentiment/src/loader"
	"social-sentiment/src/posts"
)

// Source supplies the raw table for one dashboard render.
type Source interface {
	Name() string
	Load(ctx context.Context) (posts.RawTable, error)
}

var (
	mockSentiments = []string{"Positive", "Negative", "Neutral", "Joy", "Sadness", "Anger"}
	mockPlatforms  = []string{"Twitter", "Instagram", "Facebook"}
	mockCommon     = []string{"#today", "#life", "#news", "#weekend", "#friends"}
	mockTagged     = map[string][]string{
		"Positive": {"#happy", "#grateful", "#blessed"},
		"Negative": {"#fail", "#annoyed", "#worst"},
		"Neutral":  {"#update", "#info", "#meh"},
		"Joy":      {"#celebrate", "#fun", "#party"},
		"Sadness":  {"#lonely", "#miss", "#tears"},
		"Anger":    {"#rage", "#unfair", "#furious"},
	}
)

// MockSource generates substitute posts on every Load. With a zero Seed each
// load draws a fresh seed, so consecutive renders differ.
type MockSource struct {
	Rows int
	Seed uint64
	Now  func() time.Time
}

func (m MockSource) Name() string { return "mock" }

func (m MockSource) Load(ctx context.Context) (posts.RawTable, error) {
	if err := ctx.Err(); err != nil {
		return posts.RawTable{}, err
	}
	seed := m.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	return MockPosts(m.Rows, seed, now()), nil
}

// MockPosts builds rows random posts dated within the 30 days before end.
// Every sentiment gets at least two rows so the classifier can be split.
// Each sentiment carries its own hashtags besides common ones, which gives
// the classifier something to learn.
func MockPosts(rows int, seed uint64, end time.Time) posts.RawTable {
	minRows := 2 * len(mockSentiments)
	if rows < minRows {
		rows = minRows
	}
	r := rand.New(rand.NewPCG(seed, seed^0x5851f42d4c957f2d))
	start := end.Add(-30 * 24 * time.Hour)
	span := int64(end.Sub(start) / time.Second)

	t := posts.RawTable{Columns: []string{
		posts.ColText, posts.ColSentiment, posts.ColTimestamp,
		posts.ColUser, posts.ColPlatform, posts.ColHashtags,
		posts.ColRetweets, posts.ColLikes,
	}}
	for i := 0; i < rows; i++ {
		sentiment := mockSentiments[i%len(mockSentiments)]
		if i >= minRows {
			sentiment = mockSentiments[r.IntN(len(mockSentiments))]
		}
		ts := start.Add(time.Duration(r.Int64N(span)) * time.Second)

		tags := []string{pick(r, mockTagged[sentiment])}
		if r.IntN(2) == 0 {
			tags = append(tags, pick(r, mockCommon))
		}
		if r.IntN(4) == 0 {
			tags = append(tags, pick(r, mockTagged[sentiment]))
		}

		t.Rows = append(t.Rows, []string{
			"Feeling " + strings.ToLower(sentiment) + " " + strings.Join(tags, " "),
			sentiment,
			ts.UTC().Format("2006-01-02 15:04:05"),
			"user" + strconv.Itoa(r.IntN(500)),
			pick(r, mockPlatforms),
			strings.Join(tags, " "),
			strconv.Itoa(r.IntN(50)),
			strconv.Itoa(r.IntN(200)),
		})
	}
	return t
}

func pick(r *rand.Rand, from []string) string {
	return from[r.IntN(len(from))]
}

// DatasetSource reads the configured dataset on every Load.
type DatasetSource struct {
	Path    string
	Options loader.Options
}

func (d DatasetSource) Name() string { return "dataset" }

func (d DatasetSource) Load(ctx context.Context) (posts.RawTable, error) {
	if err := ctx.Err(); err != nil {
		return posts.RawTable{}, err
	}
	return loader.Load(d.Path, d.Options)
}
