package pipeline

import (
	"slices"

	"social-sentiment/src/posts"
)

// Stopwords decides whether a token is excluded from keyword lists.
type Stopwords interface {
	IsFiltered(token string) bool
}

// HashtagFrequencies counts every hashtag token across the table.
func HashtagFrequencies(t posts.Table) *TokenCounter {
	tc := NewTokenCounter()
	for i := 0; i < t.Len(); i++ {
		tc.IncrementTokens(HashtagTokens(t.At(i).Hashtags))
	}
	return tc
}

// SentimentKeywords is the keyword list of one sentiment.
type SentimentKeywords struct {
	Sentiment string       `json:"sentiment" yaml:"sentiment"`
	Terms     []TokenCount `json:"terms" yaml:"terms"`
}

// Keywords returns, for each sentiment in label order, the n most frequent
// text terms after stopword removal. A nil stop filter keeps every token.
// Single-character tokens are skipped.
func Keywords(t posts.Table, stop Stopwords, n int) []SentimentKeywords {
	counters := make(map[string]*TokenCounter)
	for i := 0; i < t.Len(); i++ {
		r := t.At(i)
		tc, ok := counters[r.Sentiment]
		if !ok {
			tc = NewTokenCounter()
			counters[r.Sentiment] = tc
		}
		var kept []string
		for _, tok := range TextTokens(r.Text) {
			if len([]rune(tok)) < 2 {
				continue
			}
			if stop != nil && stop.IsFiltered(tok) {
				continue
			}
			kept = append(kept, tok)
		}
		tc.IncrementTokens(kept)
	}

	labels := make([]string, 0, len(counters))
	for s := range counters {
		labels = append(labels, s)
	}
	slices.Sort(labels)

	out := make([]SentimentKeywords, 0, len(labels))
	for _, s := range labels {
		out = append(out, SentimentKeywords{Sentiment: s, Terms: counters[s].TopN(n)})
	}
	return out
}
