package pipeline

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var (
	apostropheRe = regexp.MustCompile(`'\w*`)
	nonWordRe    = regexp.MustCompile(`[^\p{L}\p{N} ]+`)
)

// HashtagTokens splits a hashtag field on whitespace, lowercases each token and
// strips surrounding punctuation including the leading '#'. Empty tokens are dropped.
func HashtagTokens(s string) []string {
	lower := cases.Lower(language.Und)
	fields := strings.Fields(norm.NFKC.String(s))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		tok := strings.TrimFunc(lower.String(f), func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r)
		})
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// TextTokens splits free text into lowercase word tokens.
// - Removes apostrophes and what follows
// - Removes punctuation
// - Splits on whitespace
func TextTokens(text string) []string {
	text = cases.Lower(language.Und).String(norm.NFKC.String(text))
	text = apostropheRe.ReplaceAllString(text, "")
	text = nonWordRe.ReplaceAllString(text, " ")
	return strings.Fields(text)
}
