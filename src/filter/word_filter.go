package filter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// englishStopwords is the built-in list used for the keyword sidebar.
var englishStopwords = []string{
	"a", "about", "above", "after", "again", "against", "all", "am", "an", "and",
	"any", "are", "as", "at", "be", "because", "been", "before", "being", "below",
	"between", "both", "but", "by", "can", "could", "did", "do", "does", "doing",
	"down", "during", "each", "every", "few", "for", "from", "further", "had", "has",
	"have", "having", "he", "her", "here", "hers", "herself", "him", "himself", "his",
	"how", "i", "if", "in", "into", "is", "it", "its", "itself", "just", "me",
	"more", "most", "my", "myself", "no", "nor", "not", "now", "of", "off", "on",
	"once", "only", "or", "other", "our", "ours", "ourselves", "out", "over", "own",
	"same", "she", "should", "so", "some", "such", "than", "that", "the", "their",
	"theirs", "them", "themselves", "then", "there", "these", "they", "this", "those",
	"through", "to", "too", "under", "until", "up", "very", "was", "we", "were",
	"what", "when", "where", "which", "while", "who", "whom", "why", "will", "with",
	"would", "you", "your", "yours", "yourself", "yourselves",
}

// WordFilter holds a set of words to filter out. Matching is case-insensitive.
type WordFilter struct {
	filteredWords map[string]bool
	mu            sync.RWMutex
}

// NewWordFilter creates a new empty WordFilter
func NewWordFilter() *WordFilter {
	return &WordFilter{
		filteredWords: make(map[string]bool),
	}
}

// NewStopwordFilter creates a WordFilter preloaded with common English stopwords.
func NewStopwordFilter() *WordFilter {
	wf := NewWordFilter()
	for _, w := range englishStopwords {
		wf.filteredWords[w] = true
	}
	return wf
}

// LoadFromFile loads filtered words from a file
// Each line should contain one word, lines starting with # are comments
func (wf *WordFilter) LoadFromFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open filter file %s: %w", filename, err)
	}
	defer file.Close()

	if err := wf.Load(file); err != nil {
		return fmt.Errorf("error reading filter file %s: %w", filename, err)
	}
	return nil
}

// Load adds the words read from r, one per line.
func (wf *WordFilter) Load(r io.Reader) error {
	wf.mu.Lock()
	defer wf.mu.Unlock()

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		wf.filteredWords[fold(line)] = true
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("line %d: %w", lineNum, err)
	}
	return nil
}

// IsFiltered checks if a token should be filtered out
func (wf *WordFilter) IsFiltered(token string) bool {
	wf.mu.RLock()
	defer wf.mu.RUnlock()
	return wf.filteredWords[fold(token)]
}

// GetFilteredCount returns the number of words in the filter
func (wf *WordFilter) GetFilteredCount() int {
	wf.mu.RLock()
	defer wf.mu.RUnlock()
	return len(wf.filteredWords)
}

// AddWord adds a single word to the filter
func (wf *WordFilter) AddWord(word string) {
	wf.mu.Lock()
	defer wf.mu.Unlock()
	wf.filteredWords[fold(word)] = true
}

// RemoveWord removes a word from the filter
func (wf *WordFilter) RemoveWord(word string) {
	wf.mu.Lock()
	defer wf.mu.Unlock()
	delete(wf.filteredWords, fold(word))
}

func fold(s string) string {
	return cases.Lower(language.Und).String(s)
}
