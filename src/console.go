package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"social-sentiment/src/analysis"
	"social-sentiment/src/loader"
	"social-sentiment/src/posts"
)

// printPreview prints the header and the first n rows of the raw table.
func printPreview(w io.Writer, t posts.RawTable, n int) {
	fmt.Fprintf(w, "\n--- Dataset preview ---\n")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Columns, "\t"))
	for i := 0; i < n && i < len(t.Rows); i++ {
		cells := make([]string, len(t.Rows[i]))
		for j, c := range t.Rows[i] {
			cells[j] = clip(strings.TrimSpace(c), 30)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	tw.Flush()
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// printDescribe prints shape, column types and null counts.
func printDescribe(w io.Writer, s loader.Summary) {
	fmt.Fprintf(w, "\n--- Dataset summary ---\n")
	fmt.Fprintf(w, "Shape: %s rows x %d columns\n", humanize.Comma(int64(s.Rows)), s.Cols)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "column\ttype\tnon-null")
	for _, c := range s.Columns {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Name, c.Type, humanize.Comma(int64(s.Rows-c.Nulls)))
	}
	tw.Flush()

	nulls := s.NullCounts()
	if len(nulls) == 0 {
		fmt.Fprintln(w, "No null values.")
		return
	}
	names := make([]string, 0, len(nulls))
	for name := range nulls {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(w, "Null counts:")
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %s\n", name, humanize.Comma(int64(nulls[name])))
	}
}

// printResult prints the aggregate, token and classifier sections.
func printResult(w io.Writer, res *analysis.Result, maxSentiments int) {
	fmt.Fprintf(w, "\n--- Sentiment counts (%d distinct) ---\n", len(res.Sentiments))
	for i, lc := range res.Sentiments {
		if maxSentiments > 0 && i == maxSentiments {
			fmt.Fprintf(w, "  ... %d more\n", len(res.Sentiments)-i)
			break
		}
		fmt.Fprintf(w, "  %-20s %s\n", lc.Label, humanize.Comma(int64(lc.Count)))
	}

	fmt.Fprintf(w, "\n--- Hashtag frequency bands ---\n")
	for i, b := range res.Bands {
		preview := b.Tokens
		if len(preview) > 5 {
			preview = preview[:5]
		}
		fmt.Fprintf(w, "  %s band: %s tokens, %s occurrences [%s]\n",
			humanize.Ordinal(i+1), humanize.Comma(int64(len(b.Tokens))),
			humanize.Comma(int64(b.Occurrences)), strings.Join(preview, " "))
	}

	if len(res.Keywords) > 0 {
		fmt.Fprintf(w, "\n--- Keywords by sentiment ---\n")
		for _, k := range res.Keywords {
			terms := make([]string, len(k.Terms))
			for i, tc := range k.Terms {
				terms[i] = tc.Token
			}
			fmt.Fprintf(w, "  %-20s %s\n", k.Sentiment, strings.Join(terms, ", "))
		}
	}

	if len(res.Dropped) > 0 {
		fmt.Fprintf(w, "\nDropped %d classes with fewer than 2 rows: %s\n",
			len(res.Dropped), strings.Join(res.Dropped, ", "))
	}
	fmt.Fprintf(w, "\n--- Classifier ---\n")
	fmt.Fprintf(w, "Vocabulary: %s terms, train %s rows, test %s rows\n",
		humanize.Comma(int64(len(res.Vocabulary))),
		humanize.Comma(int64(len(res.Split.Train))),
		humanize.Comma(int64(len(res.Split.Test))))
	fmt.Fprintf(w, "Accuracy: %s\n\n", strconv.FormatFloat(res.Report.Accuracy, 'f', 4, 64))
	fmt.Fprint(w, res.Report.String())
}

// printOutputs lists the written files with their size.
func printOutputs(w io.Writer, paths []string) {
	fmt.Fprintf(w, "\n--- Outputs ---\n")
	for _, p := range paths {
		size := "?"
		if fi, err := os.Stat(p); err == nil {
			size = humanize.Bytes(uint64(fi.Size()))
		}
		fmt.Fprintf(w, "  %s (%s)\n", p, size)
	}
}

var statsHeader = []string{"timestamp", "run_id", "source", "rows", "vocabulary", "accuracy"}

// ensureStatsCSVHeader creates the stats CSV with its header if it does not exist.
func ensureStatsCSVHeader(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	writer := csv.NewWriter(f)
	writer.Write(statsHeader)
	writer.Flush()
	return writer.Error()
}

// appendStats records one run as a CSV line for machine consumption.
func appendStats(path, source string, res *analysis.Result) error {
	if err := ensureStatsCSVHeader(path); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	writer := csv.NewWriter(f)
	writer.Write([]string{
		time.Now().Format(time.RFC3339),
		res.RunID,
		source,
		strconv.Itoa(res.Table.Len()),
		strconv.Itoa(len(res.Vocabulary)),
		strconv.FormatFloat(res.Report.Accuracy, 'f', 6, 64),
	})
	writer.Flush()
	return writer.Error()
}
