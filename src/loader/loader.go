package loader

import (
	"bytes"
	"compress/gzip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"social-sentiment/src/posts"
)

// Options controls how a delimited file is read.
type Options struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune
}

// Load reads a delimited file into a RawTable. Files ending in .gz are
// decompressed on the fly. The first row must be the header.
func Load(path string, opts Options) (posts.RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return posts.RawTable{}, &posts.DataAccessError{Path: path, Err: err}
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return posts.RawTable{}, &posts.DataAccessError{Path: path, Err: fmt.Errorf("failed to open gzip: %w", err)}
		}
		defer gz.Close()
		r = gz
	}

	table, err := Read(r, opts)
	if err != nil {
		return posts.RawTable{}, &posts.DataAccessError{Path: path, Err: err}
	}
	return table, nil
}

// Read parses delimited data from r. Every data row must have the same number
// of fields as the header.
func Read(r io.Reader, opts Options) (posts.RawTable, error) {
	reader := newReader(r, opts)

	head, err := reader.Read()
	if err == io.EOF {
		return posts.RawTable{}, errors.New("empty input: no header row")
	}
	if err != nil {
		return posts.RawTable{}, fmt.Errorf("failed to read header: %w", err)
	}
	head = trimHeader(head)

	table := posts.RawTable{Columns: head}
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return posts.RawTable{}, fmt.Errorf("line %d: %w", line, err)
		}
		if len(row) != len(head) {
			return posts.RawTable{}, fmt.Errorf("line %d: expected %d fields, got %d", line, len(head), len(row))
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// FromRows builds a RawTable from individual CSV lines, as delivered one per
// message by the queue source. A payload equal to the header is skipped.
func FromRows(header []string, payloads [][]byte, opts Options) (posts.RawTable, error) {
	if len(header) == 0 {
		return posts.RawTable{}, errors.New("queue source: header is required")
	}
	header = trimHeader(header)
	table := posts.RawTable{Columns: header}
	for i, payload := range payloads {
		reader := newReader(strings.NewReader(string(payload)), opts)
		row, err := reader.Read()
		if err != nil {
			return posts.RawTable{}, fmt.Errorf("message %d: %w", i+1, err)
		}
		if equalRows(row, header) {
			continue
		}
		if len(row) != len(header) {
			return posts.RawTable{}, fmt.Errorf("message %d: expected %d fields, got %d", i+1, len(header), len(row))
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// ParseHeader splits a single delimited header line into column names.
func ParseHeader(line string, opts Options) ([]string, error) {
	row, err := newReader(strings.NewReader(line), opts).Read()
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	return trimHeader(row), nil
}

func newReader(r io.Reader, opts Options) *csv.Reader {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	if opts.Comma != 0 {
		reader.Comma = opts.Comma
	}
	return reader
}

// trimHeader strips surrounding whitespace and a UTF-8 BOM from column names.
func trimHeader(head []string) []string {
	out := make([]string, len(head))
	for i, h := range head {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		out[i] = strings.TrimSpace(h)
	}
	return out
}

func equalRows(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if strings.TrimSpace(a[i]) != b[i] {
			return false
		}
	}
	return true
}

// EncodeRow renders one row as a single delimited line without the trailing
// newline. It is the inverse of reading one payload in FromRows.
func EncodeRow(row []string, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if opts.Comma != 0 {
		w.Comma = opts.Comma
	}
	if err := w.Write(row); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\r\n"), nil
}
