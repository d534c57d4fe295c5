package loader

import (
	"context"
	"errors"

	"social-sentiment/src/posts"
)

// Drainer yields every pending CSV row message from a queue.
type Drainer interface {
	Drain(ctx context.Context) ([][]byte, error)
}

// FromQueue drains src into a RawTable. header is a single delimited line;
// when empty the first message is used as the header.
func FromQueue(ctx context.Context, src Drainer, header string, opts Options) (posts.RawTable, error) {
	payloads, err := src.Drain(ctx)
	if err != nil {
		return posts.RawTable{}, &posts.DataAccessError{Path: "queue", Err: err}
	}
	if header == "" {
		if len(payloads) == 0 {
			return posts.RawTable{}, &posts.DataAccessError{Path: "queue", Err: errors.New("queue is empty and no header configured")}
		}
		header, payloads = string(payloads[0]), payloads[1:]
	}
	cols, err := ParseHeader(header, opts)
	if err != nil {
		return posts.RawTable{}, &posts.DataAccessError{Path: "queue", Err: err}
	}
	table, err := FromRows(cols, payloads, opts)
	if err != nil {
		return posts.RawTable{}, &posts.DataAccessError{Path: "queue", Err: err}
	}
	return table, nil
}
