package posts

import "fmt"

// DataAccessError reports a dataset that is missing, unreadable or not tabular.
type DataAccessError struct {
	Path string
	Err  error
}

func (e *DataAccessError) Error() string {
	return fmt.Sprintf("data access %s: %v", e.Path, e.Err)
}

func (e *DataAccessError) Unwrap() error { return e.Err }

// SchemaError reports an expected column that is absent.
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema: missing column %q", e.Column)
}

// ParseError reports a cell that could not be converted to its declared type.
// Row is 1-based and counts data rows only (the header is not row 1).
type ParseError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse row %d column %q value %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// InsufficientDataError reports a class or corpus too small for the requested operation.
type InsufficientDataError struct {
	Class  string
	Count  int
	Reason string
}

func (e *InsufficientDataError) Error() string {
	if e.Class == "" {
		return "insufficient data: " + e.Reason
	}
	return fmt.Sprintf("insufficient data: class %q has %d member(s): %s", e.Class, e.Count, e.Reason)
}
