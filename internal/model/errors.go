package model

import "fmt"

// ParseError reports a doc string that is not valid structured text.
type ParseError struct {
	Offset int64 // byte offset of the syntax error, 0 if unknown
	Err    error
}

func (e *ParseError) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("parsing doc string at offset %d: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("parsing doc string: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ShapeError reports a table projection requested on a table of the wrong arity.
type ShapeError struct {
	Projection string
	Want       string
	Rows       int
	Columns    int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: want %s, table has %d rows x %d columns", e.Projection, e.Want, e.Rows, e.Columns)
}
