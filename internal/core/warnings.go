package core

import "fmt"

// Warning records a non-fatal row-level coercion failure. The affected field
// degrades to a sentinel value (0, NaN, or the raw code) and the row is
// kept; warnings are returned alongside the result rather than logged, so
// callers decide how to surface them.
type Warning struct {
	Row    int    // 1-based data row in the source table
	Column string // source column the value came from
	Value  string // the offending raw value
	Reason string // human-readable description
}

func (w Warning) String() string {
	return fmt.Sprintf("row %d, column %s: %s (value %q)", w.Row, w.Column, w.Reason, w.Value)
}
