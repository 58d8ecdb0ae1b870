package catalog

import (
	"fmt"
	"strings"
)

// DataLoadError reports a catalog source that is missing or malformed.
// It is fatal: no partial catalog is ever returned alongside it.
type DataLoadError struct {
	Source string // file path or collection name
	Row    int    // 1-based data row, 0 when not row specific
	Column string
	Reason string
	Err    error
}

func (e *DataLoadError) Error() string {
	var b strings.Builder
	b.WriteString("catalog")
	if e.Source != "" {
		fmt.Fprintf(&b, " %s", e.Source)
	}
	if e.Row > 0 {
		fmt.Fprintf(&b, " row %d", e.Row)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, " column %q", e.Column)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *DataLoadError) Unwrap() error {
	return e.Err
}

func loadErr(source string, row int, column, reason string, err error) *DataLoadError {
	return &DataLoadError{Source: source, Row: row, Column: column, Reason: reason, Err: err}
}
