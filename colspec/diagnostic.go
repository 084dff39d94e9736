package colspec

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Diagnostic records one data-level problem: a cell that does not conform
// to its column's type, a ragged row, or a column reference ignored in
// lenient mode. Row and Col are -1 when the problem is not tied to one.
type Diagnostic struct {
	Row    int
	Col    int
	Name   string
	Raw    string
	Tag    Tag
	Reason string
	Level  logrus.Level
}

func (d Diagnostic) String() string {
	switch {
	case d.Row < 0:
		return fmt.Sprintf("column '%s': %s", d.Name, d.Reason)
	case d.Col < 0:
		return fmt.Sprintf("row %d: %s", d.Row, d.Reason)
	}

	return fmt.Sprintf("row %d, column %d ('%s'): value '%s' is not %s: %s", d.Row, d.Col, d.Name, d.Raw, d.Tag, d.Reason)
}

// Fields returns the diagnostic as logging fields
func (d Diagnostic) Fields() logrus.Fields {
	f := logrus.Fields{"reason": d.Reason}
	if d.Row >= 0 {
		f["row"] = d.Row
	}
	if d.Col >= 0 {
		f["col"] = d.Col
	}
	if d.Name != "" {
		f["column"] = d.Name
	}
	if d.Tag != "" {
		f["type"] = d.Tag
	}
	if d.Raw != "" {
		f["raw"] = d.Raw
	}

	return f
}

// less orders diagnostics by row then column, column-less ones first
func (d Diagnostic) less(o Diagnostic) bool {
	if d.Row != o.Row {
		return d.Row < o.Row
	}

	return d.Col < o.Col
}
