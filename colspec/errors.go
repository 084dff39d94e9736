package colspec

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ConfigurationError reports a malformed specification or registry setup:
// an unknown type, a bad shorthand code, a duplicate registration or an
// unknown parameter. It is always fatal to the call that returns it.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Msg
}

// ShapeMismatchError reports a specification whose length disagrees with the
// number of columns found in the data.
type ShapeMismatchError struct {
	What     string
	Expected int
	Actual   int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("shape mismatch: %s has length %d, expected %d", e.What, e.Actual, e.Expected)
}

// UnresolvedColumnError reports a named column reference that matches no
// header, or more than one.
type UnresolvedColumnError struct {
	Name    string
	Matches []int
}

func (e *UnresolvedColumnError) Error() string {
	if len(e.Matches) == 0 {
		return fmt.Sprintf("column '%s' matches no header", e.Name)
	}

	pos := make([]string, len(e.Matches))
	for i, m := range e.Matches {
		pos[i] = fmt.Sprint(m)
	}

	return fmt.Sprintf("column '%s' is ambiguous, it matches positions %s", e.Name, strings.Join(pos, ", "))
}

func configErrorf(format string, args ...interface{}) error {
	return errors.WithStack(&ConfigurationError{Msg: fmt.Sprintf(format, args...)})
}

func shapeError(what string, expected, actual int) error {
	return errors.WithStack(&ShapeMismatchError{What: what, Expected: expected, Actual: actual})
}

// IsConfiguration reports whether err is, or wraps, a ConfigurationError
func IsConfiguration(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// IsShapeMismatch reports whether err is, or wraps, a ShapeMismatchError
func IsShapeMismatch(err error) bool {
	var target *ShapeMismatchError
	return errors.As(err, &target)
}

// IsUnresolved reports whether err is, or wraps, an UnresolvedColumnError
func IsUnresolved(err error) bool {
	var target *UnresolvedColumnError
	return errors.As(err, &target)
}
