package colspec

import (
	"strings"
)

// ParseShorthand reads a compact spec string, one shorthand code per column
// from left to right, into the tags of the columns
func ParseShorthand(s string, reg *Registry) ([]Tag, error) {
	if reg == nil {
		reg = defaultRegistry
	}

	tags := make([]Tag, 0, len(s))
	for i, code := range []rune(s) {
		tag, ok := reg.TagForCode(code)
		if !ok {
			return nil, configErrorf("unknown shorthand code '%c' at position %d of '%s'", code, i, s)
		}
		tags = append(tags, tag)
	}

	return tags, nil
}

// FormatShorthand writes tags as a compact spec string. Every tag needs a
// shorthand code.
func FormatShorthand(tags []Tag, reg *Registry) (string, error) {
	if reg == nil {
		reg = defaultRegistry
	}

	var b strings.Builder
	for _, tag := range tags {
		code, ok := reg.Code(tag)
		if !ok {
			return "", configErrorf("collector '%s' has no shorthand code", tag)
		}
		b.WriteRune(code)
	}

	return b.String(), nil
}
