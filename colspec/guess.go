package colspec

// guessOrder lists the guessable types from the most to the least specific.
// Text closes the list and always matches.
var guessOrder = []Tag{TagLogical, TagInteger, TagDouble, TagDate, TagDatetime}

// GuessType returns the most specific collector spec accepting every non-missing
// value of the sample. Missing values are ignored; an all-missing sample
// guesses text. Date and datetime guesses carry the format that matched.
func GuessType(sample []Cell, opts *Options) CollectorSpec {
	return guess(sample, opts.withDefaults())
}

// GuessCell guesses the type of a single cell and returns its typed value
func GuessCell(cell Cell, opts *Options) Value {
	return guessCell(cell, opts.withDefaults())
}

func guess(sample []Cell, opts *Options) CollectorSpec {
	values := nonMissing(sample, opts)
	if len(values) == 0 {
		return Text()
	}

	for _, tag := range guessOrder {
		c, ok := opts.Registry.Lookup(tag)
		if !ok {
			continue
		}

		if tag == TagDate || tag == TagDatetime {
			format, n := matchFormats(c, tag, values, opts)
			if n == 1 {
				return withFormat(tag, format)
			}
			continue
		}

		if parsesAll(c, values, nil, opts) {
			return CollectorSpec{tag: tag}
		}
	}

	return Text()
}

// guessCell guesses a single cell. Typed cells keep their own type.
func guessCell(cell Cell, opts *Options) Value {
	if opts.isMissing(cell) {
		return missingValue(TagText)
	}

	switch cell.Kind {
	case KindBool:
		return Value{Tag: TagLogical, Bool: cell.Bool}
	case KindNumber:
		if n, ok := floatToInt(cell.Number); ok {
			return Value{Tag: TagInteger, Int: n}
		}
		return Value{Tag: TagDouble, Float: cell.Number}
	case KindTime:
		return Value{Tag: TagDatetime, Time: cell.Time}
	}

	spec := guess([]Cell{cell}, opts)
	if c, ok := opts.Registry.Lookup(spec.tag); ok {
		if v, err := c.Parse(cell, spec.args, opts); err == nil {
			v.Tag = spec.tag
			return v
		}
	}

	return Value{Tag: TagText, Str: opts.clean(cell.Text)}
}

// nonMissing returns at most GuessMax non-missing cells of the sample
func nonMissing(sample []Cell, opts *Options) []Cell {
	values := make([]Cell, 0, len(sample))
	for _, c := range sample {
		if opts.isMissing(c) {
			continue
		}

		values = append(values, c)
		if len(values) >= opts.GuessMax {
			break
		}
	}

	return values
}

// sampleColumn returns the first GuessMax non-missing cells of a column
func sampleColumn(g *Grid, pos int, opts *Options) []Cell {
	var values []Cell
	for row := range g.Rows {
		c := g.cell(row, pos)
		if opts.isMissing(c) {
			continue
		}

		values = append(values, c)
		if len(values) >= opts.GuessMax {
			break
		}
	}

	return values
}

func parsesAll(c CollectorI, values []Cell, args Args, opts *Options) bool {
	for _, v := range values {
		if _, err := c.Parse(v, args, opts); err != nil {
			return false
		}
	}

	return true
}

// matchFormats tries every default pattern of a date-like tag against the
// values. It returns the first matching pattern and the number of patterns
// that matched. Only text cells tell patterns apart: without any, the first
// pattern is the single match.
func matchFormats(c CollectorI, tag Tag, values []Cell, opts *Options) (string, int) {
	formats := opts.formats(tag)
	if len(formats) == 0 {
		return "", 0
	}

	texts := 0
	for _, v := range values {
		if v.Kind == KindText {
			texts++
		}
	}

	if texts == 0 {
		if !parsesAll(c, values, Args{"format": formats[0]}, opts) {
			return "", 0
		}
		return formats[0], 1
	}

	var first string
	n := 0

	for _, format := range formats {
		if parsesAll(c, values, Args{"format": format}, opts) {
			if n == 0 {
				first = format
			}
			n++
		}
	}

	return first, n
}
