package colspec

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// builtinCollectors returns all the collectors available in every registry
func builtinCollectors() []CollectorI {
	return []CollectorI{
		integerCollector,
		doubleCollector,
		logicalCollector,
		textCollector,
		dateCollector,
		datetimeCollector,
		listCollector,
		cellCollector,
		skipCollector,
		guessCollector,
	}
}

var (
	integerRegex = regexp.MustCompile(`^[+-]?\d+$`)
	// numericRegex matches integers, decimals, and scientific notation
	numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)
)

var (
	defaultTrueValues  = []string{"TRUE", "T", "true", "True"}
	defaultFalseValues = []string{"FALSE", "F", "false", "False"}
)

var errGuessUnresolved = errors.New("guess collector must be resolved before parsing")

var integerCollector = &Collector{
	tag:    TagInteger,
	code:   'i',
	parser: parseInteger,
	args:   ArgDef{"grouping": typString},
}

var doubleCollector = &Collector{
	tag:    TagDouble,
	code:   'd',
	parser: parseDouble,
	args:   ArgDef{"grouping": typString, "decimal": typString},
}

var logicalCollector = &Collector{
	tag:    TagLogical,
	code:   'l',
	parser: parseLogical,
	args:   ArgDef{"trueValues": typStrings, "falseValues": typStrings},
}

var textCollector = &Collector{
	tag:    TagText,
	code:   'c',
	parser: parseText,
}

var dateCollector = &Collector{
	tag:      TagDate,
	code:     'D',
	parser:   parseTime(true),
	args:     ArgDef{"format": typString, "tz": typString},
	required: []string{"format"},
}

var datetimeCollector = &Collector{
	tag:      TagDatetime,
	code:     'T',
	parser:   parseTime(false),
	args:     ArgDef{"format": typString, "tz": typString},
	required: []string{"format"},
}

var listCollector = &Collector{
	tag:    TagList,
	code:   'L',
	parser: parseList,
	args:   ArgDef{"type": typString},
}

var cellCollector = &Collector{
	tag:         TagCell,
	code:        'C',
	parser:      parseCell,
	keepMissing: true,
}

var skipCollector = &Collector{
	tag:  TagSkip,
	code: '_',
	parser: func(cell Cell, args Args, opts *Options) (Value, error) {
		return missingValue(TagSkip), nil
	},
}

var guessCollector = &Collector{
	tag:  TagGuess,
	code: '?',
	parser: func(cell Cell, args Args, opts *Options) (Value, error) {
		return Value{}, errGuessUnresolved
	},
}

// numberText strips the grouping mark and normalizes the decimal mark
func numberText(s string, args Args) string {
	if g := argString(args, "grouping"); g != "" {
		s = strings.ReplaceAll(s, g, "")
	}
	if d := argString(args, "decimal"); d != "" && d != "." {
		s = strings.Replace(s, d, ".", 1)
	}

	return s
}

func parseInteger(cell Cell, args Args, opts *Options) (Value, error) {
	switch cell.Kind {
	case KindNumber:
		n, ok := floatToInt(cell.Number)
		if !ok {
			return Value{}, fmt.Errorf("not an integer: %v", cell.Number)
		}
		return Value{Tag: TagInteger, Int: n}, nil
	case KindText:
		s := numberText(opts.clean(cell.Text), args)
		if !integerRegex.MatchString(strings.TrimSpace(s)) {
			return Value{}, fmt.Errorf("not an integer")
		}

		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("integer out of range")
		}
		return Value{Tag: TagInteger, Int: n}, nil
	}

	return Value{}, fmt.Errorf("cannot read a %s cell as an integer", kindName(cell.Kind))
}

func parseDouble(cell Cell, args Args, opts *Options) (Value, error) {
	switch cell.Kind {
	case KindNumber:
		return Value{Tag: TagDouble, Float: cell.Number}, nil
	case KindText:
		s := strings.TrimSpace(numberText(opts.clean(cell.Text), args))
		if !numericRegex.MatchString(s) {
			return Value{}, fmt.Errorf("not a number")
		}

		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Value{}, fmt.Errorf("number out of range")
		}
		return Value{Tag: TagDouble, Float: f}, nil
	}

	return Value{}, fmt.Errorf("cannot read a %s cell as a double", kindName(cell.Kind))
}

func parseLogical(cell Cell, args Args, opts *Options) (Value, error) {
	switch cell.Kind {
	case KindBool:
		return Value{Tag: TagLogical, Bool: cell.Bool}, nil
	case KindText:
		s := strings.TrimSpace(cell.Text)

		trues, ok := argStrings(args, "trueValues")
		if !ok {
			trues = defaultTrueValues
		}
		falses, ok := argStrings(args, "falseValues")
		if !ok {
			falses = defaultFalseValues
		}

		for _, t := range trues {
			if s == t {
				return Value{Tag: TagLogical, Bool: true}, nil
			}
		}
		for _, f := range falses {
			if s == f {
				return Value{Tag: TagLogical, Bool: false}, nil
			}
		}

		return Value{}, fmt.Errorf("not a logical")
	}

	return Value{}, fmt.Errorf("cannot read a %s cell as a logical", kindName(cell.Kind))
}

func parseText(cell Cell, args Args, opts *Options) (Value, error) {
	if cell.Kind == KindText {
		return Value{Tag: TagText, Str: opts.clean(cell.Text)}, nil
	}

	return Value{Tag: TagText, Str: cell.String()}, nil
}

// parseTime returns the parser of date (dateOnly) and datetime columns
func parseTime(dateOnly bool) ParseFunc {
	tag := TagDatetime
	if dateOnly {
		tag = TagDate
	}

	return func(cell Cell, args Args, opts *Options) (Value, error) {
		loc, err := loadLocation(argString(args, "tz"))
		if err != nil {
			return Value{}, err
		}

		var t time.Time
		switch cell.Kind {
		case KindTime:
			t = cell.Time.In(loc)
		case KindText:
			format := argString(args, "format")
			if format == "" {
				return Value{}, fmt.Errorf("no %s format", tag)
			}

			t, err = time.ParseInLocation(format, opts.clean(cell.Text), loc)
			if err != nil {
				return Value{}, fmt.Errorf("does not match format '%s'", format)
			}
		default:
			return Value{}, fmt.Errorf("cannot read a %s cell as a %s", kindName(cell.Kind), tag)
		}

		if dateOnly {
			y, m, d := t.Date()
			if t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0 || t.Nanosecond() != 0 {
				return Value{}, fmt.Errorf("has a time of day")
			}
			t = time.Date(y, m, d, 0, 0, 0, 0, loc)
		}

		return Value{Tag: tag, Time: t}, nil
	}
}

// parseList wraps the cell's own value, declared by the 'type' parameter or
// guessed from the cell alone, into a single element list
func parseList(cell Cell, args Args, opts *Options) (Value, error) {
	var inner Value

	if name := argString(args, "type"); name != "" {
		c, ok := opts.Registry.Lookup(Tag(name))
		if !ok {
			return Value{}, fmt.Errorf("collector '%s' does not exist", name)
		}

		v, err := c.Parse(cell, nil, opts)
		if err != nil {
			return Value{}, err
		}
		if v.Tag == "" {
			v.Tag = c.Tag()
		}
		inner = v
	} else {
		inner = guessCell(cell, opts)
	}

	return Value{Tag: TagList, List: []Value{inner}}, nil
}

func parseCell(cell Cell, args Args, opts *Options) (Value, error) {
	c := cell
	return Value{Tag: TagCell, Cell: &c}, nil
}

func kindName(k CellKind) string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindTime:
		return "time"
	}

	return "empty"
}
