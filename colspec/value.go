package colspec

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Value is one typed cell of a parsed column. Only the field matching Tag
// is meaningful. A missing or failed cell keeps its Tag and sets Missing, so
// a column always has one value per row.
type Value struct {
	Tag     Tag
	Missing bool
	Failed  bool

	Int   int64
	Float float64
	Bool  bool
	Str   string
	Time  time.Time

	// List holds the single element of a list cell, tagged with its own type
	List []Value
	// Cell holds the untouched raw record of a cell-detail column
	Cell *Cell
	// Any holds the result of collectors without a dedicated field
	Any interface{}
}

// floatToInt converts whole numbers within the int64 range. float64 cannot
// hold math.MaxInt64, so the upper bound 2^63 itself is out of range.
func floatToInt(f float64) (int64, bool) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= -math.MinInt64 {
		return 0, false
	}

	return int64(f), true
}

func missingValue(tag Tag) Value {
	return Value{Tag: tag, Missing: true}
}

func failedValue(tag Tag) Value {
	return Value{Tag: tag, Missing: true, Failed: true}
}

// String returns the text representation of the value, empty when missing
func (v Value) String() string {
	if v.Missing {
		return ""
	}

	switch v.Tag {
	case TagInteger:
		return strconv.FormatInt(v.Int, 10)
	case TagDouble:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	case TagLogical:
		if v.Bool {
			return "TRUE"
		}
		return "FALSE"
	case TagText:
		return v.Str
	case TagDate:
		return v.Time.Format("2006-01-02")
	case TagDatetime:
		return v.Time.Format(time.RFC3339)
	case TagList:
		parts := make([]string, len(v.List))
		for i, e := range v.List {
			parts[i] = e.String()
		}
		return strings.Join(parts, ",")
	case TagCell:
		if v.Cell == nil {
			return ""
		}
		return v.Cell.String()
	}

	if v.Str != "" {
		return v.Str
	}
	if v.Any != nil {
		return fmt.Sprint(v.Any)
	}

	return ""
}

// ValStr returns the string representation of the value
func (v Value) ValStr() string {
	return v.String()
}

// ValInt returns the integer representation of the value, or nil when the
// value is missing or has no exact integer form
func (v Value) ValInt() *int64 {
	if v.Missing {
		return nil
	}

	switch v.Tag {
	case TagInteger:
		n := v.Int
		return &n
	case TagDouble:
		n, ok := floatToInt(v.Float)
		if !ok {
			return nil
		}
		return &n
	case TagLogical:
		var n int64
		if v.Bool {
			n = 1
		}
		return &n
	case TagList:
		if len(v.List) == 1 {
			return v.List[0].ValInt()
		}
	}

	return nil
}

// ValFloat returns the float representation of numeric values
func (v Value) ValFloat() *float64 {
	if v.Missing {
		return nil
	}

	switch v.Tag {
	case TagInteger:
		f := float64(v.Int)
		return &f
	case TagDouble:
		f := v.Float
		return &f
	case TagList:
		if len(v.List) == 1 {
			return v.List[0].ValFloat()
		}
	}

	return nil
}

// ValBool returns the boolean representation of logical values
func (v Value) ValBool() *bool {
	if v.Missing {
		return nil
	}

	switch v.Tag {
	case TagLogical:
		b := v.Bool
		return &b
	case TagList:
		if len(v.List) == 1 {
			return v.List[0].ValBool()
		}
	}

	return nil
}

// ValTime returns the time of date and datetime values
func (v Value) ValTime() *time.Time {
	if v.Missing {
		return nil
	}

	switch v.Tag {
	case TagDate, TagDatetime:
		t := v.Time
		return &t
	case TagList:
		if len(v.List) == 1 {
			return v.List[0].ValTime()
		}
	}

	return nil
}

// Interface returns the value as a plain Go value: int64, float64, bool,
// string, time.Time, []interface{}, Cell, or whatever a custom collector
// produced. Missing values return nil.
func (v Value) Interface() interface{} {
	if v.Missing {
		return nil
	}

	switch v.Tag {
	case TagInteger:
		return v.Int
	case TagDouble:
		return v.Float
	case TagLogical:
		return v.Bool
	case TagText:
		return v.Str
	case TagDate, TagDatetime:
		return v.Time
	case TagList:
		out := make([]interface{}, len(v.List))
		for i, e := range v.List {
			out[i] = e.Interface()
		}
		return out
	case TagCell:
		if v.Cell == nil {
			return nil
		}
		return *v.Cell
	}

	if v.Any != nil {
		return v.Any
	}

	return v.Str
}
