package colspec

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	TagCurrency Tag = "currency"
	TagPercent  Tag = "percent"
)

var defaultCurrencySymbols = []string{"$", "€", "£", "¥"}

// CurrencyCollector returns a collector reading monetary amounts into
// decimal.Decimal values, found in Value.Any. It drops currency symbols and
// the grouping mark, and reads "(12.50)" as -12.50. It is not part of the
// built-ins: add it to a registry to use it.
func CurrencyCollector() *Collector {
	return NewCollector(TagCurrency, '$', ArgDef{
		"symbols":  typStrings,
		"grouping": typString,
		"decimal":  typString,
	}, parseCurrency)
}

// PercentCollector returns a collector reading "12.5%" as the double 0.125
func PercentCollector() *Collector {
	return NewCollector(TagPercent, '%', ArgDef{
		"grouping": typString,
		"decimal":  typString,
	}, parsePercent)
}

func parseCurrency(cell Cell, args Args, opts *Options) (Value, error) {
	if cell.Kind == KindNumber {
		d := decimal.NewFromFloat(cell.Number)
		return Value{Tag: TagCurrency, Float: cell.Number, Str: d.String(), Any: d}, nil
	}
	if cell.Kind != KindText {
		return Value{}, fmt.Errorf("cannot read a %s cell as an amount", kindName(cell.Kind))
	}

	s := opts.clean(cell.Text)

	// negative accounting format "(123.45)"
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	symbols, ok := argStrings(args, "symbols")
	if !ok {
		symbols = defaultCurrencySymbols
	}
	for _, sym := range symbols {
		s = strings.ReplaceAll(s, sym, "")
	}

	grouping := argString(args, "grouping")
	if grouping == "" {
		grouping = ","
	}
	numArgs := Args{"grouping": grouping, "decimal": argString(args, "decimal")}
	s = strings.TrimSpace(numberText(s, numArgs))

	if negative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return Value{}, fmt.Errorf("not an amount")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return Value{}, fmt.Errorf("not an amount")
	}

	f, _ := d.Float64()
	return Value{Tag: TagCurrency, Float: f, Str: d.String(), Any: d}, nil
}

func parsePercent(cell Cell, args Args, opts *Options) (Value, error) {
	if cell.Kind != KindText {
		return Value{}, fmt.Errorf("cannot read a %s cell as a percentage", kindName(cell.Kind))
	}

	s := strings.TrimSpace(opts.clean(cell.Text))
	if !strings.HasSuffix(s, "%") {
		return Value{}, fmt.Errorf("missing '%%' sign")
	}

	s = strings.TrimSpace(numberText(strings.TrimSuffix(s, "%"), args))
	if !numericRegex.MatchString(s) {
		return Value{}, fmt.Errorf("not a percentage")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return Value{}, fmt.Errorf("not a percentage")
	}

	f, _ := d.Div(decimal.NewFromInt(100)).Float64()
	return Value{Tag: TagPercent, Float: f}, nil
}
