package colspec

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
)

// Args maps the collector parameters' value by their name
type Args map[string]interface{}

// ArgDef maps the parameter name to its expected type from the collector
type ArgDef map[string]reflect.Type

var (
	typString  = reflect.TypeOf("")
	typStrings = reflect.TypeOf([]string{})
	typInt     = reflect.TypeOf(0)
	typFloat   = reflect.TypeOf(0.0)
	typBool    = reflect.TypeOf(true)
	typObject  = reflect.TypeOf(map[string]interface{}{})
)

// clone returns a deep enough copy for args built from scalars, slices of
// strings and objects. Empty args clone to nil.
func (a Args) clone() Args {
	if len(a) == 0 {
		return nil
	}

	out := make(Args, len(a))
	for k, v := range a {
		switch vv := v.(type) {
		case []string:
			out[k] = append([]string(nil), vv...)
		case []interface{}:
			out[k] = append([]interface{}(nil), vv...)
		default:
			out[k] = v
		}
	}

	return out
}

// names returns the parameter names in a stable order
func (a Args) names() []string {
	names := make([]string, 0, len(a))
	for k := range a {
		names = append(names, k)
	}
	sort.Strings(names)

	return names
}

func (a Args) equal(b Args) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}

	return reflect.DeepEqual(a, b)
}

// normalizeArgs validates that all provided arguments are accepted by the
// collector and coerces them to the declared types. Values loaded from YAML
// arrive as strings, ints and []interface{}, hence the coercion.
func normalizeArgs(tag Tag, def ArgDef, args Args) (Args, error) {
	if len(args) == 0 {
		return nil, nil
	}

	out := make(Args, len(args))
	for _, name := range args.names() {
		typ, ok := def[name]
		if !ok {
			return nil, configErrorf("collector '%s' does not take parameter '%s'", tag, name)
		}

		val, err := coerceArg(typ, args[name])
		if err != nil {
			return nil, configErrorf("invalid value for parameter '%s' of collector '%s': %s", name, tag, err)
		}

		out[name] = val
	}

	return out, nil
}

func coerceArg(typ reflect.Type, v interface{}) (interface{}, error) {
	if v == nil {
		return nil, fmt.Errorf("value is empty")
	}

	switch typ {
	case typString:
		switch vv := v.(type) {
		case string:
			return vv, nil
		case int, int64, float64, bool:
			return fmt.Sprint(vv), nil
		}
	case typStrings:
		switch vv := v.(type) {
		case []string:
			return append([]string(nil), vv...), nil
		case string:
			return []string{vv}, nil
		case []interface{}:
			out := make([]string, len(vv))
			for i, e := range vv {
				switch e.(type) {
				case string, int, int64, float64, bool:
					out[i] = fmt.Sprint(e)
				default:
					return nil, fmt.Errorf("element %d must be a scalar", i)
				}
			}
			return out, nil
		}
	case typInt:
		switch vv := v.(type) {
		case int:
			return vv, nil
		case int64:
			return int(vv), nil
		case float64:
			if vv == float64(int(vv)) {
				return int(vv), nil
			}
		case string:
			n, err := strconv.Atoi(vv)
			if err == nil {
				return n, nil
			}
		}
	case typFloat:
		switch vv := v.(type) {
		case float64:
			return vv, nil
		case int:
			return float64(vv), nil
		case string:
			f, err := strconv.ParseFloat(vv, 64)
			if err == nil {
				return f, nil
			}
		}
	case typBool:
		switch vv := v.(type) {
		case bool:
			return vv, nil
		case string:
			b, err := strconv.ParseBool(vv)
			if err == nil {
				return b, nil
			}
		}
	case typObject:
		if m, ok := stringKeys(v).(map[string]interface{}); ok {
			return m, nil
		}
	default:
		if reflect.TypeOf(v).AssignableTo(typ) {
			return v, nil
		}
	}

	return nil, fmt.Errorf("expected %s, got %T", typ, v)
}

// stringKeys converts the map[interface{}]interface{} produced by the yaml
// decoder into map[string]interface{}, recursively
func stringKeys(v interface{}) interface{} {
	switch vv := v.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(vv))
		for k, e := range vv {
			out[fmt.Sprint(k)] = stringKeys(e)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(vv))
		for k, e := range vv {
			out[k] = stringKeys(e)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(vv))
		for i, e := range vv {
			out[i] = stringKeys(e)
		}
		return out
	}

	return v
}

func argString(args Args, name string) string {
	v, ok := args[name]
	if !ok {
		return ""
	}

	s, _ := v.(string)
	return s
}

func argStrings(args Args, name string) ([]string, bool) {
	v, ok := args[name]
	if !ok {
		return nil, false
	}

	s, ok := v.([]string)
	return s, ok
}
