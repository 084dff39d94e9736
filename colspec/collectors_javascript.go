package colspec

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
	"github.com/robertkrimen/otto"
)

// JsCollector is a collector enabling javascript code to do the parsing.
// The script reads the raw cell text from the 'value' variable and its
// parameters from variables of the same name, and stores its result in the
// 'output' variable. Throwing marks the cell as failed. The optional 'args'
// object declares the parameters, e.g. args = {symbol: "string"}.
type JsCollector struct {
	Collector
	script *otto.Script
}

// NewJSCollector creates a collector from a javascript file
func NewJSCollector(filename string, tag Tag, code rune) (*JsCollector, error) {
	return newJSCollector(filename, nil, tag, code)
}

// NewJSCollectorFromSource creates a collector from javascript source code
func NewJSCollectorFromSource(name, src string, tag Tag, code rune) (*JsCollector, error) {
	return newJSCollector(name, src, tag, code)
}

func newJSCollector(filename string, src interface{}, tag Tag, code rune) (*JsCollector, error) {
	vm := otto.New()

	script, err := vm.Compile(filename, src)
	if err != nil {
		return nil, errors.Wrapf(err, "compiling '%s'", filename)
	}

	// running the script without checking for errors, all we want is the parameter list
	vm.Set("value", "")
	vm.Run(script)

	argsVal, err := vm.Get("args")
	if err != nil {
		return nil, err
	}

	argsI, err := argsVal.Export()
	if err != nil {
		return nil, err
	}

	c := &JsCollector{
		Collector: Collector{tag: tag, code: code},
		script:    script,
	}

	if argsI != nil {
		args, ok := argsI.(map[string]interface{})
		if !ok {
			return nil, configErrorf("js error: 'args' must be an object in '%s'", filename)
		}

		def := ArgDef{}

		// we translate the parameter types from the js definition to their go type
		for arg, typ := range args {
			switch typ {
			case "string":
				def[arg] = typString
			case "array":
				def[arg] = typStrings
			case "object":
				def[arg] = typObject
			case "bool":
				def[arg] = typBool
			case "number":
				def[arg] = typFloat
			default:
				return nil, configErrorf("type '%v' is not supported in '%s'", typ, filename)
			}
		}

		c.args = def
	}

	c.parser = c.run
	return c, nil
}

// run executes the script in a fresh vm for one cell, otto vms are not safe
// for concurrent use
func (jc *JsCollector) run(cell Cell, args Args, opts *Options) (Value, error) {
	vm := otto.New()

	raw := cell.String()
	if cell.Kind == KindText {
		raw = opts.clean(cell.Text)
	}
	if err := vm.Set("value", raw); err != nil {
		return Value{}, err
	}

	for name, typ := range jc.args {
		val, ok := args[name]
		if !ok {
			// declared but not provided: the script sees undefined
			continue
		}

		if valType := reflect.TypeOf(val); valType != typ {
			return Value{}, fmt.Errorf("unexpected parameter type. Expected '%s', got '%s'", typ, valType)
		}

		if err := vm.Set(name, val); err != nil {
			return Value{}, err
		}
	}

	if _, err := vm.Run(jc.script); err != nil {
		return Value{}, err
	}

	// We expect the variable 'output' in the js script to be defined and ready for extraction
	output, err := vm.Get("output")
	if err != nil {
		return Value{}, err
	}
	if !output.IsDefined() || output.IsNull() {
		return Value{}, fmt.Errorf("script did not set 'output'")
	}

	exported, err := output.Export()
	if err != nil {
		return Value{}, err
	}

	return Value{Tag: jc.tag, Str: output.String(), Any: exported}, nil
}
