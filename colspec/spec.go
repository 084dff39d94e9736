package colspec

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Tag names the target type of a collector
type Tag string

const (
	TagInteger  Tag = "integer"
	TagDouble   Tag = "double"
	TagLogical  Tag = "logical"
	TagText     Tag = "text"
	TagDate     Tag = "date"
	TagDatetime Tag = "datetime"
	TagList     Tag = "list"
	TagCell     Tag = "cell"
	TagSkip     Tag = "skip"
	TagGuess    Tag = "guess"
)

// CollectorSpec is a type tag along with its parameters. It is immutable:
// constructors and accessors copy the parameters.
type CollectorSpec struct {
	tag  Tag
	args Args
}

// NewCollectorSpec creates a collector spec. The parameters are not
// validated until the spec is resolved against a registry.
func NewCollectorSpec(tag Tag, args Args) CollectorSpec {
	return CollectorSpec{tag: tag, args: args.clone()}
}

func Integer() CollectorSpec    { return CollectorSpec{tag: TagInteger} }
func Double() CollectorSpec     { return CollectorSpec{tag: TagDouble} }
func Logical() CollectorSpec    { return CollectorSpec{tag: TagLogical} }
func Text() CollectorSpec       { return CollectorSpec{tag: TagText} }
func List() CollectorSpec       { return CollectorSpec{tag: TagList} }
func CellDetail() CollectorSpec { return CollectorSpec{tag: TagCell} }
func Skip() CollectorSpec       { return CollectorSpec{tag: TagSkip} }
func Guess() CollectorSpec      { return CollectorSpec{tag: TagGuess} }

// Date returns a date collector spec. An empty format lets resolution pick
// one from the default pattern set.
func Date(format string) CollectorSpec {
	return withFormat(TagDate, format)
}

// Datetime returns a datetime collector spec, see Date
func Datetime(format string) CollectorSpec {
	return withFormat(TagDatetime, format)
}

func withFormat(tag Tag, format string) CollectorSpec {
	if format == "" {
		return CollectorSpec{tag: tag}
	}

	return CollectorSpec{tag: tag, args: Args{"format": format}}
}

func (c CollectorSpec) Tag() Tag {
	return c.tag
}

// Args returns a copy of the parameters
func (c CollectorSpec) Args() Args {
	return c.args.clone()
}

func (c CollectorSpec) Arg(name string) (interface{}, bool) {
	v, ok := c.args[name]
	return v, ok
}

func (c CollectorSpec) IsZero() bool {
	return c.tag == "" && len(c.args) == 0
}

// Equal reports whether both specs have the same tag and parameters
func (c CollectorSpec) Equal(o CollectorSpec) bool {
	return c.tag == o.tag && c.args.equal(o.args)
}

// With returns a copy of the spec with one more parameter
func (c CollectorSpec) With(name string, value interface{}) CollectorSpec {
	args := c.args.clone()
	if args == nil {
		args = Args{}
	}
	args[name] = value

	return CollectorSpec{tag: c.tag, args: args}
}

func (c CollectorSpec) String() string {
	if len(c.args) == 0 {
		return string(c.tag)
	}

	parts := make([]string, 0, len(c.args))
	for _, name := range c.args.names() {
		parts = append(parts, fmt.Sprintf("%s=%v", name, c.args[name]))
	}

	return fmt.Sprintf("%s(%s)", c.tag, strings.Join(parts, ", "))
}

type collectorSpecYAML struct {
	Type Tag  `yaml:"type"`
	Args Args `yaml:"args,omitempty"`
}

// MarshalYAML writes parameterless specs as a bare type name
func (c CollectorSpec) MarshalYAML() (interface{}, error) {
	if len(c.args) == 0 {
		return string(c.tag), nil
	}

	return collectorSpecYAML{Type: c.tag, Args: c.args}, nil
}

// UnmarshalYAML accepts either a bare type name or a {type, args} mapping
func (c *CollectorSpec) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err == nil {
		*c = CollectorSpec{tag: Tag(name)}
		return nil
	}

	var raw collectorSpecYAML
	if err := unmarshal(&raw); err != nil {
		return err
	}

	*c = NewCollectorSpec(raw.Type, stringKeyArgs(raw.Args))
	return nil
}

func stringKeyArgs(args Args) Args {
	if len(args) == 0 {
		return nil
	}

	out := make(Args, len(args))
	for k, v := range args {
		out[k] = stringKeys(v)
	}

	return out
}

// ColDef is one explicit column entry authored by the user. The column is
// addressed by its header name or by its 0-based position.
type ColDef struct {
	Name string `yaml:"name,omitempty"`
	Pos  *int   `yaml:"pos,omitempty"`
	Type Tag    `yaml:"type"`
	Args Args   `yaml:"args,omitempty"`
}

// ByName creates a column entry addressed by header name
func ByName(name string, c CollectorSpec) ColDef {
	return ColDef{Name: name, Type: c.tag, Args: c.args.clone()}
}

// ByPos creates a column entry addressed by position
func ByPos(pos int, c CollectorSpec) ColDef {
	return ColDef{Pos: &pos, Type: c.tag, Args: c.args.clone()}
}

// Collector returns the collector spec of the entry
func (d ColDef) Collector() CollectorSpec {
	return NewCollectorSpec(d.Type, stringKeyArgs(d.Args))
}

func (d ColDef) label() string {
	if d.Pos != nil {
		return fmt.Sprintf("#%d", *d.Pos)
	}

	return fmt.Sprintf("'%s'", d.Name)
}

// Spec is a user-authored, possibly partial column specification, or the
// condensed form of a resolved one. Explicit entries take precedence over
// the shorthand string, which takes precedence over the default rule.
type Spec struct {
	Default   *CollectorSpec `yaml:"default,omitempty"`
	Cols      []ColDef       `yaml:"cols,omitempty"`
	Shorthand string         `yaml:"shorthand,omitempty"`
}

// IsEmpty reports whether the spec leaves everything to the default rule
// configured in the options
func (s Spec) IsEmpty() bool {
	return s.Default == nil && len(s.Cols) == 0 && s.Shorthand == ""
}

// LoadSpec decodes a YAML column specification
func LoadSpec(data []byte) (Spec, error) {
	var s Spec
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Spec{}, errors.Wrap(err, "decoding column specification")
	}

	return s, nil
}

// YAML encodes the spec
func (s Spec) YAML() ([]byte, error) {
	return yaml.Marshal(s)
}

// ColumnSpec is the resolved collector of one column
type ColumnSpec struct {
	Pos       int
	Name      string
	Collector CollectorSpec
}

// Resolved is a fully resolved column specification: one entry per column
// of the data, in position order, none of them left to guessing.
type Resolved struct {
	Cols    []ColumnSpec
	Default CollectorSpec
	// Implicit lists the positions resolved by guessing or by the default
	// rule rather than by an explicit entry or shorthand code
	Implicit []int
	// Warnings holds the column references that were ignored in lenient mode
	Warnings []Diagnostic

	reg *Registry
}

// Output returns the columns that appear in parse results, skipping the
// skip columns
func (r *Resolved) Output() []ColumnSpec {
	out := make([]ColumnSpec, 0, len(r.Cols))
	for _, c := range r.Cols {
		if c.Collector.Tag() == TagSkip {
			continue
		}
		out = append(out, c)
	}

	return out
}

// Equivalent reports whether both specifications have the same collector,
// with the same parameters, at every position
func (r *Resolved) Equivalent(o *Resolved) bool {
	if len(r.Cols) != len(o.Cols) {
		return false
	}

	for i := range r.Cols {
		if r.Cols[i].Pos != o.Cols[i].Pos || !r.Cols[i].Collector.Equal(o.Cols[i].Collector) {
			return false
		}
	}

	return true
}

func (r *Resolved) registry() *Registry {
	if r.reg == nil {
		return defaultRegistry
	}

	return r.reg
}
