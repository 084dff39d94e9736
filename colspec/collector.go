package colspec

import (
	"sort"
	"strings"
	"sync"
)

// ParseFunc is the definition of the function used to turn one raw cell
// into a typed value. It is only called with non-missing cells, unless the
// collector keeps missing cells (see Collector.KeepMissing).
type ParseFunc func(cell Cell, args Args, opts *Options) (Value, error)

// CollectorI is the collector's interface
type CollectorI interface {
	Tag() Tag
	// Code returns the shorthand code of the collector, 0 when it has none
	Code() rune
	ArgDef() ArgDef
	// Required lists the parameters the collector cannot parse without
	Required() []string
	Parse(cell Cell, args Args, opts *Options) (Value, error)
}

// Collector implements the CollectorI interface for collectors written in Go
type Collector struct {
	tag         Tag
	code        rune
	parser      ParseFunc
	args        ArgDef
	required    []string
	keepMissing bool
}

// NewCollector creates a collector for a user-defined type tag. Pass 0 as
// code when the collector needs no shorthand.
func NewCollector(tag Tag, code rune, args ArgDef, parser ParseFunc, required ...string) *Collector {
	return &Collector{
		tag:      tag,
		code:     code,
		parser:   parser,
		args:     args,
		required: required,
	}
}

func (c *Collector) Tag() Tag {
	return c.tag
}

func (c *Collector) Code() rune {
	return c.code
}

func (c *Collector) ArgDef() ArgDef {
	return c.args
}

func (c *Collector) Required() []string {
	return c.required
}

// KeepMissing reports whether missing cells are handed to the parser
// instead of becoming missing values
func (c *Collector) KeepMissing() bool {
	return c.keepMissing
}

// Parse runs the parser
func (c *Collector) Parse(cell Cell, args Args, opts *Options) (Value, error) {
	return c.parser(cell, args, opts)
}

type missingKeeper interface {
	KeepMissing() bool
}

func keepsMissing(c CollectorI) bool {
	mk, ok := c.(missingKeeper)
	return ok && mk.KeepMissing()
}

// Registry maps type tags and shorthand codes to collectors. It is safe for
// concurrent use; parsing only ever reads it.
type Registry struct {
	mu     sync.RWMutex
	byTag  map[Tag]CollectorI
	byCode map[rune]Tag
}

// defaultRegistry serves options that do not carry their own registry. It
// stays unexported and is only ever read: DefaultOptions gets its own
// registry.
var defaultRegistry = NewRegistry()

// NewEmptyRegistry returns a registry without any collector
func NewEmptyRegistry() *Registry {
	return &Registry{
		byTag:  map[Tag]CollectorI{},
		byCode: map[rune]Tag{},
	}
}

// NewRegistry returns a registry loaded with the built-in collectors
func NewRegistry() *Registry {
	r := NewEmptyRegistry()

	// This should not happen
	if err := r.Add(builtinCollectors()...); err != nil {
		panic(err)
	}

	return r
}

// Add adds the given collectors to the registry. Either all of them are
// added or, on error, none.
func (r *Registry) Add(collectors ...CollectorI) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tags := map[Tag]bool{}
	codes := map[rune]Tag{}

	for _, c := range collectors {
		tag := c.Tag()
		if strings.TrimSpace(string(tag)) == "" {
			return configErrorf("collector's tag cannot be empty")
		}

		if _, ok := r.byTag[tag]; ok || tags[tag] {
			return configErrorf("collector with tag '%s' already exists", tag)
		}
		tags[tag] = true

		code := c.Code()
		if code == 0 {
			continue
		}

		if other, ok := r.byCode[code]; ok {
			return configErrorf("shorthand code '%c' of '%s' is already used by '%s'", code, tag, other)
		}
		if other, ok := codes[code]; ok {
			return configErrorf("shorthand code '%c' of '%s' is already used by '%s'", code, tag, other)
		}
		codes[code] = tag
	}

	for _, c := range collectors {
		r.byTag[c.Tag()] = c
	}
	for code, tag := range codes {
		r.byCode[code] = tag
	}

	return nil
}

// Lookup returns the collector of the given tag
func (r *Registry) Lookup(tag Tag) (CollectorI, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byTag[tag]
	return c, ok
}

// TagForCode returns the tag of the given shorthand code
func (r *Registry) TagForCode(code rune) (Tag, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tag, ok := r.byCode[code]
	return tag, ok
}

// Code returns the shorthand code of the given tag
func (r *Registry) Code(tag Tag) (rune, bool) {
	c, ok := r.Lookup(tag)
	if !ok || c.Code() == 0 {
		return 0, false
	}

	return c.Code(), true
}

// Tags returns all registered tags, sorted
func (r *Registry) Tags() []Tag {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tags := make([]Tag, 0, len(r.byTag))
	for tag := range r.byTag {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })

	return tags
}

// validate validates that the collector is available for use and that the
// provided parameters' name and type match its requirements. It returns the
// spec with normalized parameters.
func (r *Registry) validate(c CollectorSpec) (CollectorSpec, error) {
	collector, ok := r.Lookup(c.tag)
	if !ok {
		return CollectorSpec{}, configErrorf("collector '%s' does not exist", c.tag)
	}

	args, err := normalizeArgs(c.tag, collector.ArgDef(), c.args)
	if err != nil {
		return CollectorSpec{}, err
	}

	return CollectorSpec{tag: c.tag, args: args}, nil
}

// checkRequired validates that all required parameters are provided
func (r *Registry) checkRequired(c CollectorSpec) error {
	collector, ok := r.Lookup(c.tag)
	if !ok {
		return configErrorf("collector '%s' does not exist", c.tag)
	}

	for _, name := range collector.Required() {
		if _, ok := c.args[name]; !ok {
			return configErrorf("collector '%s' requires parameter '%s'", c.tag, name)
		}
	}

	return nil
}
