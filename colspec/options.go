package colspec

import (
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultGuessMax is the number of non-missing values sampled per column
// when guessing its type
const DefaultGuessMax = 1000

var (
	// DefaultNA lists the raw values read as missing
	DefaultNA = []string{"", "NA"}

	// DefaultDateFormats is the pattern set tried when a date column has no
	// explicit format. Patterns use Go time layouts.
	DefaultDateFormats = []string{
		"2006-01-02",
		"2006/01/02",
		"01/02/2006",
		"02/01/2006",
		"Jan 2, 2006",
		"2 Jan 2006",
	}

	// DefaultDatetimeFormats is the pattern set tried when a datetime column
	// has no explicit format
	DefaultDatetimeFormats = []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04",
		"01/02/2006 15:04:05",
	}
)

// Options configures resolution and parsing. The zero value is usable: every
// unset field falls back to its default.
type Options struct {
	// Default is the rule applied to columns the spec says nothing about,
	// guess when unset
	Default CollectorSpec `yaml:"default"`
	// GuessMax bounds the number of non-missing values sampled for guessing
	GuessMax int `yaml:"guessMax"`
	// Lenient turns named references matching no header, or several, into
	// warnings: the column falls back to the default rule
	Lenient bool `yaml:"lenient"`
	// FirstMatch resolves a name matching several headers to the first one
	FirstMatch bool `yaml:"firstMatch"`
	// NA lists the raw values read as missing
	NA []string `yaml:"na"`
	// KeepWS keeps leading and trailing white space of text cells
	KeepWS          bool     `yaml:"keepWs"`
	DateFormats     []string `yaml:"dateFormats"`
	DatetimeFormats []string `yaml:"datetimeFormats"`
	// Workers bounds the number of columns parsed concurrently
	Workers int `yaml:"workers"`

	Registry *Registry         `yaml:"-"`
	Logger   logrus.FieldLogger `yaml:"-"`

	na map[string]bool
}

// DefaultOptions returns options with every default filled in. The
// registry is a new one, collectors added to it are only seen by users of
// these options.
func DefaultOptions() *Options {
	return (&Options{Registry: NewRegistry()}).withDefaults()
}

// withDefaults returns a copy of the options with the unset fields filled in
func (o *Options) withDefaults() *Options {
	c := Options{}
	if o != nil {
		c = *o
	}

	if c.Default.IsZero() {
		c.Default = Guess()
	}
	if c.GuessMax <= 0 {
		c.GuessMax = DefaultGuessMax
	}
	if c.NA == nil {
		c.NA = DefaultNA
	}
	if len(c.DateFormats) == 0 {
		c.DateFormats = DefaultDateFormats
	}
	if len(c.DatetimeFormats) == 0 {
		c.DatetimeFormats = DefaultDatetimeFormats
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.Registry == nil {
		c.Registry = defaultRegistry
	}
	if c.Logger == nil {
		c.Logger = logrus.StandardLogger()
	}

	c.na = make(map[string]bool, len(c.NA))
	for _, v := range c.NA {
		c.na[v] = true
	}

	return &c
}

// clean returns the text of a cell as the collectors see it
func (o *Options) clean(s string) string {
	if o.KeepWS {
		return s
	}

	return strings.TrimSpace(s)
}

// isMissing reports whether the cell holds no value
func (o *Options) isMissing(c Cell) bool {
	switch c.Kind {
	case KindEmpty:
		return true
	case KindText:
		s := strings.TrimSpace(c.Text)
		return s == "" || o.na[s] || o.na[c.Text]
	}

	return false
}

// formats returns the default pattern set of a date-like tag
func (o *Options) formats(tag Tag) []string {
	if tag == TagDatetime {
		return o.DatetimeFormats
	}

	return o.DateFormats
}

var locations sync.Map

// loadLocation loads and caches a time zone, UTC when name is empty
func loadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}

	if loc, ok := locations.Load(name); ok {
		return loc.(*time.Location), nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, err
	}
	locations.Store(name, loc)

	return loc, nil
}
