package colspec

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Resolve reconciles a user spec with the columns of the grid and returns a
// fully resolved specification. Each position takes, in priority order, its
// explicit entry, its shorthand code, then the default rule; guess
// collectors are resolved from the column's sample. Structural problems
// abort resolution and nothing is returned half resolved.
func Resolve(g *Grid, s Spec, opts *Options) (*Resolved, error) {
	opts = opts.withDefaults()
	reg := opts.Registry
	ncols := g.NumCols()

	def := opts.Default
	if s.Default != nil {
		def = *s.Default
	}

	def, err := reg.validate(def)
	if err != nil {
		return nil, errors.Wrap(err, "default rule")
	}

	var codes []Tag
	if s.Shorthand != "" {
		if codes, err = ParseShorthand(s.Shorthand, reg); err != nil {
			return nil, err
		}

		if len(codes) != ncols {
			return nil, shapeError(fmt.Sprintf("shorthand '%s'", s.Shorthand), ncols, len(codes))
		}
	}

	explicit, warnings, err := matchCols(g, s.Cols, opts)
	if err != nil {
		return nil, err
	}

	r := &Resolved{
		Cols:     make([]ColumnSpec, ncols),
		Default:  def,
		Warnings: warnings,
		reg:      reg,
	}

	for pos := 0; pos < ncols; pos++ {
		var c CollectorSpec
		implicit := false

		if e, ok := explicit[pos]; ok {
			c = e
		} else if codes != nil {
			c = CollectorSpec{tag: codes[pos]}
			implicit = codes[pos] == TagGuess
		} else {
			c = def
			implicit = true
		}

		if c, err = finalize(g, pos, c, opts); err != nil {
			return nil, errors.Wrapf(err, "column %d ('%s')", pos, g.Name(pos))
		}

		r.Cols[pos] = ColumnSpec{Pos: pos, Name: g.Name(pos), Collector: c}
		if implicit {
			r.Implicit = append(r.Implicit, pos)
		}
	}

	opts.Logger.WithFields(logrus.Fields{
		"columns":  ncols,
		"implicit": len(r.Implicit),
		"warnings": len(r.Warnings),
	}).Debug("column specification resolved")

	return r, nil
}

// matchCols maps every explicit entry to its column position
func matchCols(g *Grid, cols []ColDef, opts *Options) (map[int]CollectorSpec, []Diagnostic, error) {
	explicit := map[int]CollectorSpec{}
	owner := map[int]int{}
	var warnings []Diagnostic
	ncols := g.NumCols()

	for i, d := range cols {
		c, err := opts.Registry.validate(d.Collector())
		if err != nil {
			return nil, nil, errors.Wrapf(err, "column entry %s", d.label())
		}

		var pos int
		switch {
		case d.Pos != nil:
			pos = *d.Pos
			if pos < 0 {
				return nil, nil, configErrorf("column entry %s: position cannot be negative", d.label())
			}
			if pos >= ncols {
				return nil, nil, shapeError("explicit spec", ncols, pos+1)
			}
			if d.Name != "" && g.Name(pos) != d.Name {
				return nil, nil, configErrorf("column entry %s: name '%s' does not match header '%s'", d.label(), d.Name, g.Name(pos))
			}
		case d.Name != "":
			var found bool
			pos, found, err = matchName(g, d.Name, opts)
			if err != nil {
				return nil, nil, err
			}
			if !found {
				unresolved := &UnresolvedColumnError{Name: d.Name, Matches: g.positions(d.Name)}
				opts.Logger.WithField("column", d.Name).Warn("column reference ignored: ", unresolved)
				warnings = append(warnings, Diagnostic{
					Row:    -1,
					Col:    -1,
					Name:   d.Name,
					Tag:    c.Tag(),
					Reason: unresolved.Error(),
					Level:  logrus.WarnLevel,
				})
				continue
			}
		default:
			return nil, nil, configErrorf("column entry %d has neither a name nor a position", i)
		}

		if prev, ok := owner[pos]; ok {
			return nil, nil, configErrorf("column entries %s and %s both resolve to position %d", cols[prev].label(), d.label(), pos)
		}

		owner[pos] = i
		explicit[pos] = c
	}

	return explicit, warnings, nil
}

// matchName finds the position of a named column. A name matching nothing
// or several headers is an error unless the options are lenient, in which
// case it is reported as not found. FirstMatch settles the several headers
// case on the first one.
func matchName(g *Grid, name string, opts *Options) (int, bool, error) {
	matches := g.positions(name)

	switch {
	case len(matches) == 1:
		return matches[0], true, nil
	case len(matches) > 1 && opts.FirstMatch:
		return matches[0], true, nil
	case opts.Lenient:
		return 0, false, nil
	}

	return 0, false, errors.WithStack(&UnresolvedColumnError{Name: name, Matches: matches})
}

// finalize turns the collector of one column into a concrete, parseable
// one: guesses are resolved and date-like collectors get a format
func finalize(g *Grid, pos int, c CollectorSpec, opts *Options) (CollectorSpec, error) {
	reg := opts.Registry

	if c.tag == TagGuess {
		c = guess(sampleColumn(g, pos, opts), opts)
		opts.Logger.WithFields(logrus.Fields{
			"column": g.Name(pos),
			"pos":    pos,
			"type":   c.String(),
		}).Debug("column type guessed")
	}

	switch c.tag {
	case TagDate, TagDatetime:
		if _, ok := c.args["format"]; !ok {
			collector, _ := reg.Lookup(c.tag)
			format, n := matchFormats(collector, c.tag, sampleColumn(g, pos, opts), opts)
			switch {
			case n == 0:
				return CollectorSpec{}, configErrorf("no default %s format matches the column, a format is required", c.tag)
			case n > 1:
				return CollectorSpec{}, configErrorf("%d default %s formats match the column, a format is required", n, c.tag)
			}
			c = c.With("format", format)
		}

		if _, err := loadLocation(argString(c.args, "tz")); err != nil {
			return CollectorSpec{}, configErrorf("invalid time zone: %s", err)
		}
	case TagList:
		if name := argString(c.args, "type"); name != "" {
			switch Tag(name) {
			case TagList, TagSkip, TagGuess:
				return CollectorSpec{}, configErrorf("list elements cannot be of type '%s'", name)
			}

			inner, ok := reg.Lookup(Tag(name))
			if !ok {
				return CollectorSpec{}, configErrorf("collector '%s' does not exist", name)
			}
			if len(inner.Required()) > 0 {
				return CollectorSpec{}, configErrorf("list elements cannot be of type '%s', it requires parameters", name)
			}
		}
	}

	if err := reg.checkRequired(c); err != nil {
		return CollectorSpec{}, err
	}

	return c, nil
}
