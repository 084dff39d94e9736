package colspec

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// cancelCheckEvery is the number of rows parsed between two cancellation checks
const cancelCheckEvery = 1024

// Column is one typed output column
type Column struct {
	Pos       int
	Name      string
	Collector CollectorSpec
	Values    []Value
}

// Result holds the typed columns of a parse, in position order and without
// the skipped ones, along with every diagnostic collected on the way
type Result struct {
	Columns     []Column
	Diagnostics []Diagnostic
	Spec        *Resolved
}

// Column returns the first output column with the given name
func (r *Result) Column(name string) (*Column, bool) {
	for i := range r.Columns {
		if r.Columns[i].Name == name {
			return &r.Columns[i], true
		}
	}

	return nil, false
}

// HasErrors reports whether any cell failed to parse
func (r *Result) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Level <= logrus.ErrorLevel {
			return true
		}
	}

	return false
}

// NumRows returns the number of rows of the typed columns
func (r *Result) NumRows() int {
	if len(r.Columns) == 0 {
		return 0
	}

	return len(r.Columns[0].Values)
}

// Read resolves the spec against the grid and parses it
func Read(ctx context.Context, g *Grid, s Spec, opts *Options) (*Result, error) {
	r, err := Resolve(g, s, opts)
	if err != nil {
		return nil, err
	}

	return Parse(ctx, g, r, opts)
}

// Parse applies a resolved specification to every cell of the grid, using
// the registry it was resolved with unless opts carries one. A cell
// that does not conform to its column's type becomes a failed value and a
// diagnostic; it never aborts the parse. Columns are parsed concurrently,
// the result is the same as a sequential parse. The only errors are a
// specification that is not fully resolved and the cancellation of ctx.
func Parse(ctx context.Context, g *Grid, r *Resolved, opts *Options) (*Result, error) {
	if opts == nil || opts.Registry == nil {
		o := Options{}
		if opts != nil {
			o = *opts
		}
		o.Registry = r.reg
		opts = &o
	}
	opts = opts.withDefaults()

	out := r.Output()
	collectors := make([]CollectorI, len(out))
	for i, cs := range out {
		if cs.Collector.Tag() == TagGuess {
			return nil, configErrorf("column %d is still set to guess, resolve the spec before parsing", cs.Pos)
		}

		c, ok := opts.Registry.Lookup(cs.Collector.Tag())
		if !ok {
			return nil, configErrorf("collector '%s' of column %d does not exist", cs.Collector.Tag(), cs.Pos)
		}
		collectors[i] = c
	}

	res := &Result{
		Columns: make([]Column, len(out)),
		Spec:    r,
	}
	diags := make([][]Diagnostic, len(out))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(opts.Workers)

	for i := range out {
		i := i
		eg.Go(func() error {
			col, d, err := parseColumn(egCtx, g, out[i], collectors[i], opts)
			if err != nil {
				return err
			}

			res.Columns[i] = col
			diags[i] = d
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	all := append([]Diagnostic(nil), r.Warnings...)
	all = append(all, shapeDiagnostics(g, len(r.Cols))...)
	for _, d := range diags {
		all = append(all, d...)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].less(all[j]) })
	res.Diagnostics = all

	opts.Logger.WithFields(logrus.Fields{
		"columns":     len(res.Columns),
		"rows":        g.NumRows(),
		"diagnostics": len(res.Diagnostics),
	}).Debug("grid parsed")

	return res, nil
}

// parseColumn parses every row of one column
func parseColumn(ctx context.Context, g *Grid, cs ColumnSpec, c CollectorI, opts *Options) (Column, []Diagnostic, error) {
	tag := cs.Collector.Tag()
	args := cs.Collector.Args()
	keepMissing := keepsMissing(c)

	col := Column{
		Pos:       cs.Pos,
		Name:      cs.Name,
		Collector: cs.Collector,
		Values:    make([]Value, g.NumRows()),
	}

	var diags []Diagnostic

	for row := range g.Rows {
		if row%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return Column{}, nil, err
			}
		}

		cell := g.cell(row, cs.Pos)
		if !keepMissing && opts.isMissing(cell) {
			col.Values[row] = missingValue(tag)
			continue
		}

		v, err := c.Parse(cell, args, opts)
		if err != nil {
			col.Values[row] = failedValue(tag)
			diags = append(diags, Diagnostic{
				Row:    row,
				Col:    cs.Pos,
				Name:   cs.Name,
				Raw:    cell.String(),
				Tag:    tag,
				Reason: err.Error(),
				Level:  logrus.ErrorLevel,
			})
			continue
		}

		if v.Tag == "" {
			v.Tag = tag
		}
		col.Values[row] = v
	}

	if err := ctx.Err(); err != nil {
		return Column{}, nil, err
	}

	return col, diags, nil
}

// shapeDiagnostics reports the rows whose length differs from the column
// count, skipped columns included
func shapeDiagnostics(g *Grid, ncols int) []Diagnostic {
	var diags []Diagnostic

	for row, cells := range g.Rows {
		if len(cells) == ncols {
			continue
		}

		reason := fmt.Sprintf("row has %d cells, expected %d: missing cells read as empty", len(cells), ncols)
		if len(cells) > ncols {
			reason = fmt.Sprintf("row has %d cells, expected %d: extra cells ignored", len(cells), ncols)
		}

		diags = append(diags, Diagnostic{
			Row:    row,
			Col:    -1,
			Reason: reason,
			Level:  logrus.WarnLevel,
		})
	}

	return diags
}
