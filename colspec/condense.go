package colspec

// Condense returns the most compact spec that resolves back to r against
// the same header:
//   - a single default rule when every column shares one collector,
//   - a shorthand string when every collector has a code and no parameters,
//   - otherwise the most frequent collector as default plus one entry per
//     exception, addressed by header name when the name is unique, by
//     position when it is not.
func (r *Resolved) Condense() Spec {
	if len(r.Cols) == 0 {
		def := r.Default
		return Spec{Default: &def}
	}

	first := r.Cols[0].Collector
	same := true
	for _, c := range r.Cols[1:] {
		if !c.Collector.Equal(first) {
			same = false
			break
		}
	}
	if same {
		return Spec{Default: &first}
	}

	if s, ok := r.shorthand(); ok {
		return Spec{Shorthand: s}
	}

	def := r.mostFrequent()
	names := map[string]int{}
	for _, c := range r.Cols {
		names[c.Name]++
	}

	s := Spec{Default: &def}
	for _, c := range r.Cols {
		if c.Collector.Equal(def) {
			continue
		}

		if c.Name != "" && names[c.Name] == 1 {
			s.Cols = append(s.Cols, ByName(c.Name, c.Collector))
		} else {
			s.Cols = append(s.Cols, ByPos(c.Pos, c.Collector))
		}
	}

	return s
}

// shorthand returns the shorthand form of r, when every column has a
// parameterless collector with a code
func (r *Resolved) shorthand() (string, bool) {
	tags := make([]Tag, len(r.Cols))
	for i, c := range r.Cols {
		if len(c.Collector.args) > 0 {
			return "", false
		}
		tags[i] = c.Collector.tag
	}

	s, err := FormatShorthand(tags, r.registry())
	if err != nil {
		return "", false
	}

	return s, true
}

// mostFrequent returns the collector shared by most columns, the earliest
// one on ties
func (r *Resolved) mostFrequent() CollectorSpec {
	best, bestN := r.Cols[0].Collector, 0

	for i, c := range r.Cols {
		n := 0
		for _, o := range r.Cols[i:] {
			if o.Collector.Equal(c.Collector) {
				n++
			}
		}

		if n > bestN {
			best, bestN = c.Collector, n
		}
	}

	return best
}
