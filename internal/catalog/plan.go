package catalog

// Set is one pattern together with the files it resolved to.
type Set struct {
	Pattern string
	Files   []Entry
}

// Plan is the ordered download set for a run.
type Plan struct {
	Sets []Set
}

// Resolve resolves every pattern against c, keeping pattern order.
func Resolve(c *Catalog, patterns []string) (*Plan, error) {
	plan := &Plan{Sets: make([]Set, 0, len(patterns))}
	for _, p := range patterns {
		names, err := c.Search(p)
		if err != nil {
			return nil, err
		}
		set := Set{Pattern: p, Files: make([]Entry, 0, len(names))}
		for _, name := range names {
			e, _ := c.Lookup(name)
			set.Files = append(set.Files, e)
		}
		plan.Sets = append(plan.Sets, set)
	}
	return plan, nil
}

// Files returns every planned entry, pattern order then match order.
func (p *Plan) Files() []Entry {
	var out []Entry
	for _, s := range p.Sets {
		out = append(out, s.Files...)
	}
	return out
}

// Total returns the summed catalogue size of all planned entries.
// Entries matched by more than one pattern are counted once per match.
func (p *Plan) Total() int64 {
	var total int64
	for _, s := range p.Sets {
		for _, e := range s.Files {
			total += e.Size
		}
	}
	return total
}
