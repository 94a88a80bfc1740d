package results

// Results is an ordered, immutable collection of findings.
type Results struct {
	items []Finding
}

// Builder accumulates findings one at a time.
// The zero value is ready to use.
type Builder struct {
	items []Finding
}

// NewBuilder returns a builder with room for sizeHint findings.
func NewBuilder(sizeHint int) *Builder {
	if sizeHint < 0 {
		sizeHint = 0
	}
	return &Builder{items: make([]Finding, 0, sizeHint)}
}

// Add appends a finding.
func (b *Builder) Add(f Finding) *Builder {
	b.items = append(b.items, f)
	return b
}

// Len returns the number of findings added so far.
func (b *Builder) Len() int { return len(b.items) }

// Build snapshots the builder. Later calls to Add do not affect the returned value.
func (b *Builder) Build() Results {
	out := make([]Finding, len(b.items))
	copy(out, b.items)
	return Results{items: out}
}

// Of is a convenience constructor.
func Of(findings ...Finding) Results {
	b := NewBuilder(len(findings))
	for _, f := range findings {
		b.Add(f)
	}
	return b.Build()
}

// Len returns the number of findings.
func (r Results) Len() int { return len(r.items) }

// IsEmpty reports whether there are no findings.
func (r Results) IsEmpty() bool { return len(r.items) == 0 }

// At returns the i-th finding.
func (r Results) At(i int) Finding { return r.items[i] }

// All returns a copy of the findings in insertion order.
func (r Results) All() []Finding {
	out := make([]Finding, len(r.items))
	copy(out, r.items)
	return out
}

// Each calls fn for every finding in order.
func (r Results) Each(fn func(i int, f Finding)) {
	for i, f := range r.items {
		fn(i, f)
	}
}
