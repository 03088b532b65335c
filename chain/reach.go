package chain

// Qualitative reachability over the chain's successor relation. Rates are
// ignored; only which entries are nonzero matters.

// RowSet is a set of chain rows.
type RowSet map[int]struct{}

func NewRowSet(rows ...int) RowSet {
	s := make(RowSet, len(rows))
	for _, r := range rows {
		s.Add(r)
	}
	return s
}

func (s RowSet) Has(r int) bool { _, ok := s[r]; return ok }
func (s RowSet) Add(r int)      { s[r] = struct{}{} }
func (s RowSet) Size() int      { return len(s) }

// Union returns a new set holding the rows of both.
func (s RowSet) Union(other RowSet) RowSet {
	out := make(RowSet, len(s)+len(other))
	for r := range s {
		out.Add(r)
	}
	for r := range other {
		out.Add(r)
	}
	return out
}

// Equals reports whether both sets hold the same rows.
func (s RowSet) Equals(other RowSet) bool {
	if len(s) != len(other) {
		return false
	}
	for r := range s {
		if !other.Has(r) {
			return false
		}
	}
	return true
}

// preE returns the rows with SOME successor in w:
// preE(W) = { r | ∃ r' . R(r,r') ∧ r' ∈ W }
func (c *Chain) preE(w RowSet) RowSet {
	out := NewRowSet()
	for r, row := range c.Rows {
		for _, e := range row {
			if w.Has(e.Column) {
				out.Add(r)
				break
			}
		}
	}
	return out
}

// ReachSet returns the rows from which some path reaches a row carrying
// label, E[true U label] as a least fixpoint:
// W0 = Sat(label), W_{i+1} = W_i ∪ preE(W_i).
func (c *Chain) ReachSet(label string) RowSet {
	w := NewRowSet(c.Labels[label]...)
	for {
		next := w.Union(c.preE(w))
		if next.Equals(w) {
			return w
		}
		w = next
	}
}

// CanReach reports whether the initial row can reach label at all.
func (c *Chain) CanReach(label string) bool {
	init := c.Labels[LabelInit]
	if len(init) == 0 {
		return false
	}
	return c.ReachSet(label).Has(init[0])
}
