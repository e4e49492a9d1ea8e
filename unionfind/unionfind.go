// Package unionfind implements a disjoint-set forest over uint64 values
// with path splitting and union by rank. Component count is maintained
// incrementally so it can be read in O(1).
package unionfind

// Forest is a disjoint-set forest. Create one with New; the zero value
// is not ready to use.
type Forest struct {
	parent     map[uint64]uint64
	rank       map[uint64]uint8
	components int
}

// New returns an empty Forest.
func New() *Forest {
	return &Forest{
		parent: make(map[uint64]uint64),
		rank:   make(map[uint64]uint8),
	}
}

// MakeSet introduces x as its own representative, if not already known.
// No-op if x has already been introduced.
func (f *Forest) MakeSet(x uint64) {
	if _, ok := f.parent[x]; ok {
		return
	}
	f.parent[x] = x
	f.rank[x] = 0
	f.components++
}

// Find returns the representative of the set containing x, applying
// path splitting as it walks up. x must have been previously introduced
// via MakeSet or Union; calling Find on an unknown value is a
// programmer error.
func (f *Forest) Find(x uint64) uint64 {
	p, ok := f.parent[x]
	if !ok {
		panic("unionfind: Find called on a value never introduced via MakeSet or Union")
	}
	for p != x {
		gp := f.parent[p]
		f.parent[x] = gp // path splitting: point x at its grandparent.
		x, p = p, gp
	}
	return x
}

// Union merges the sets containing a and b. Both must already exist (via
// prior MakeSet/Union calls). Returns true iff a merge actually
// occurred (the two were in different sets).
func (f *Forest) Union(a, b uint64) bool {
	ra, rb := f.Find(a), f.Find(b)
	if ra == rb {
		return false
	}
	rankA, rankB := f.rank[ra], f.rank[rb]
	switch {
	case rankA < rankB:
		f.parent[ra] = rb
	case rankA > rankB:
		f.parent[rb] = ra
	default:
		f.parent[rb] = ra
		f.rank[ra]++
	}
	f.components--
	return true
}

// Len returns the number of distinct components (live representatives)
// currently tracked.
func (f *Forest) Len() int {
	return f.components
}
