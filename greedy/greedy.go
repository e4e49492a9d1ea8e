// Package greedy implements the optional, order-dependent coverage
// monitor variant: a flat set of accepted hashes, where a new hash is
// accepted only if no already-accepted hash is within the configured
// radius of it.
//
// Unlike gamecov.Monitor, this variant's CoverageCount has no meaning
// beyond "how many hashes were accepted, in this insertion order" — it
// is NOT the number of connected components of the R-neighborhood
// graph, and must not be compared against gamecov.Monitor's
// CoverageCount for equivalence. Only monotonicity of ItemSeen is
// guaranteed to agree between the two variants.
package greedy

import (
	"github.com/SecurityLab-UCD/gamecov/coverage"
	"github.com/SecurityLab-UCD/gamecov/hash"
)

// Monitor is the greedy first-seen-wins coverage tracker. It shares
// gamecov.Monitor's IsSeen/AddCov/Reset surface but accepts a hash only
// if no previously accepted hash is within Radius of it.
type Monitor struct {
	radius int

	pathSeen map[string]struct{}
	accepted []uint64
	itemSeen map[uint64]struct{}
}

// New constructs an empty greedy Monitor for the given radius, which
// must be in [0, 64].
func New(radius int) *Monitor {
	return &Monitor{
		radius:   radius,
		pathSeen: make(map[string]struct{}),
		itemSeen: make(map[uint64]struct{}),
	}
}

// IsSeen reports whether cov's path-id has already been ingested.
func (m *Monitor) IsSeen(cov coverage.Coverage) bool {
	_, ok := m.pathSeen[cov.PathID()]
	return ok
}

// AddCov ingests cov. Exact duplicates of accepted hashes are skipped;
// any other hash is accepted only if no already-accepted hash is within
// Radius of it, and otherwise rejected outright (not added to ItemSeen).
//
// This is order-dependent: which hashes end up accepted depends on the
// order both across and within AddCov calls, since acceptance is
// evaluated against whatever has already been accepted so far.
func (m *Monitor) AddCov(cov coverage.Coverage) {
	m.pathSeen[cov.PathID()] = struct{}{}
	for h := range cov.Hashes() {
		if _, ok := m.itemSeen[h]; ok {
			continue
		}
		if m.nearAccepted(h) {
			continue
		}
		m.accepted = append(m.accepted, h)
		m.itemSeen[h] = struct{}{}
	}
}

func (m *Monitor) nearAccepted(h uint64) bool {
	for _, a := range m.accepted {
		if hash.Hamming(h, a) <= m.radius {
			return true
		}
	}
	return false
}

// CoverageCount returns the number of hashes accepted so far. See the
// package doc comment: this is order-dependent and not a connected-
// component count.
func (m *Monitor) CoverageCount() int {
	return len(m.accepted)
}

// ItemSeen returns every distinct hash accepted so far, in unspecified
// order.
func (m *Monitor) ItemSeen() []uint64 {
	out := make([]uint64, 0, len(m.itemSeen))
	for h := range m.itemSeen {
		out = append(out, h)
	}
	return out
}

// Reset empties path_seen, item_seen, and the accepted set.
func (m *Monitor) Reset() {
	m.pathSeen = make(map[string]struct{})
	m.itemSeen = make(map[uint64]struct{})
	m.accepted = nil
}
