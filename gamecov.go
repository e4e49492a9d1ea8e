// Package gamecov tracks frame coverage across many gameplay recordings
// in a fuzzing harness. Each recording contributes a set of 64-bit
// perceptual hashes (a Coverage); the Monitor decides, over an
// ever-growing corpus, how many semantically distinct frames have been
// observed under a Hamming-distance tolerance, by indexing hashes in a
// BK-tree and tracking near-duplicate groups with a union-find forest.
//
// The resulting coverage count is the number of connected components in
// the graph where nodes are hashes and edges connect pairs within the
// configured radius — an order-independent metric, unlike a naive
// first-seen-wins dedup.
package gamecov

import (
	"errors"
	"expvar"
	"fmt"

	"github.com/SecurityLab-UCD/gamecov/bktree"
	"github.com/SecurityLab-UCD/gamecov/coverage"
	"github.com/SecurityLab-UCD/gamecov/unionfind"
)

// MaxRadius is the largest Hamming-distance radius the core supports,
// fixed by the 64-bit hash width.
const MaxRadius = 64

// DefaultRadius is the project-wide default tolerance for "near"
// hashes when a Config doesn't specify one.
const DefaultRadius = 6

// ErrInvalidRadius is returned by New when Config.Radius falls outside
// [0, MaxRadius].
var ErrInvalidRadius = errors.New("radius must be in [0, 64]")

// Config configures a Monitor. Radius is the only recognized option.
type Config struct {
	// Radius is the inclusive Hamming-distance threshold under which
	// two hashes are considered near. Must be in [0, 64].
	Radius int
}

// NewConfig returns a Config with the project default radius.
func NewConfig() *Config {
	return &Config{Radius: DefaultRadius}
}

// Monitor ingests Coverage objects, deduplicating exact repeats and
// grouping near hashes (within Radius) into components via a BK-tree
// index and a union-find forest. It is the core, order-independent
// coverage tracker; see the gamecov/greedy package for the optional,
// order-dependent simpler variant.
//
// A Monitor is not safe for concurrent use; callers needing concurrency
// must provide their own mutual exclusion.
type Monitor struct {
	radius int

	pathSeen map[string]struct{}
	itemSeen map[uint64]struct{}
	tree     *bktree.Tree
	uf       *unionfind.Forest
}

// New constructs an empty Monitor. It returns ErrInvalidRadius if
// cfg.Radius is outside [0, 64]. A nil cfg is equivalent to NewConfig().
func New(cfg *Config) (*Monitor, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	if cfg.Radius < 0 || cfg.Radius > MaxRadius {
		return nil, fmt.Errorf("gamecov: New: %w (got %d)", ErrInvalidRadius, cfg.Radius)
	}
	return &Monitor{
		radius:   cfg.Radius,
		pathSeen: make(map[string]struct{}),
		itemSeen: make(map[uint64]struct{}),
		tree:     bktree.New(),
		uf:       unionfind.New(),
	}, nil
}

// IsSeen reports whether cov's path-id has already been ingested. Pure
// query; does not mutate the monitor.
func (m *Monitor) IsSeen(cov coverage.Coverage) bool {
	_, ok := m.pathSeen[cov.PathID()]
	return ok
}

// AddCov ingests cov: its path-id is recorded, then every hash in its
// coverage set not already seen is inserted into the BK-tree and unioned
// with its existing neighbors in the union-find forest.
//
// For each new hash h, make_set(h) happens before any union, and the
// BK-tree insertion of h happens after the neighborhood query — so h
// never appears as its own neighbor and every hash find_all_within
// returns has already been introduced to the union-find forest.
func (m *Monitor) AddCov(cov coverage.Coverage) {
	totalCoverageIngested.Add(1)
	pathID := cov.PathID()
	if _, ok := m.pathSeen[pathID]; ok {
		totalDuplicatePaths.Add(1)
	}
	m.pathSeen[pathID] = struct{}{}

	for h := range cov.Hashes() {
		if _, ok := m.itemSeen[h]; ok {
			continue
		}
		neighbors := m.tree.FindAllWithin(h, m.radius)
		m.uf.MakeSet(h)
		for _, n := range neighbors {
			m.uf.Union(h, n)
		}
		m.tree.Insert(h)
		m.itemSeen[h] = struct{}{}
		totalHashesAccepted.Add(1)
	}
}

// CoverageCount returns the number of connected components in the
// R-neighborhood graph over every hash accepted so far. It may
// transiently decrease when a newly accepted hash bridges two
// previously disjoint components; ItemSeen never does.
func (m *Monitor) CoverageCount() int {
	return m.uf.Len()
}

// ItemSeen returns every distinct hash accepted so far, in unspecified
// order. Its length is monotonically non-decreasing across AddCov
// calls.
func (m *Monitor) ItemSeen() []uint64 {
	out := make([]uint64, 0, len(m.itemSeen))
	for h := range m.itemSeen {
		out = append(out, h)
	}
	return out
}

// Reset empties path_seen, item_seen, the BK-tree, and the union-find
// forest, atomically with respect to any observer of this Monitor (there
// are no suspension points within Reset).
func (m *Monitor) Reset() {
	m.pathSeen = make(map[string]struct{})
	m.itemSeen = make(map[uint64]struct{})
	m.tree.Reset()
	m.uf = unionfind.New()
}

var (
	// totalCoverageIngested counts every AddCov call, regardless of
	// whether its path-id was already seen.
	totalCoverageIngested = expvar.NewInt("gamecov.totalCoverageIngested")
	// totalHashesAccepted counts every hash that passed the exact-
	// duplicate check and was inserted into the BK-tree.
	totalHashesAccepted = expvar.NewInt("gamecov.totalHashesAccepted")
	// totalDuplicatePaths counts AddCov calls whose path-id had already
	// been ingested.
	totalDuplicatePaths = expvar.NewInt("gamecov.totalDuplicatePaths")
)
