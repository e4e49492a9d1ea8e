package gamecov

import (
	"math/rand"
	"testing"

	"github.com/SecurityLab-UCD/gamecov/coverage"
	"github.com/SecurityLab-UCD/gamecov/hash"
)

func newMonitor(t *testing.T, radius int) *Monitor {
	t.Helper()
	m, err := New(&Config{Radius: radius})
	if err != nil {
		t.Fatalf("New(radius=%d) error: %v", radius, err)
	}
	return m
}

func TestNewRejectsInvalidRadius(t *testing.T) {
	if _, err := New(&Config{Radius: -1}); err == nil {
		t.Error("New(radius=-1) did not error")
	}
	if _, err := New(&Config{Radius: 65}); err == nil {
		t.Error("New(radius=65) did not error")
	}
	if _, err := New(&Config{Radius: 64}); err != nil {
		t.Errorf("New(radius=64) error: %v", err)
	}
	if _, err := New(nil); err != nil {
		t.Errorf("New(nil) error: %v", err)
	}
}

// Scenario 1: R=2, one Coverage with {0x00}.
func TestScenario1SingleHash(t *testing.T) {
	m := newMonitor(t, 2)
	m.AddCov(coverage.NewSet(0x00))
	if len(m.ItemSeen()) != 1 {
		t.Errorf("ItemSeen = %d, want 1", len(m.ItemSeen()))
	}
	if m.CoverageCount() != 1 {
		t.Errorf("CoverageCount = %d, want 1", m.CoverageCount())
	}
}

// Scenario 2: R=2, one Coverage with {0x00, 0x00} (set collapses the
// duplicate before it even reaches the monitor).
func TestScenario2DuplicateWithinCoverage(t *testing.T) {
	m := newMonitor(t, 2)
	m.AddCov(coverage.NewSet(0x00, 0x00))
	if len(m.ItemSeen()) != 1 {
		t.Errorf("ItemSeen = %d, want 1", len(m.ItemSeen()))
	}
	if m.CoverageCount() != 1 {
		t.Errorf("CoverageCount = %d, want 1", m.CoverageCount())
	}
}

// Scenario 3: R=2, Coverage1={0x00, 0x01} (distance 1, within radius).
func TestScenario3NearHashesSameCoverage(t *testing.T) {
	m := newMonitor(t, 2)
	m.AddCov(coverage.NewSet(0x00, 0x01))
	if len(m.ItemSeen()) != 2 {
		t.Errorf("ItemSeen = %d, want 2", len(m.ItemSeen()))
	}
	if m.CoverageCount() != 1 {
		t.Errorf("CoverageCount = %d, want 1", m.CoverageCount())
	}
}

// Scenario 4: R=2, add {0x00}, then {0xFF} (distance 8, far).
func TestScenario4DistantHashesTwoComponents(t *testing.T) {
	m := newMonitor(t, 2)
	m.AddCov(coverage.NewSet(0x00))
	m.AddCov(coverage.NewSet(0xFF))
	if len(m.ItemSeen()) != 2 {
		t.Errorf("ItemSeen = %d, want 2", len(m.ItemSeen()))
	}
	if m.CoverageCount() != 2 {
		t.Errorf("CoverageCount = %d, want 2", m.CoverageCount())
	}
}

// Scenario 5: R=2. {0x00}, then {0x07} (distance 3, not near), then
// {0x03} (distance 2 from 0x00, distance 1 from 0x07 -- bridges them).
// CoverageCount trajectory: 1 -> 2 -> 1.
func TestScenario5TransientDecrease(t *testing.T) {
	m := newMonitor(t, 2)

	m.AddCov(coverage.NewSet(0x00))
	if got := m.CoverageCount(); got != 1 {
		t.Fatalf("after {0x00}: CoverageCount = %d, want 1", got)
	}

	m.AddCov(coverage.NewSet(0x07))
	if got := m.CoverageCount(); got != 2 {
		t.Fatalf("after {0x07}: CoverageCount = %d, want 2", got)
	}

	m.AddCov(coverage.NewSet(0x03))
	if got := m.CoverageCount(); got != 1 {
		t.Fatalf("after {0x03}: CoverageCount = %d, want 1", got)
	}

	if len(m.ItemSeen()) != 3 {
		t.Errorf("ItemSeen = %d, want 3", len(m.ItemSeen()))
	}
}

// Scenario 6: R=4, {0x0, 0xFF, 0xFFFFFFFFFFFFFFFF}. Distances:
// (0<->0xFF)=8, (0<->max)=64, (0xFF<->max)=56. All pairs exceed R=4, so
// three singleton components.
func TestScenario6AllDistinctComponents(t *testing.T) {
	m := newMonitor(t, 4)
	m.AddCov(coverage.NewSet(0x0000000000000000, 0x00000000000000FF, 0xFFFFFFFFFFFFFFFF))
	if len(m.ItemSeen()) != 3 {
		t.Errorf("ItemSeen = %d, want 3", len(m.ItemSeen()))
	}
	if m.CoverageCount() != 3 {
		t.Errorf("CoverageCount = %d, want 3", m.CoverageCount())
	}
}

// TestExactDuplicateIdempotence checks that adding the same Coverage
// twice leaves ItemSeen and CoverageCount identical to adding it once.
func TestExactDuplicateIdempotence(t *testing.T) {
	build := func() *Monitor {
		return newMonitor(t, 2)
	}
	once := build()
	cov := coverage.NewSet(0x00, 0x01, 0x07)
	once.AddCov(cov)

	twice := build()
	twice.AddCov(cov)
	twice.AddCov(cov)

	if len(once.ItemSeen()) != len(twice.ItemSeen()) {
		t.Errorf("ItemSeen differs: %d vs %d", len(once.ItemSeen()), len(twice.ItemSeen()))
	}
	if once.CoverageCount() != twice.CoverageCount() {
		t.Errorf("CoverageCount differs: %d vs %d", once.CoverageCount(), twice.CoverageCount())
	}
}

// TestItemSeenMonotonic checks that ItemSeen never shrinks across calls.
func TestItemSeenMonotonic(t *testing.T) {
	m := newMonitor(t, 3)
	rng := rand.New(rand.NewSource(7))
	prev := 0
	for i := 0; i < 50; i++ {
		hashes := make([]uint64, 1+rng.Intn(4))
		for j := range hashes {
			hashes[j] = rng.Uint64()
		}
		m.AddCov(coverage.NewSet(hashes...))
		got := len(m.ItemSeen())
		if got < prev {
			t.Fatalf("ItemSeen shrank: %d -> %d at step %d", prev, got, i)
		}
		prev = got
	}
}

// TestOrderIndependence checks that permuting the input sequence of
// Coverage objects does not change the final CoverageCount or ItemSeen.
func TestOrderIndependence(t *testing.T) {
	sets := [][]uint64{
		{0x00, 0x01},
		{0x07},
		{0x03},
		{0xFF},
		{0x80, 0x81, 0x82},
	}

	buildWithOrder := func(order []int) (int, int) {
		m := newMonitor(t, 2)
		for _, idx := range order {
			m.AddCov(coverage.NewSet(sets[idx]...))
		}
		return len(m.ItemSeen()), m.CoverageCount()
	}

	baseItems, baseCount := buildWithOrder([]int{0, 1, 2, 3, 4})

	rng := rand.New(rand.NewSource(9))
	for trial := 0; trial < 20; trial++ {
		order := rng.Perm(len(sets))
		items, count := buildWithOrder(order)
		if items != baseItems || count != baseCount {
			t.Fatalf("order %v: got (items=%d, count=%d), want (items=%d, count=%d)",
				order, items, count, baseItems, baseCount)
		}
	}
}

// TestCoverageCountMatchesConnectedComponents compares CoverageCount
// against a brute-force BFS over the R-neighborhood graph.
func TestCoverageCountMatchesConnectedComponents(t *testing.T) {
	const radius = 5
	m := newMonitor(t, radius)
	rng := rand.New(rand.NewSource(11))

	var all []uint64
	for i := 0; i < 30; i++ {
		n := 1 + rng.Intn(3)
		hashes := make([]uint64, n)
		for j := range hashes {
			// Bias towards small values so near-neighbor edges
			// actually occur in the test graph.
			hashes[j] = rng.Uint64() % (1 << 12)
		}
		m.AddCov(coverage.NewSet(hashes...))
		all = append(all, hashes...)
	}

	want := bruteForceComponentCount(all, radius)
	if got := m.CoverageCount(); got != want {
		t.Errorf("CoverageCount = %d, want %d (brute-force connected components)", got, want)
	}
}

func bruteForceComponentCount(values []uint64, radius int) int {
	uniq := make(map[uint64]struct{})
	for _, v := range values {
		uniq[v] = struct{}{}
	}
	nodes := make([]uint64, 0, len(uniq))
	for v := range uniq {
		nodes = append(nodes, v)
	}

	adj := make(map[uint64][]uint64, len(nodes))
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			if hash.Hamming(nodes[i], nodes[j]) <= radius {
				adj[nodes[i]] = append(adj[nodes[i]], nodes[j])
				adj[nodes[j]] = append(adj[nodes[j]], nodes[i])
			}
		}
	}

	visited := make(map[uint64]bool, len(nodes))
	components := 0
	for _, start := range nodes {
		if visited[start] {
			continue
		}
		components++
		queue := []uint64{start}
		visited[start] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, next := range adj[cur] {
				if !visited[next] {
					visited[next] = true
					queue = append(queue, next)
				}
			}
		}
	}
	return components
}

func TestReset(t *testing.T) {
	m := newMonitor(t, 2)
	m.AddCov(coverage.NewSet(0x00, 0x01))
	if m.CoverageCount() == 0 {
		t.Fatal("expected non-zero coverage before Reset")
	}
	m.Reset()
	if len(m.ItemSeen()) != 0 {
		t.Errorf("ItemSeen after Reset = %d, want 0", len(m.ItemSeen()))
	}
	if m.CoverageCount() != 0 {
		t.Errorf("CoverageCount after Reset = %d, want 0", m.CoverageCount())
	}
	cov := coverage.NewSet(0x00, 0x01)
	if m.IsSeen(cov) {
		t.Error("IsSeen true after Reset for a previously-seen path")
	}
}

func TestIsSeen(t *testing.T) {
	m := newMonitor(t, 2)
	cov := coverage.NewSet(0x00, 0x01)
	if m.IsSeen(cov) {
		t.Error("IsSeen true before AddCov")
	}
	m.AddCov(cov)
	if !m.IsSeen(cov) {
		t.Error("IsSeen false after AddCov")
	}
	// A Coverage with identical hashes (same path-id) should also read
	// as seen, even as a distinct object.
	if !m.IsSeen(coverage.NewSet(0x01, 0x00)) {
		t.Error("IsSeen false for a coverage with the same hash set")
	}
}
