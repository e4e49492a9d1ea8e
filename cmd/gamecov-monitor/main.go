// Command gamecov-monitor feeds a manifest of gameplay recordings
// through a gamecov.Monitor and reports the resulting coverage. It also
// serves expvar debug counters over HTTP for long runs.
package main

import (
	"container/ring"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/SecurityLab-UCD/gamecov"
	"github.com/SecurityLab-UCD/gamecov/coverage"
	"github.com/SecurityLab-UCD/gamecov/frame"
	"github.com/SecurityLab-UCD/gamecov/greedy"
	"github.com/SecurityLab-UCD/gamecov/logging"
)

// recentPathsSize bounds how many recording paths the CLI remembers for
// ingestUnique's skip check; a manifest listing far more distinct paths
// than this just loses some dedup coverage on the oldest entries, it
// never grows without bound.
const recentPathsSize = 256

var (
	manifestPath = flag.String("manifest", "", "path to a bencode-encoded recording manifest")
	radius       = flag.Int("radius", gamecov.DefaultRadius, "inclusive Hamming-distance radius for near hashes")
	greedyMode   = flag.Bool("greedy", false, "use the order-dependent greedy monitor variant instead of the BK-tree/union-find core")
	httpAddr     = flag.String("http", "", "if set, serve /debug/vars on this address (e.g. :8711)")
	replay       = flag.Int("replay", 0, "if > 0, replay the loaded recordings this many times in round-robin order")
)

func main() {
	flag.Parse()
	log := logging.StdLogger{}

	if *manifestPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: gamecov-monitor -manifest <path> [-radius N] [-greedy] [-http :8711]")
		os.Exit(1)
	}

	result := frame.LoadManifest(*manifestPath)
	if result.Err != nil {
		fmt.Fprintf(os.Stderr, "gamecov-monitor: %v\n", result.Err)
		os.Exit(1)
	}
	log.Infof("loaded %d recordings from %s", len(result.Recordings), *manifestPath)

	if *httpAddr != "" {
		go func() {
			log.Infof("serving debug vars on http://%s/debug/vars", *httpAddr)
			if err := http.ListenAndServe(*httpAddr, nil); err != nil {
				log.Errorf("http server stopped: %v", err)
			}
		}()
	}

	r, err := newRunner(*radius, *greedyMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gamecov-monitor: %v\n", err)
		os.Exit(1)
	}

	for _, rec := range result.Recordings {
		r.ingestUnique(log, rec)
	}
	report(log, r, "initial pass")

	if *replay > 0 {
		replayRecordings(r, log, result.Recordings, *replay)
		report(log, r, "after replay")
	}
}

// monitor is the surface both gamecov.Monitor and greedy.Monitor share;
// the CLI doesn't care which backend it's driving.
type monitor interface {
	AddCov(c coverage.Coverage)
	CoverageCount() int
	ItemSeen() []uint64
}

// runner wraps a monitor with the external mutual-exclusion the core
// deliberately does not provide (see gamecov's concurrency model): the
// monitor itself assumes single-threaded callers, so every access to it
// goes through this mutex. The HTTP debug goroutine only serves the
// expvar counters and never reads the monitor.
type runner struct {
	mu     sync.Mutex
	m      monitor
	recent *frame.RecentPaths
}

func newRunner(radius int, greedyMode bool) (*runner, error) {
	if greedyMode {
		return &runner{m: greedy.New(radius), recent: frame.NewRecentPaths(recentPathsSize)}, nil
	}
	m, err := gamecov.New(&gamecov.Config{Radius: radius})
	if err != nil {
		return nil, fmt.Errorf("gamecov-monitor: %w", err)
	}
	return &runner{m: m, recent: frame.NewRecentPaths(recentPathsSize)}, nil
}

// ingestUnique ingests rec unless its path was one of the most recently
// ingested paths, in which case it's skipped — a manifest can list the
// same recording more than once, and re-ingesting it contributes nothing
// beyond what IsSeen/AddCov's own path-id dedup already does, at the
// cost of re-walking every hash in it.
func (r *runner) ingestUnique(log logging.Logger, rec frame.Recording) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recent.Contains(rec.Path) {
		log.Debugf("skipping recording %s: path ingested recently", rec.Path)
		return
	}
	r.m.AddCov(rec.Coverage())
	r.recent.Remember(rec.Path)
}

// ingest always ingests rec, bypassing the recent-path skip check; used
// by replayRecordings, where re-ingesting the same paths is the point.
func (r *runner) ingest(rec frame.Recording) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m.AddCov(rec.Coverage())
}

func (r *runner) snapshot() (coverageCount, itemSeen int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.m.CoverageCount(), len(r.m.ItemSeen())
}

func report(log logging.Logger, r *runner, label string) {
	count, items := r.snapshot()
	log.Infof("%s: coverage_count=%d item_seen=%d", label, count, items)
}

// replayRecordings round-robins through recordings n times using a
// container/ring to drive a bounded demo replay loop.
func replayRecordings(r *runner, log logging.Logger, recordings []frame.Recording, n int) {
	if len(recordings) == 0 {
		return
	}
	rec := ring.New(len(recordings))
	for i := range recordings {
		rec.Value = recordings[i]
		rec = rec.Next()
	}

	total := len(recordings) * n
	for i := 0; i < total; i++ {
		r.ingest(rec.Value.(frame.Recording))
		rec = rec.Next()
		if i%len(recordings) == len(recordings)-1 {
			log.Debugf("replay pass %d/%d complete", i/len(recordings)+1, n)
		}
	}
}
