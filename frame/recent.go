package frame

import "github.com/golang/groupcache/lru"

// RecentPaths bounds how many recently-ingested path-ids a CLI keeps
// around for quick "have I just seen this recording?" checks, without
// growing without bound across a long-running session. It is a
// convenience for callers on top of gamecov.Monitor.IsSeen, which
// already has no size bound of its own (item_seen/path_seen are
// intentionally unbounded in the core).
type RecentPaths struct {
	cache *lru.Cache
}

// NewRecentPaths returns a RecentPaths cache holding at most maxEntries
// path-ids, evicting least-recently-used entries once full.
func NewRecentPaths(maxEntries int) *RecentPaths {
	return &RecentPaths{cache: lru.New(maxEntries)}
}

// Remember records that pathID was just ingested.
func (r *RecentPaths) Remember(pathID string) {
	r.cache.Add(pathID, struct{}{})
}

// Contains reports whether pathID was recently remembered (and hasn't
// since been evicted).
func (r *RecentPaths) Contains(pathID string) bool {
	_, ok := r.cache.Get(pathID)
	return ok
}

// Len returns the number of path-ids currently cached.
func (r *RecentPaths) Len() int {
	return r.cache.Len()
}
