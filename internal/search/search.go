package search

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/jmhart/textpress/internal/store"
	"github.com/jmhart/textpress/pkg/types"
)

// ResultLimit caps how many results any search returns
const ResultLimit = 50

// Mode identifies which search strategy produced a result set
type Mode string

const (
	// ModeIndexed uses the FTS index with token-match semantics
	ModeIndexed Mode = "indexed"
	// ModeScan falls back to a literal substring scan
	ModeScan Mode = "scan"
)

// Strategy is a search variant over cleaned entries. The two
// implementations are not result-equivalent: indexed search matches
// tokens, the scan matches substrings.
type Strategy interface {
	Mode() Mode
	Search(ctx context.Context, query string, limit int) ([]types.CleanedSummary, error)
}

// IndexedSearch queries the FTS index
type IndexedSearch struct {
	store store.Store
}

// Mode returns ModeIndexed
func (IndexedSearch) Mode() Mode { return ModeIndexed }

// Search runs an index-native match query
func (is IndexedSearch) Search(ctx context.Context, query string, limit int) ([]types.CleanedSummary, error) {
	return is.store.SearchMatch(ctx, query, limit)
}

// ScanSearch scans clean text for the query as a literal substring
type ScanSearch struct {
	store store.Store
}

// Mode returns ModeScan
func (ScanSearch) Mode() Mode { return ModeScan }

// Search runs the substring scan
func (ss ScanSearch) Search(ctx context.Context, query string, limit int) ([]types.CleanedSummary, error) {
	return ss.store.SearchScan(ctx, query, limit)
}

// Response contains search results and metadata about how they were
// produced
type Response struct {
	Results  []types.CleanedSummary
	Mode     Mode
	Duration time.Duration
	CacheHit bool
}

// cacheEntry is a cached response with its expiry
type cacheEntry struct {
	response  Response
	expiresAt time.Time
}

const (
	cacheSize  = 1000
	defaultTTL = time.Minute
)

// Searcher selects a search strategy per store handle and caches
// recent query responses. The index-availability probe runs once, on
// first use, and its outcome is kept for the searcher's lifetime.
type Searcher struct {
	store store.Store

	probeGroup singleflight.Group
	probed     atomic.Bool
	indexOK    atomic.Bool

	cache *lru.Cache[[32]byte, cacheEntry]
	ttl   time.Duration
}

// New creates a Searcher over the given store
func New(st store.Store) *Searcher {
	cache, err := lru.New[[32]byte, cacheEntry](cacheSize)
	if err != nil {
		// Only possible with an invalid size constant
		panic(fmt.Sprintf("failed to create search cache: %v", err))
	}
	return &Searcher{
		store: st,
		cache: cache,
		ttl:   defaultTTL,
	}
}

// IndexAvailable reports whether indexed search can be used. The
// underlying probe is deduplicated across concurrent callers and its
// result cached.
func (s *Searcher) IndexAvailable(ctx context.Context) bool {
	if s.probed.Load() {
		return s.indexOK.Load()
	}
	ok, _, _ := s.probeGroup.Do("probe", func() (interface{}, error) {
		avail := s.store.IndexAvailable(ctx)
		s.indexOK.Store(avail)
		s.probed.Store(true)
		return avail, nil
	})
	return ok.(bool)
}

// Search returns cleaned entries matching the query, newest first,
// capped at ResultLimit. Indexed search is used when requested and
// available; otherwise the substring scan runs. Callers must tolerate
// the semantic difference between the two modes.
func (s *Searcher) Search(ctx context.Context, query string, useIndex bool) (*Response, error) {
	start := time.Now()

	var strategy Strategy = ScanSearch{store: s.store}
	if useIndex && s.IndexAvailable(ctx) {
		strategy = IndexedSearch{store: s.store}
	}

	key := cacheKey(strategy.Mode(), query)
	if entry, ok := s.cache.Get(key); ok && time.Now().Before(entry.expiresAt) {
		resp := entry.response
		resp.CacheHit = true
		resp.Duration = time.Since(start)
		return &resp, nil
	}

	results, err := strategy.Search(ctx, query, ResultLimit)
	if err != nil {
		return nil, fmt.Errorf("%s search failed: %w", strategy.Mode(), err)
	}

	resp := Response{
		Results:  results,
		Mode:     strategy.Mode(),
		Duration: time.Since(start),
	}
	s.cache.Add(key, cacheEntry{response: resp, expiresAt: time.Now().Add(s.ttl)})
	return &resp, nil
}

// Invalidate drops all cached responses. Callers invoke it after any
// mutation that changes the cleaned-entry set.
func (s *Searcher) Invalidate() {
	s.cache.Purge()
}

func cacheKey(mode Mode, query string) [32]byte {
	return sha256.Sum256([]byte(string(mode) + "\x00" + query))
}
