// Package search selects and runs a search strategy over cleaned
// entries.
//
// Two strategies exist behind one interface: IndexedSearch, which
// queries the FTS index with token-match semantics, and ScanSearch,
// which falls back to a literal substring scan. The strategies are not
// result-equivalent; which one ran is reported on every Response.
//
// The index-availability probe runs once per Searcher and is cached,
// and recent query responses are kept in an LRU cache with a short
// TTL.
package search
