// Package store provides SQLite-based persistence for raw and cleaned
// text entries.
//
// The store manages:
//   - Raw entries and their processing status
//   - Cleaned entries (one per processed raw entry)
//   - An optional FTS5 full-text index over clean text
//
// # Database Schema
//
// Tables:
//   - raw_entries: ingested text with status pending|processed|error
//   - cleaned_entries: normalized text plus metadata JSON, raw_id UNIQUE
//   - cleaned_entries_fts: optional FTS5 index, trigger-synchronized
//
// The whole database lives in a single file whose location is passed
// in explicitly:
//
//	st, err := store.New(store.Options{Dir: "./data", File: "textpress.db"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer st.Close()
//
// # Status Transitions
//
// Status updates are guarded at the SQL level: an entry only moves
// from the expected prior state, so completing an already-processed
// entry or failing a non-pending one reports an invalid transition.
// CompleteEntry performs the cleaned-entry insert and the status flip
// in one transaction.
//
// # Search
//
// Two query paths exist and are not result-equivalent:
//
//	hits, err := st.SearchMatch(ctx, "world", 50) // FTS token match
//	hits, err := st.SearchScan(ctx, "wor", 50)    // substring scan
//
// IndexAvailable reports whether the first path can be used. Index
// maintenance is internal; callers never touch the FTS table.
//
// # Build Tags
//
// The default build uses the pure Go driver (modernc.org/sqlite),
// which includes FTS5. Building with -tags "sqlite_cgo,fts5" switches
// to github.com/mattn/go-sqlite3.
package store
