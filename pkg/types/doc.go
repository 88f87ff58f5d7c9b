// Package types provides shared type definitions for TextPress.
//
// This package defines domain types used across multiple components,
// including raw and cleaned entries, enrichment metadata, and the
// status lifecycle of an entry.
//
// # Core Types
//
// RawEntry represents an ingested text submission and its processing
// status:
//
//	entry := types.RawEntry{
//	    Text:   "some free-form text",
//	    Status: types.StatusPending,
//	}
//
// CleanedEntry is produced exactly once per raw entry by the
// processing pipeline:
//
//	cleaned := types.CleanedEntry{
//	    RawID:     entry.ID,
//	    CleanText: normalized,
//	    Metadata:  meta,
//	}
//
// # Status Lifecycle
//
// A raw entry starts pending and transitions to processed or error.
// Processed is terminal. Error entries can be re-queued to pending
// through an explicit retry:
//
//	pending ──► processed
//	   │  ▲
//	   ▼  │ (retry)
//	  error
//
// Use Status.CanTransition to validate transitions before applying
// them.
package types
