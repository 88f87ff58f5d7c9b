package types

import "time"

// Status represents the processing state of a raw entry
type Status string

const (
	StatusPending   Status = "pending"
	StatusProcessed Status = "processed"
	StatusError     Status = "error"
)

// Valid reports whether s is a known status value
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessed, StatusError:
		return true
	}
	return false
}

// CanTransition reports whether a transition from s to next is allowed.
// Processed is terminal; error entries can only be re-queued to pending
// through an explicit retry.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessed || next == StatusError
	case StatusError:
		return next == StatusPending
	case StatusProcessed:
		return false
	}
	return false
}

// RawEntry represents an ingested, unmodified text submission
type RawEntry struct {
	ID        int64
	Text      string
	CreatedAt time.Time
	Status    Status
}

// CleanedEntry is the normalized and enriched derivative of exactly one
// raw entry. It is created once by the pipeline and never updated.
type CleanedEntry struct {
	ID        int64
	RawID     int64
	CleanText string
	Metadata  Metadata
	CreatedAt time.Time
}

// EntrySummary is a raw entry joined with its clean status, as returned
// by the recent listing
type EntrySummary struct {
	ID          int64
	TextPreview string
	Text        string
	Status      Status
	CreatedAt   time.Time
	HasClean    bool
	CleanID     *int64 // nil when no cleaned entry exists
	Metadata    *Metadata
}

// CleanedSummary is a cleaned entry joined with its raw entry, as
// returned by search
type CleanedSummary struct {
	ID           int64
	RawID        int64
	CleanPreview string
	CleanText    string
	Metadata     Metadata
	CreatedAt    time.Time
	RawCreatedAt time.Time
}

// EntryDetail is the full raw record plus its cleaned derivative, if any
type EntryDetail struct {
	Raw     RawEntry
	Cleaned *CleanedEntry // nil unless status is processed
}

// StatusCounts holds entry counts by status
type StatusCounts struct {
	Total     int
	Processed int
	Errors    int
}

// Pending derives the number of entries not yet processed.
// Total = Processed + Errors + Pending always holds.
func (c StatusCounts) Pending() int {
	return c.Total - c.Processed - c.Errors
}
