package store

import (
	"context"
	"errors"

	"github.com/jmhart/textpress/pkg/types"
)

// ErrNotFound is returned when a requested entry doesn't exist
var ErrNotFound = errors.New("not found")

// Store defines the interface for persisting and querying entries
type Store interface {
	// Ingestion
	AddRaw(ctx context.Context, text string) (int64, error)

	// Pipeline operations
	ListPending(ctx context.Context) ([]types.RawEntry, error)
	CompleteEntry(ctx context.Context, rawID int64, cleanText string, meta types.Metadata) (int64, error)
	FailEntry(ctx context.Context, rawID int64) error
	RetryEntry(ctx context.Context, rawID int64) error

	// Queries
	Recent(ctx context.Context, limit, offset int) ([]types.EntrySummary, error)
	GetEntryDetail(ctx context.Context, rawID int64) (*types.EntryDetail, error)
	CountStats(ctx context.Context) (types.StatusCounts, error)

	// Search. SearchMatch uses the FTS index with token-match
	// semantics; SearchScan is a plain substring scan. The two are not
	// result-equivalent.
	SearchMatch(ctx context.Context, query string, limit int) ([]types.CleanedSummary, error)
	SearchScan(ctx context.Context, query string, limit int) ([]types.CleanedSummary, error)

	// IndexAvailable probes whether the FTS index can be queried
	IndexAvailable(ctx context.Context) bool

	// Administration
	DeleteEntry(ctx context.Context, rawID int64) error

	Close() error
}
