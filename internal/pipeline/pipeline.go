// Package pipeline runs the processing pass over pending raw entries:
// normalize, enrich, persist. Entries are processed independently in
// FIFO order; a failure marks that entry as errored and the batch
// continues.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmhart/textpress/internal/enrich"
	"github.com/jmhart/textpress/internal/normalize"
	"github.com/jmhart/textpress/internal/store"
)

// Pipeline coordinates the processing pass: normalize -> enrich -> store
type Pipeline struct {
	store store.Store
	log   *slog.Logger
}

// New creates a Pipeline over the given store
func New(st store.Store, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{store: st, log: logger}
}

// Result is the per-entry outcome of a processing pass
type Result struct {
	RawID   int64
	CleanID int64
	Err     error // nil on success
}

// Stats summarizes one processing pass
type Stats struct {
	Processed int
	Failed    int
	Results   []Result
	Duration  time.Duration
}

// ProcessPending fetches all pending raw entries in FIFO order and
// processes each one exactly once. Per-entry failures are recorded on
// the entry (status error) and in the returned results; they never
// abort the batch. Only a failure to scan the pending set is returned
// as an error.
func (p *Pipeline) ProcessPending(ctx context.Context) (*Stats, error) {
	start := time.Now()

	pending, err := p.store.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending entries: %w", err)
	}

	stats := &Stats{Results: make([]Result, 0, len(pending))}
	for _, entry := range pending {
		cleanText := normalize.Normalize(entry.Text)
		meta := enrich.Enrich(cleanText)

		cleanID, err := p.store.CompleteEntry(ctx, entry.ID, cleanText, meta)
		if err != nil {
			p.log.Error("failed to process entry", "raw_id", entry.ID, "error", err)
			if failErr := p.store.FailEntry(ctx, entry.ID); failErr != nil {
				p.log.Error("failed to mark entry as errored", "raw_id", entry.ID, "error", failErr)
			}
			stats.Failed++
			stats.Results = append(stats.Results, Result{RawID: entry.ID, Err: err})
			continue
		}

		p.log.Debug("processed entry", "raw_id", entry.ID, "clean_id", cleanID,
			"words", meta.WordCount, "language", meta.LanguageGuess)
		stats.Processed++
		stats.Results = append(stats.Results, Result{RawID: entry.ID, CleanID: cleanID})
	}

	stats.Duration = time.Since(start)
	return stats, nil
}
