// Package service exposes the boundary operations consumed by the MCP
// and CLI surfaces. It validates input before the store is touched and
// wires the pipeline and searcher to one store handle.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmhart/textpress/internal/pipeline"
	"github.com/jmhart/textpress/internal/search"
	"github.com/jmhart/textpress/internal/store"
	"github.com/jmhart/textpress/pkg/types"
)

const (
	// defaultRecentLimit applies when a listing asks for no particular
	// page size
	defaultRecentLimit = 10
	// maxRecentLimit clamps listing page sizes
	maxRecentLimit = 100
)

// Service bundles the store, pipeline, and searcher behind the
// boundary operations
type Service struct {
	store    store.Store
	pipeline *pipeline.Pipeline
	searcher *search.Searcher
	log      *slog.Logger
}

// New creates a Service over the given store
func New(st store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    st,
		pipeline: pipeline.New(st, logger),
		searcher: search.New(st),
		log:      logger,
	}
}

// AddRaw ingests free-form text as a pending raw entry and returns its
// id. Blank text is rejected before any store mutation.
func (s *Service) AddRaw(ctx context.Context, text string) (int64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, types.ErrBlankText
	}

	id, err := s.store.AddRaw(ctx, text)
	if err != nil {
		return 0, fmt.Errorf("failed to ingest entry: %w", err)
	}
	s.log.Info("entry ingested", "raw_id", id, "chars", len(text))
	return id, nil
}

// ProcessPending runs one processing pass and returns success and
// failure counts
func (s *Service) ProcessPending(ctx context.Context) (ok, failed int, err error) {
	stats, err := s.pipeline.ProcessPending(ctx)
	if err != nil {
		return 0, 0, err
	}
	if stats.Processed > 0 {
		s.searcher.Invalidate()
	}
	s.log.Info("processing pass finished",
		"processed", stats.Processed, "failed", stats.Failed, "duration", stats.Duration)
	return stats.Processed, stats.Failed, nil
}

// Recent lists raw entries joined with their clean status, newest
// first. The limit defaults to 10 and is clamped to 100.
func (s *Service) Recent(ctx context.Context, limit, offset int) ([]types.EntrySummary, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.Recent(ctx, limit, offset)
}

// SearchClean returns cleaned entries matching the query. Indexed
// search runs when requested and available; otherwise the substring
// scan does. Blank queries are rejected with no store access.
func (s *Service) SearchClean(ctx context.Context, query string, useIndex bool) (*search.Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, types.ErrBlankQuery
	}

	resp, err := s.searcher.Search(ctx, query, useIndex)
	if err != nil {
		return nil, err
	}
	s.log.Debug("search finished", "mode", resp.Mode, "hits", len(resp.Results),
		"cache_hit", resp.CacheHit, "duration", resp.Duration)
	return resp, nil
}

// GetEntryDetail returns the full raw and cleaned record for an id, or
// store.ErrNotFound
func (s *Service) GetEntryDetail(ctx context.Context, id int64) (*types.EntryDetail, error) {
	return s.store.GetEntryDetail(ctx, id)
}

// CountStats returns entry counts by status
func (s *Service) CountStats(ctx context.Context) (types.StatusCounts, error) {
	return s.store.CountStats(ctx)
}

// CheckIndexAvailable reports whether the full-text index can serve
// queries
func (s *Service) CheckIndexAvailable(ctx context.Context) bool {
	return s.searcher.IndexAvailable(ctx)
}

// RetryEntry re-queues an errored entry back to pending so the next
// processing pass picks it up
func (s *Service) RetryEntry(ctx context.Context, id int64) error {
	if err := s.store.RetryEntry(ctx, id); err != nil {
		return err
	}
	s.log.Info("entry re-queued", "raw_id", id)
	return nil
}

// DeleteEntry removes a raw entry and, via cascade, its cleaned
// derivative
func (s *Service) DeleteEntry(ctx context.Context, id int64) error {
	if err := s.store.DeleteEntry(ctx, id); err != nil {
		return err
	}
	s.searcher.Invalidate()
	s.log.Info("entry deleted", "raw_id", id)
	return nil
}
