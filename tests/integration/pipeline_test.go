package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/jmhart/textpress/internal/service"
	"github.com/jmhart/textpress/internal/store"
	"github.com/jmhart/textpress/pkg/types"
)

// PipelineTestSuite exercises the full ingest, process, and search flow
// against a real on-disk database.
type PipelineTestSuite struct {
	suite.Suite
	store store.Store
	svc   *service.Service
	ctx   context.Context
}

// SetupTest creates a fresh database for each test
func (s *PipelineTestSuite) SetupTest() {
	s.ctx = context.Background()

	st, err := store.New(store.Options{Dir: s.T().TempDir(), File: "textpress.db"})
	s.Require().NoError(err)
	s.store = st
	s.svc = service.New(st, nil)
}

// TearDownTest closes the store
func (s *PipelineTestSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

// TestIngestProcessSearch runs the whole flow: ingest raw text, run a
// processing pass, then find the cleaned entry through both search modes.
func (s *PipelineTestSuite) TestIngestProcessSearch() {
	id, err := s.svc.AddRaw(s.ctx, "The “launch”   checklist\tlives here #launch")
	s.Require().NoError(err)
	s.Positive(id)

	ok, failed, err := s.svc.ProcessPending(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, ok)
	s.Equal(0, failed)

	detail, err := s.svc.GetEntryDetail(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(types.StatusProcessed, detail.Raw.Status)
	s.Require().NotNil(detail.Cleaned)
	s.Equal(`The "launch" checklist lives here #launch`, detail.Cleaned.CleanText)
	s.Equal("English", detail.Cleaned.Metadata.LanguageGuess)
	s.Contains(detail.Cleaned.Metadata.Tags, "launch")

	// Substring scan always works.
	resp, err := s.svc.SearchClean(s.ctx, "checklist", false)
	s.Require().NoError(err)
	s.Require().Len(resp.Results, 1)
	s.Equal(id, resp.Results[0].RawID)

	// Indexed search when the build carries the full-text index.
	if s.svc.CheckIndexAvailable(s.ctx) {
		resp, err = s.svc.SearchClean(s.ctx, "checklist", true)
		s.Require().NoError(err)
		s.Require().Len(resp.Results, 1)
		s.Equal(id, resp.Results[0].RawID)
	}
}

// TestSecondPassIsIdempotent verifies a repeated pass does no work
func (s *PipelineTestSuite) TestSecondPassIsIdempotent() {
	_, err := s.svc.AddRaw(s.ctx, "only once")
	s.Require().NoError(err)

	ok, failed, err := s.svc.ProcessPending(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, ok)
	s.Equal(0, failed)

	ok, failed, err = s.svc.ProcessPending(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, ok)
	s.Equal(0, failed)
}

// TestDeleteRemovesFromSearch verifies a deleted entry no longer matches
func (s *PipelineTestSuite) TestDeleteRemovesFromSearch() {
	id, err := s.svc.AddRaw(s.ctx, "ephemeral note about orchards")
	s.Require().NoError(err)

	_, _, err = s.svc.ProcessPending(s.ctx)
	s.Require().NoError(err)

	resp, err := s.svc.SearchClean(s.ctx, "orchards", false)
	s.Require().NoError(err)
	s.Len(resp.Results, 1)

	s.Require().NoError(s.svc.DeleteEntry(s.ctx, id))

	resp, err = s.svc.SearchClean(s.ctx, "orchards", false)
	s.Require().NoError(err)
	s.Empty(resp.Results)

	counts, err := s.svc.CountStats(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, counts.Total)
}

// TestStatsTrackStatuses verifies the counts after a mixed workload
func (s *PipelineTestSuite) TestStatsTrackStatuses() {
	for _, text := range []string{"first entry", "second entry", "third entry"} {
		_, err := s.svc.AddRaw(s.ctx, text)
		s.Require().NoError(err)
	}

	counts, err := s.svc.CountStats(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, counts.Total)
	s.Equal(3, counts.Pending())

	_, _, err = s.svc.ProcessPending(s.ctx)
	s.Require().NoError(err)

	counts, err = s.svc.CountStats(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, counts.Processed)
	s.Equal(0, counts.Pending())
}

// TestRecentOrdersNewestFirst verifies listing order and previews
func (s *PipelineTestSuite) TestRecentOrdersNewestFirst() {
	older, err := s.svc.AddRaw(s.ctx, "older entry")
	s.Require().NoError(err)
	newer, err := s.svc.AddRaw(s.ctx, "newer entry")
	s.Require().NoError(err)

	summaries, err := s.svc.Recent(s.ctx, 0, 0)
	s.Require().NoError(err)
	s.Require().Len(summaries, 2)
	s.Equal(newer, summaries[0].ID)
	s.Equal(older, summaries[1].ID)
	s.False(summaries[0].HasClean)
}

func TestPipelineTestSuite(t *testing.T) {
	suite.Run(t, new(PipelineTestSuite))
}
