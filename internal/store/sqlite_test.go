package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmhart/textpress/pkg/types"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := New(Options{Dir: t.TempDir(), File: "test.db"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func testMetadata() types.Metadata {
	return types.Metadata{
		Source:             types.MetadataSource,
		WordCount:          2,
		CharCount:          11,
		LanguageGuess:      "English",
		Tags:               []string{"hello"},
		ReadingTimeMinutes: 1,
		ProcessedAt:        "2026-01-02T03:04:05Z",
	}
}

func TestNewCreatesDirectoryAndFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	st, err := New(Options{Dir: dir, File: "textpress.db"})
	require.NoError(t, err)
	defer st.Close()

	assert.FileExists(t, filepath.Join(dir, "textpress.db"))
}

func TestAddRaw(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	id, err := st.AddRaw(ctx, "hello world")
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	id2, err := st.AddRaw(ctx, "second entry")
	require.NoError(t, err)
	assert.Greater(t, id2, id, "ids should be monotonic")

	detail, err := st.GetEntryDetail(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "hello world", detail.Raw.Text)
	assert.Equal(t, types.StatusPending, detail.Raw.Status)
	assert.False(t, detail.Raw.CreatedAt.IsZero())
	assert.Nil(t, detail.Cleaned)
}

func TestListPendingFIFO(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	var ids []int64
	for _, text := range []string{"first", "second", "third"} {
		id, err := st.AddRaw(ctx, text)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	pending, err := st.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	for i, entry := range pending {
		assert.Equal(t, ids[i], entry.ID)
		assert.Equal(t, types.StatusPending, entry.Status)
	}

	// Completed entries drop out of the scan
	_, err = st.CompleteEntry(ctx, ids[0], "first", testMetadata())
	require.NoError(t, err)

	pending, err = st.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, ids[1], pending[0].ID)
}

func TestCompleteEntry(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	id, err := st.AddRaw(ctx, "raw text here")
	require.NoError(t, err)

	cleanID, err := st.CompleteEntry(ctx, id, "clean text here", testMetadata())
	require.NoError(t, err)
	assert.Greater(t, cleanID, int64(0))

	detail, err := st.GetEntryDetail(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, types.StatusProcessed, detail.Raw.Status)
	require.NotNil(t, detail.Cleaned)
	assert.Equal(t, cleanID, detail.Cleaned.ID)
	assert.Equal(t, id, detail.Cleaned.RawID)
	assert.Equal(t, "clean text here", detail.Cleaned.CleanText)
	assert.Equal(t, testMetadata(), detail.Cleaned.Metadata)
}

func TestCompleteEntryTwiceRejected(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	id, err := st.AddRaw(ctx, "text")
	require.NoError(t, err)

	_, err = st.CompleteEntry(ctx, id, "text", testMetadata())
	require.NoError(t, err)

	// Processed is terminal; no second cleaned entry may appear
	_, err = st.CompleteEntry(ctx, id, "text again", testMetadata())
	assert.ErrorIs(t, err, types.ErrInvalidTransition)

	detail, err := st.GetEntryDetail(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "text", detail.Cleaned.CleanText)
}

func TestCompleteEntryNotFound(t *testing.T) {
	st := setupTestStore(t)

	_, err := st.CompleteEntry(context.Background(), 9999, "text", testMetadata())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFailEntry(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	id, err := st.AddRaw(ctx, "will fail")
	require.NoError(t, err)

	require.NoError(t, st.FailEntry(ctx, id))

	detail, err := st.GetEntryDetail(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, types.StatusError, detail.Raw.Status)
	assert.Nil(t, detail.Cleaned, "errored entries have no cleaned entry")

	// Errored entries cannot be completed without a retry
	_, err = st.CompleteEntry(ctx, id, "text", testMetadata())
	assert.ErrorIs(t, err, types.ErrInvalidTransition)
}

func TestRetryEntry(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	id, err := st.AddRaw(ctx, "will fail then retry")
	require.NoError(t, err)
	require.NoError(t, st.FailEntry(ctx, id))

	require.NoError(t, st.RetryEntry(ctx, id))

	pending, err := st.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, id, pending[0].ID)

	// Retry only applies to errored entries
	err = st.RetryEntry(ctx, id)
	assert.ErrorIs(t, err, types.ErrInvalidTransition)

	err = st.RetryEntry(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecent(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	first, err := st.AddRaw(ctx, "oldest entry")
	require.NoError(t, err)
	second, err := st.AddRaw(ctx, "newest entry")
	require.NoError(t, err)

	_, err = st.CompleteEntry(ctx, first, "oldest entry", testMetadata())
	require.NoError(t, err)

	summaries, err := st.Recent(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	// Newest first
	assert.Equal(t, second, summaries[0].ID)
	assert.False(t, summaries[0].HasClean)
	assert.Nil(t, summaries[0].CleanID)
	assert.Nil(t, summaries[0].Metadata)

	assert.Equal(t, first, summaries[1].ID)
	assert.True(t, summaries[1].HasClean)
	require.NotNil(t, summaries[1].CleanID)
	require.NotNil(t, summaries[1].Metadata)
	assert.Equal(t, "English", summaries[1].Metadata.LanguageGuess)
}

func TestRecentLimitOffset(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := st.AddRaw(ctx, "entry")
		require.NoError(t, err)
	}

	page, err := st.Recent(ctx, 2, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	rest, err := st.Recent(ctx, 10, 4)
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}

func TestRecentPreviewTruncation(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	long := ""
	for i := 0; i < 30; i++ {
		long += "0123456789"
	}
	_, err := st.AddRaw(ctx, long)
	require.NoError(t, err)

	summaries, err := st.Recent(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Len(t, summaries[0].TextPreview, rawPreviewLen+3)
	assert.Equal(t, "...", summaries[0].TextPreview[rawPreviewLen:])
	assert.Equal(t, long, summaries[0].Text)
}

func TestGetEntryDetailNotFound(t *testing.T) {
	st := setupTestStore(t)

	_, err := st.GetEntryDetail(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCountStats(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	counts, err := st.CountStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.StatusCounts{}, counts)

	var ids []int64
	for i := 0; i < 4; i++ {
		id, err := st.AddRaw(ctx, "entry")
		require.NoError(t, err)
		ids = append(ids, id)
	}
	_, err = st.CompleteEntry(ctx, ids[0], "entry", testMetadata())
	require.NoError(t, err)
	require.NoError(t, st.FailEntry(ctx, ids[1]))

	counts, err = st.CountStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, counts.Total)
	assert.Equal(t, 1, counts.Processed)
	assert.Equal(t, 1, counts.Errors)
	assert.Equal(t, 2, counts.Pending())
	assert.Equal(t, counts.Total, counts.Processed+counts.Errors+counts.Pending())
}

func TestSearchScan(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	id, err := st.AddRaw(ctx, "Hello world")
	require.NoError(t, err)
	_, err = st.CompleteEntry(ctx, id, "Hello world", testMetadata())
	require.NoError(t, err)

	// Substring semantics: a partial token matches
	hits, err := st.SearchScan(ctx, "wor", 50)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Hello world", hits[0].CleanText)
	assert.Equal(t, id, hits[0].RawID)

	hits, err = st.SearchScan(ctx, "missing", 50)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearchScanEscapesWildcards(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	id, err := st.AddRaw(ctx, "100% literal_underscore")
	require.NoError(t, err)
	_, err = st.CompleteEntry(ctx, id, "100% literal_underscore", testMetadata())
	require.NoError(t, err)

	hits, err := st.SearchScan(ctx, "100%", 50)
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	// % must not act as a wildcard
	hits, err = st.SearchScan(ctx, "10x%", 50)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearchMatch(t *testing.T) {
	st := setupTestStore(t)
	if !st.IndexAvailable(context.Background()) {
		t.Skip("FTS5 index not available in this build")
	}
	ctx := context.Background()

	id, err := st.AddRaw(ctx, "the quick brown fox")
	require.NoError(t, err)
	_, err = st.CompleteEntry(ctx, id, "the quick brown fox", testMetadata())
	require.NoError(t, err)

	hits, err := st.SearchMatch(ctx, "quick", 50)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, id, hits[0].RawID)

	// Token-match semantics: a mid-token fragment does not match
	hits, err = st.SearchMatch(ctx, "uick", 50)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearchOrderAndLimit(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		id, err := st.AddRaw(ctx, "common text")
		require.NoError(t, err)
		_, err = st.CompleteEntry(ctx, id, "common text", testMetadata())
		require.NoError(t, err)
	}

	hits, err := st.SearchScan(ctx, "common", 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Greater(t, hits[0].ID, hits[1].ID, "results ordered id descending")
}

func TestDeleteEntryCascades(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	id, err := st.AddRaw(ctx, "to be deleted")
	require.NoError(t, err)
	_, err = st.CompleteEntry(ctx, id, "to be deleted", testMetadata())
	require.NoError(t, err)

	require.NoError(t, st.DeleteEntry(ctx, id))

	_, err = st.GetEntryDetail(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)

	// Cleaned row and FTS rows are gone with it
	hits, err := st.SearchScan(ctx, "deleted", 50)
	require.NoError(t, err)
	assert.Empty(t, hits)

	if st.IndexAvailable(ctx) {
		hits, err = st.SearchMatch(ctx, "deleted", 50)
		require.NoError(t, err)
		assert.Empty(t, hits)
	}

	err = st.DeleteEntry(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIndexAvailable(t *testing.T) {
	st := setupTestStore(t)
	// The pure Go driver ships FTS5; the probe should succeed there
	if BuildMode == "purego" {
		assert.True(t, st.IndexAvailable(context.Background()))
	}
}

func TestReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	opts := Options{Dir: dir, File: "persist.db"}

	st, err := New(opts)
	require.NoError(t, err)
	id, err := st.AddRaw(context.Background(), "survives restart")
	require.NoError(t, err)
	require.NoError(t, st.Close())

	st, err = New(opts)
	require.NoError(t, err)
	defer st.Close()

	detail, err := st.GetEntryDetail(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "survives restart", detail.Raw.Text)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", preview("short", 10))
	assert.Equal(t, "0123456789...", preview("0123456789abc", 10))
	// Rune-aware truncation
	assert.Equal(t, "héllo...", preview("héllo wörld", 5))
}

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"100%", `100\%`},
		{"a_b", `a\_b`},
		{`back\slash`, `back\\slash`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, escapeLike(tt.in))
	}
}

func TestParseISORoundTrip(t *testing.T) {
	now := nowISO()
	parsed, err := parseISO(now)
	require.NoError(t, err)
	assert.Equal(t, now, parsed.UTC().Format(timeLayout))

	_, err = parseISO("not a timestamp")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}
