package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmhart/textpress/pkg/types"
)

const (
	// rawPreviewLen is where recent-entry text previews are truncated
	rawPreviewLen = 100
	// cleanPreviewLen is where search-result previews are truncated
	cleanPreviewLen = 200
)

// timeLayout is the stored timestamp format: UTC ISO-8601 with second
// precision
const timeLayout = "2006-01-02T15:04:05Z"

// Options configures where the database file lives. The directory is
// created on first use if absent.
type Options struct {
	Dir  string
	File string
}

// Path returns the full database file path
func (o Options) Path() string {
	return filepath.Join(o.Dir, o.File)
}

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db           *sql.DB
	indexEnabled bool
}

var _ Store = (*SQLiteStore)(nil)

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enforce the cascade from raw to cleaned entries
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Cascade deletes must fire the FTS sync triggers on cleaned_entries
	if _, err := db.Exec("PRAGMA recursive_triggers=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable recursive triggers: %w", err)
	}

	return db, nil
}

// New creates a SQLite store at the configured location, creating the
// directory and applying migrations as needed. The FTS index is set up
// best-effort; its absence only disables indexed search.
func New(opts Options) (*SQLiteStore, error) {
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := openDatabase(opts.Path())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx := context.Background()
	if err := ApplyMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStore{
		db:           db,
		indexEnabled: ensureSearchIndex(ctx, db),
	}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// AddRaw inserts a raw entry with status pending and returns its id
func (s *SQLiteStore) AddRaw(ctx context.Context, text string) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO raw_entries (text, created_at, status) VALUES (?, ?, ?)",
		text, nowISO(), types.StatusPending)
	if err != nil {
		return 0, fmt.Errorf("failed to add raw entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get raw entry id: %w", err)
	}
	return id, nil
}

// ListPending returns all pending raw entries in FIFO order
func (s *SQLiteStore) ListPending(ctx context.Context) ([]types.RawEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, text, created_at, status FROM raw_entries WHERE status = ? ORDER BY id ASC",
		types.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []types.RawEntry
	for rows.Next() {
		entry, err := scanRawEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pending entries: %w", err)
	}
	return entries, nil
}

// CompleteEntry inserts the cleaned entry and flips the raw entry to
// processed in a single transaction, so neither can exist without the
// other. Returns the new cleaned entry id.
func (s *SQLiteStore) CompleteEntry(ctx context.Context, rawID int64, cleanText string, meta types.Metadata) (int64, error) {
	metaJSON, err := meta.MarshalJSONString()
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// The guarded transition runs first: a raw entry that is not
	// pending (already processed, errored, or missing) is rejected
	// before any cleaned row is written.
	if err := updateStatus(ctx, tx, rawID, types.StatusPending, types.StatusProcessed); err != nil {
		return 0, err
	}

	result, err := tx.ExecContext(ctx,
		"INSERT INTO cleaned_entries (raw_id, clean_text, metadata_json, created_at) VALUES (?, ?, ?, ?)",
		rawID, cleanText, metaJSON, nowISO())
	if err != nil {
		return 0, fmt.Errorf("failed to insert cleaned entry: %w", err)
	}

	cleanID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get cleaned entry id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit cleaned entry: %w", err)
	}
	return cleanID, nil
}

// FailEntry marks a pending raw entry as errored
func (s *SQLiteStore) FailEntry(ctx context.Context, rawID int64) error {
	return updateStatus(ctx, s.db, rawID, types.StatusPending, types.StatusError)
}

// RetryEntry re-queues an errored raw entry back to pending
func (s *SQLiteStore) RetryEntry(ctx context.Context, rawID int64) error {
	return updateStatus(ctx, s.db, rawID, types.StatusError, types.StatusPending)
}

// execer is satisfied by both *sql.DB and *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// updateStatus applies a status transition, guarding it at the SQL
// level so a raw entry only moves from the expected state
func updateStatus(ctx context.Context, q execer, rawID int64, from, to types.Status) error {
	if !from.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s", types.ErrInvalidTransition, from, to)
	}

	result, err := q.ExecContext(ctx,
		"UPDATE raw_entries SET status = ? WHERE id = ? AND status = ?",
		to, rawID, from)
	if err != nil {
		return fmt.Errorf("failed to update entry status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check status update: %w", err)
	}
	if affected == 0 {
		var current string
		err := q.QueryRowContext(ctx, "SELECT status FROM raw_entries WHERE id = ?", rawID).Scan(&current)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to read entry status: %w", err)
		}
		return fmt.Errorf("%w: %s -> %s", types.ErrInvalidTransition, current, to)
	}
	return nil
}

// Recent returns raw entries joined with their clean status, newest
// first
func (s *SQLiteStore) Recent(ctx context.Context, limit, offset int) ([]types.EntrySummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.text, r.status, r.created_at, ce.id, ce.metadata_json
		FROM raw_entries r
		LEFT JOIN cleaned_entries ce ON ce.raw_id = r.id
		ORDER BY r.id DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var summaries []types.EntrySummary
	for rows.Next() {
		var (
			sum       types.EntrySummary
			status    string
			createdAt string
			cleanID   sql.NullInt64
			metaJSON  sql.NullString
		)
		if err := rows.Scan(&sum.ID, &sum.Text, &status, &createdAt, &cleanID, &metaJSON); err != nil {
			return nil, fmt.Errorf("failed to scan entry summary: %w", err)
		}

		sum.Status = types.Status(status)
		sum.TextPreview = preview(sum.Text, rawPreviewLen)
		if sum.CreatedAt, err = parseISO(createdAt); err != nil {
			return nil, err
		}
		if cleanID.Valid {
			sum.HasClean = true
			sum.CleanID = &cleanID.Int64
		}
		if metaJSON.Valid {
			meta, err := types.ParseMetadata(metaJSON.String)
			if err != nil {
				return nil, err
			}
			sum.Metadata = &meta
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recent entries: %w", err)
	}
	return summaries, nil
}

// GetEntryDetail returns the full raw record plus its cleaned
// derivative. Returns ErrNotFound for an unknown id.
func (s *SQLiteStore) GetEntryDetail(ctx context.Context, rawID int64) (*types.EntryDetail, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT r.id, r.text, r.status, r.created_at,
		       ce.id, ce.clean_text, ce.metadata_json, ce.created_at
		FROM raw_entries r
		LEFT JOIN cleaned_entries ce ON ce.raw_id = r.id
		WHERE r.id = ?`, rawID)

	var (
		detail       types.EntryDetail
		status       string
		rawCreated   string
		cleanID      sql.NullInt64
		cleanText    sql.NullString
		metaJSON     sql.NullString
		cleanCreated sql.NullString
	)
	err := row.Scan(&detail.Raw.ID, &detail.Raw.Text, &status, &rawCreated,
		&cleanID, &cleanText, &metaJSON, &cleanCreated)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry detail: %w", err)
	}

	detail.Raw.Status = types.Status(status)
	if detail.Raw.CreatedAt, err = parseISO(rawCreated); err != nil {
		return nil, err
	}

	if cleanID.Valid {
		meta, err := types.ParseMetadata(metaJSON.String)
		if err != nil {
			return nil, err
		}
		cleaned := types.CleanedEntry{
			ID:        cleanID.Int64,
			RawID:     detail.Raw.ID,
			CleanText: cleanText.String,
			Metadata:  meta,
		}
		if cleaned.CreatedAt, err = parseISO(cleanCreated.String); err != nil {
			return nil, err
		}
		detail.Cleaned = &cleaned
	}
	return &detail, nil
}

// CountStats returns entry counts by status
func (s *SQLiteStore) CountStats(ctx context.Context) (types.StatusCounts, error) {
	var counts types.StatusCounts
	err := s.db.QueryRowContext(ctx, `
		SELECT count(*),
		       count(CASE WHEN status = ? THEN 1 END),
		       count(CASE WHEN status = ? THEN 1 END)
		FROM raw_entries`,
		types.StatusProcessed, types.StatusError).
		Scan(&counts.Total, &counts.Processed, &counts.Errors)
	if err != nil {
		return types.StatusCounts{}, fmt.Errorf("failed to count entries: %w", err)
	}
	return counts, nil
}

const searchSelect = `
	SELECT ce.id, ce.raw_id, ce.clean_text, ce.metadata_json, ce.created_at, r.created_at
	FROM cleaned_entries ce
	JOIN raw_entries r ON r.id = ce.raw_id`

// SearchMatch queries the FTS index with token-match semantics
func (s *SQLiteStore) SearchMatch(ctx context.Context, query string, limit int) ([]types.CleanedSummary, error) {
	rows, err := s.db.QueryContext(ctx, searchSelect+`
		JOIN cleaned_entries_fts f ON f.rowid = ce.id
		WHERE cleaned_entries_fts MATCH ?
		ORDER BY ce.id DESC LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search index: %w", err)
	}
	return scanCleanedSummaries(rows)
}

// SearchScan performs a substring scan of clean text, with the query
// treated as a literal
func (s *SQLiteStore) SearchScan(ctx context.Context, query string, limit int) ([]types.CleanedSummary, error) {
	rows, err := s.db.QueryContext(ctx, searchSelect+`
		WHERE ce.clean_text LIKE ? ESCAPE '\'
		ORDER BY ce.id DESC LIMIT ?`, "%"+escapeLike(query)+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to scan entries: %w", err)
	}
	return scanCleanedSummaries(rows)
}

// IndexAvailable probes whether the FTS index can be queried. The
// result is established when the store is opened.
func (s *SQLiteStore) IndexAvailable(ctx context.Context) bool {
	if !s.indexEnabled {
		return false
	}
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT count(*) FROM cleaned_entries_fts").Scan(&n)
	return err == nil
}

// DeleteEntry removes a raw entry; the cleaned entry goes with it via
// the foreign-key cascade and the FTS rows via trigger
func (s *SQLiteStore) DeleteEntry(ctx context.Context, rawID int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM raw_entries WHERE id = ?", rawID)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check entry deletion: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRawEntry(row rowScanner) (types.RawEntry, error) {
	var (
		entry     types.RawEntry
		status    string
		createdAt string
	)
	if err := row.Scan(&entry.ID, &entry.Text, &createdAt, &status); err != nil {
		return types.RawEntry{}, fmt.Errorf("failed to scan raw entry: %w", err)
	}
	entry.Status = types.Status(status)
	if !entry.Status.Valid() {
		return types.RawEntry{}, fmt.Errorf("%w: %q", types.ErrInvalidStatus, status)
	}

	var err error
	if entry.CreatedAt, err = parseISO(createdAt); err != nil {
		return types.RawEntry{}, err
	}
	return entry, nil
}

func scanCleanedSummaries(rows *sql.Rows) ([]types.CleanedSummary, error) {
	defer func() { _ = rows.Close() }()

	var summaries []types.CleanedSummary
	for rows.Next() {
		var (
			sum        types.CleanedSummary
			metaJSON   string
			createdAt  string
			rawCreated string
		)
		if err := rows.Scan(&sum.ID, &sum.RawID, &sum.CleanText, &metaJSON, &createdAt, &rawCreated); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}

		meta, err := types.ParseMetadata(metaJSON)
		if err != nil {
			return nil, err
		}
		sum.Metadata = meta
		sum.CleanPreview = preview(sum.CleanText, cleanPreviewLen)
		if sum.CreatedAt, err = parseISO(createdAt); err != nil {
			return nil, err
		}
		if sum.RawCreatedAt, err = parseISO(rawCreated); err != nil {
			return nil, err
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate search results: %w", err)
	}
	return summaries, nil
}

// preview truncates s to max runes, appending an ellipsis when cut
func preview(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

// escapeLike escapes LIKE wildcards so the query matches literally
func escapeLike(s string) string {
	var b []byte
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			b = append(b, '\\')
		}
		b = append(b, s[i])
	}
	return string(b)
}

func nowISO() string {
	return time.Now().UTC().Format(timeLayout)
}

func parseISO(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored timestamp %q: %w", s, err)
	}
	return t, nil
}
