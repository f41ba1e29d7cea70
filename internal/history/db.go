package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/spider/internal/model"
)

// FileName is the database file name inside the history directory.
const FileName = "history.db"

// timeLayout is fixed-width so that stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

var (
	// ErrRunNotFound is returned when no run matches the requested ID.
	ErrRunNotFound = errors.New("crawl run not found")

	// ErrAmbiguousRunID is returned when an ID prefix matches several runs.
	ErrAmbiguousRunID = errors.New("run ID prefix matches more than one run")

	// ErrDatabaseNotFound is returned by Open when the database does not
	// exist and CreateIfNotExists is false.
	ErrDatabaseNotFound = errors.New("history database not found")
)

// DB is the crawl history database.
type DB struct {
	db     *sql.DB
	dbPath string
}

// Options configures DB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and the database file if
	// they do not exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dir.
func Open(dir string, opts Options) (*DB, error) {
	dbPath := filepath.Join(dir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// foreign_keys is set per connection through the DSN so that a
	// recycled connection keeps ON DELETE CASCADE working.
	dsn := dbPath + "?mode=rw&_pragma=foreign_keys(1)"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc&_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	h := &DB{db: db, dbPath: dbPath}

	ctx := context.Background()
	if opts.EnableWAL {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := h.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return h, nil
}

// Close closes the database connection.
func (h *DB) Close() error {
	return h.db.Close()
}

// Path returns the database file path.
func (h *DB) Path() string {
	return h.dbPath
}

func (h *DB) createTables(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed TEXT NOT NULL,
		recursive INTEGER NOT NULL,
		max_depth INTEGER NOT NULL,
		output_dir TEXT NOT NULL,
		pages_visited INTEGER NOT NULL,
		pages_failed INTEGER NOT NULL,
		images_attempted INTEGER NOT NULL,
		images_downloaded INTEGER NOT NULL,
		images_failed INTEGER NOT NULL,
		bytes_written INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		url TEXT NOT NULL,
		depth INTEGER NOT NULL,
		failed INTEGER NOT NULL DEFAULT 0,
		status_code INTEGER,
		reason TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_pages_run ON pages(run_id);

	CREATE TABLE IF NOT EXISTS images (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		idx INTEGER NOT NULL,
		url TEXT NOT NULL,
		path TEXT,
		bytes INTEGER,
		digest TEXT,
		failed INTEGER NOT NULL DEFAULT 0,
		reason TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_images_run ON images(run_id);
	`

	_, err := h.db.ExecContext(ctx, schema)
	return err
}

// SaveRun stores record with its pages and images in one transaction.
// A run ID is generated when record.ID is empty; the ID used is written
// back to record and returned.
func (h *DB) SaveRun(ctx context.Context, record *model.CrawlRecord) (id string, err error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	s := record.Summary
	_, err = tx.ExecContext(ctx, `
	INSERT INTO runs (id, seed, recursive, max_depth, output_dir,
		pages_visited, pages_failed, images_attempted, images_downloaded, images_failed,
		bytes_written, started_at, finished_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.Seed, record.Recursive, record.MaxDepth, record.OutputDir,
		s.PagesVisited, s.PagesFailed, s.ImagesAttempted, s.ImagesDownloaded, s.ImagesFailed,
		s.BytesWritten, formatTime(s.StartedAt), formatTime(s.FinishedAt),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	pageStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO pages (run_id, seq, url, depth, failed, status_code, reason)
	VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare page insert: %w", err)
	}
	defer pageStmt.Close()

	for i, p := range record.Pages {
		if _, err = pageStmt.ExecContext(ctx, record.ID, i, p.URL, p.Depth, p.Failed, p.StatusCode, p.Reason); err != nil {
			return "", fmt.Errorf("failed to insert page: %w", err)
		}
	}

	imageStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO images (run_id, seq, idx, url, path, bytes, digest, failed, reason)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare image insert: %w", err)
	}
	defer imageStmt.Close()

	for i, img := range record.Images {
		if _, err = imageStmt.ExecContext(ctx, record.ID, i, img.Index, img.URL, img.Path, img.Bytes, img.Digest, img.Failed, img.Reason); err != nil {
			return "", fmt.Errorf("failed to insert image: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}
	return record.ID, nil
}

const runColumns = `id, seed, recursive, max_depth, output_dir,
	pages_visited, pages_failed, images_attempted, images_downloaded, images_failed,
	bytes_written, started_at, finished_at`

// ListRuns returns the most recent runs first, without pages and images.
// A non-positive limit returns every run.
func (h *DB) ListRuns(ctx context.Context, limit int) ([]*model.CrawlRecord, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]*model.CrawlRecord, 0)
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun loads a run with its pages and images. id may be a unique prefix
// of the run ID.
func (h *DB) GetRun(ctx context.Context, id string) (*model.CrawlRecord, error) {
	if id == "" {
		return nil, ErrRunNotFound
	}

	rows, err := h.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ? OR substr(id, 1, length(?)) = ? LIMIT 2`,
		id, id, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var matches []*model.CrawlRecord
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		matches = append(matches, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	switch {
	case len(matches) == 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case len(matches) > 1:
		for _, m := range matches {
			if m.ID == id {
				matches = []*model.CrawlRecord{m}
				break
			}
		}
		if len(matches) > 1 {
			return nil, fmt.Errorf("%w: %s", ErrAmbiguousRunID, id)
		}
	}

	run := matches[0]
	if run.Pages, err = h.loadPages(ctx, run.ID); err != nil {
		return nil, err
	}
	if run.Images, err = h.loadImages(ctx, run.ID); err != nil {
		return nil, err
	}
	return run, nil
}

// DeleteRun removes a run together with its pages and images.
func (h *DB) DeleteRun(ctx context.Context, id string) error {
	res, err := h.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

func (h *DB) loadPages(ctx context.Context, runID string) ([]model.PageRecord, error) {
	rows, err := h.db.QueryContext(ctx, `
	SELECT url, depth, failed, status_code, reason
	FROM pages WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pages: %w", err)
	}
	defer rows.Close()

	pages := make([]model.PageRecord, 0)
	for rows.Next() {
		var p model.PageRecord
		var status sql.NullInt64
		var reason sql.NullString
		if err := rows.Scan(&p.URL, &p.Depth, &p.Failed, &status, &reason); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		p.StatusCode = int(status.Int64)
		p.Reason = reason.String
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

func (h *DB) loadImages(ctx context.Context, runID string) ([]model.ImageRecord, error) {
	rows, err := h.db.QueryContext(ctx, `
	SELECT idx, url, path, bytes, digest, failed, reason
	FROM images WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load images: %w", err)
	}
	defer rows.Close()

	images := make([]model.ImageRecord, 0)
	for rows.Next() {
		var img model.ImageRecord
		var path, digest, reason sql.NullString
		var size sql.NullInt64
		if err := rows.Scan(&img.Index, &img.URL, &path, &size, &digest, &img.Failed, &reason); err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		img.Path = path.String
		img.Bytes = size.Int64
		img.Digest = digest.String
		img.Reason = reason.String
		images = append(images, img)
	}
	return images, rows.Err()
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*model.CrawlRecord, error) {
	var r model.CrawlRecord
	var started, finished string
	err := row.Scan(
		&r.ID, &r.Seed, &r.Recursive, &r.MaxDepth, &r.OutputDir,
		&r.Summary.PagesVisited, &r.Summary.PagesFailed,
		&r.Summary.ImagesAttempted, &r.Summary.ImagesDownloaded, &r.Summary.ImagesFailed,
		&r.Summary.BytesWritten, &started, &finished,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	r.Summary.StartedAt = parseTimestamp(started)
	r.Summary.FinishedAt = parseTimestamp(finished)
	return &r, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// timestampFormats contains the timestamp formats accepted when reading.
// The order matters: the layout written by this package comes first.
var timestampFormats = []string{
	timeLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
}

// parseTimestamp returns the zero time if s matches no known format.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
