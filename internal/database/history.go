package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/docscrape/internal/model"
)

// DBFileName is the name of the history database file.
const DBFileName = "docscrape.db"

// HistoryDB provides SQLite-based storage for discovery runs and conversions.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
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

// Open opens or creates a HistoryDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, DBFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file; mode=rwc creates it.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// Path returns the database file path.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- One row per discover invocation
	CREATE TABLE IF NOT EXISTS discovery_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		start_url TEXT NOT NULL,
		prefix TEXT NOT NULL,
		origin_host TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		link_count INTEGER NOT NULL DEFAULT 0,
		visited INTEGER NOT NULL DEFAULT 0,
		failed INTEGER NOT NULL DEFAULT 0,
		result_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_start ON discovery_runs(start_url);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON discovery_runs(timestamp);

	-- The discovered set of each run
	CREATE TABLE IF NOT EXISTS discovered_links (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES discovery_runs(id),
		url TEXT NOT NULL,
		UNIQUE(run_id, url)
	);

	CREATE INDEX IF NOT EXISTS idx_links_run ON discovered_links(run_id);
	CREATE INDEX IF NOT EXISTS idx_links_url ON discovered_links(url);

	-- One row per converted (or failed) address
	CREATE TABLE IF NOT EXISTS conversions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		title TEXT,
		path TEXT,
		content_hash TEXT,
		bytes INTEGER DEFAULT 0,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_conversions_url ON conversions(url);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// DiscoveryRun is a stored discovery run.
type DiscoveryRun struct {
	model.RunMetadata

	// Result is the run as it was saved. Result.Links is read from the
	// discovered_links table, sorted.
	Result *model.DiscoveryResult
}

// DiscoveryRunMetadata summarizes a stored run without its links.
type DiscoveryRunMetadata struct {
	model.RunMetadata

	StartURL string
	Prefix   string
	Visited  int
	Failed   int
}

// SaveDiscoveryRun stores a discovery result and its links in one
// transaction and returns the new run ID.
func (hdb *HistoryDB) SaveDiscoveryRun(ctx context.Context, result *model.DiscoveryResult) (id int64, err error) {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize discovery result: %w", err)
	}

	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
	INSERT INTO discovery_runs (start_url, prefix, origin_host, link_count, visited, failed, result_json)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		result.StartURL,
		result.Prefix,
		result.OriginHost,
		len(result.Links),
		result.VisitedCount(),
		result.FailedCount(),
		string(resultJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert discovery run: %w", err)
	}

	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO discovered_links (run_id, url) VALUES (?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare link insert: %w", err)
	}
	defer stmt.Close()

	for _, link := range result.Links {
		if _, err = stmt.ExecContext(ctx, id, link); err != nil {
			return 0, fmt.Errorf("failed to insert link: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit discovery run: %w", err)
	}

	return id, nil
}

// ListDiscoveryRuns returns the runs for startURL, newest first.
func (hdb *HistoryDB) ListDiscoveryRuns(ctx context.Context, startURL string) ([]DiscoveryRunMetadata, error) {
	query := `
	SELECT id, start_url, prefix, timestamp, link_count, visited, failed
	FROM discovery_runs
	WHERE start_url = ?
	ORDER BY id DESC
	`

	rows, err := hdb.db.QueryContext(ctx, query, startURL)
	if err != nil {
		return nil, fmt.Errorf("failed to list discovery runs: %w", err)
	}
	defer rows.Close()

	var results []DiscoveryRunMetadata
	for rows.Next() {
		var meta DiscoveryRunMetadata
		var timestamp string

		if err := rows.Scan(
			&meta.ID,
			&meta.StartURL,
			&meta.Prefix,
			&timestamp,
			&meta.LinkCount,
			&meta.Visited,
			&meta.Failed,
		); err != nil {
			return nil, fmt.Errorf("failed to scan discovery run: %w", err)
		}

		meta.Timestamp = parseTimestamp(timestamp)
		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetDiscoveryRun retrieves a run and its links by ID.
// It returns nil without an error when the run does not exist.
func (hdb *HistoryDB) GetDiscoveryRun(ctx context.Context, id int64) (*DiscoveryRun, error) {
	query := `
	SELECT id, timestamp, link_count, result_json
	FROM discovery_runs
	WHERE id = ?
	`

	var run DiscoveryRun
	var timestamp, resultJSON string

	err := hdb.db.QueryRowContext(ctx, query, id).Scan(&run.ID, &timestamp, &run.LinkCount, &resultJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get discovery run: %w", err)
	}
	run.Timestamp = parseTimestamp(timestamp)

	var result model.DiscoveryResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to parse discovery result: %w", err)
	}

	links, err := hdb.runLinks(ctx, id)
	if err != nil {
		return nil, err
	}
	result.Links = links
	run.Result = &result

	return &run, nil
}

// runLinks returns the links of a run, sorted.
func (hdb *HistoryDB) runLinks(ctx context.Context, runID int64) ([]string, error) {
	rows, err := hdb.db.QueryContext(ctx, `SELECT url FROM discovered_links WHERE run_id = ? ORDER BY url`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run links: %w", err)
	}
	defer rows.Close()

	links := make([]string, 0)
	for rows.Next() {
		var link string
		if err := rows.Scan(&link); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, link)
	}

	return links, rows.Err()
}

// ListStartURLs returns every start address with at least one stored run.
func (hdb *HistoryDB) ListStartURLs(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT start_url FROM discovery_runs
	ORDER BY start_url
	`

	rows, err := hdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list start URLs: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("failed to scan start URL: %w", err)
		}
		urls = append(urls, u)
	}

	return urls, rows.Err()
}

// ConversionRecord is a stored conversion result.
type ConversionRecord struct {
	ID        int64
	URL       string
	Timestamp time.Time
	Title     string
	Path      string
	Hash      string
	Bytes     int
	Error     string
}

// SaveConversion stores the outcome of converting one address.
func (hdb *HistoryDB) SaveConversion(ctx context.Context, item model.ItemResult) error {
	if item.Page == nil {
		return errors.New("conversion result has no page record")
	}

	errText := item.Error
	if errText == "" && item.Err != nil {
		errText = item.Err.Error()
	}

	query := `
	INSERT INTO conversions (url, title, path, content_hash, bytes, error)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := hdb.db.ExecContext(ctx, query,
		item.Page.URL,
		item.Page.Title,
		item.Page.Path,
		item.Page.Hash,
		item.Page.Bytes,
		errText,
	)
	if err != nil {
		return fmt.Errorf("failed to save conversion: %w", err)
	}

	return nil
}

// ListConversions returns the most recent conversions, newest first.
// A limit of 0 or less returns all of them.
func (hdb *HistoryDB) ListConversions(ctx context.Context, limit int) ([]ConversionRecord, error) {
	query := `
	SELECT id, url, timestamp, title, path, content_hash, bytes, error
	FROM conversions
	ORDER BY id DESC
	`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversions: %w", err)
	}
	defer rows.Close()

	var records []ConversionRecord
	for rows.Next() {
		var rec ConversionRecord
		var timestamp string
		var title, path, hash, errText sql.NullString

		if err := rows.Scan(
			&rec.ID,
			&rec.URL,
			&timestamp,
			&title,
			&path,
			&hash,
			&rec.Bytes,
			&errText,
		); err != nil {
			return nil, fmt.Errorf("failed to scan conversion: %w", err)
		}

		rec.Timestamp = parseTimestamp(timestamp)
		rec.Title = title.String
		rec.Path = path.String
		rec.Hash = hash.String
		rec.Error = errText.String
		records = append(records, rec)
	}

	return records, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
