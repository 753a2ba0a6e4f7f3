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

	"github.com/nao1215/tagbalance/internal/model"
)

// FileName is the name of the database file inside the data directory.
const FileName = "tagbalance.db"

// timestampLayout is fixed-width so that stored timestamps sort as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// HistoryDB provides SQLite-based storage for check results.
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

// ErrDatabaseNotFound is returned by Open when CreateIfNotExists is false
// and there is no database file yet.
var ErrDatabaseNotFound = errors.New("history database not found")

// Open opens or creates a HistoryDB in dbDir.
// If CreateIfNotExists is true, the directory and database file are created.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s (run a check with --save first)", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file; mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
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

// Path returns the path of the database file.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS check_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		file TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		content_hash TEXT,
		result_json TEXT NOT NULL,
		tag_summary TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_results_file ON check_results(file);
	CREATE INDEX IF NOT EXISTS idx_results_timestamp ON check_results(timestamp);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveCheckResult stores a check result and returns its ID.
// Results of failed checks are not stored.
func (hdb *HistoryDB) SaveCheckResult(ctx context.Context, result *model.CheckResult) (int64, error) {
	if result.Error != nil {
		return 0, fmt.Errorf("refusing to save failed check of %s: %w", result.File, result.Error)
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize result: %w", err)
	}

	summaryJSON, err := json.Marshal(result.Summary())
	if err != nil {
		return 0, fmt.Errorf("failed to serialize summary: %w", err)
	}

	query := `
	INSERT INTO check_results (file, timestamp, content_hash, result_json, tag_summary)
	VALUES (?, ?, ?, ?, ?)
	`

	res, err := hdb.db.ExecContext(ctx, query,
		result.File,
		result.CheckedAt.UTC().Format(timestampLayout),
		result.ContentHash,
		string(resultJSON),
		string(summaryJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save check result: %w", err)
	}

	return res.LastInsertId()
}

// GetLatestCheckResult retrieves the most recent result for file.
// It returns nil and no error when file was never saved.
func (hdb *HistoryDB) GetLatestCheckResult(ctx context.Context, file string) (*model.CheckResult, error) {
	query := `
	SELECT result_json FROM check_results
	WHERE file = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT 1
	`

	return hdb.queryOne(ctx, query, file)
}

// GetCheckResultByID retrieves a result by its database ID.
// It returns nil and no error when there is no such ID.
func (hdb *HistoryDB) GetCheckResultByID(ctx context.Context, id int64) (*model.CheckResult, error) {
	query := `
	SELECT result_json FROM check_results
	WHERE id = ?
	`

	return hdb.queryOne(ctx, query, id)
}

func (hdb *HistoryDB) queryOne(ctx context.Context, query string, arg any) (*model.CheckResult, error) {
	var resultJSON string
	err := hdb.db.QueryRowContext(ctx, query, arg).Scan(&resultJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get check result: %w", err)
	}

	var result model.CheckResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to parse check result: %w", err)
	}

	return &result, nil
}

// ListCheckedFiles returns every file with at least one saved result.
func (hdb *HistoryDB) ListCheckedFiles(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT file FROM check_results
	ORDER BY file
	`

	rows, err := hdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	var files []string
	for rows.Next() {
		var file string
		if err := rows.Scan(&file); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, file)
	}

	return files, rows.Err()
}

// GetHistory retrieves all saved results for file, newest first.
// Rows whose JSON cannot be parsed are skipped.
func (hdb *HistoryDB) GetHistory(ctx context.Context, file string) ([]*model.CheckResult, error) {
	query := `
	SELECT result_json FROM check_results
	WHERE file = ?
	ORDER BY timestamp DESC, id DESC
	`

	rows, err := hdb.db.QueryContext(ctx, query, file)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var results []*model.CheckResult
	for rows.Next() {
		var resultJSON string
		if err := rows.Scan(&resultJSON); err != nil {
			return nil, fmt.Errorf("failed to scan check result: %w", err)
		}

		var result model.CheckResult
		if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
			continue
		}
		results = append(results, &result)
	}

	return results, rows.Err()
}

// CheckResultMetadata describes one saved result without loading it.
type CheckResultMetadata struct {
	// ID is the unique identifier of the result in the database.
	ID int64

	// File is the checked document path.
	File string

	// Timestamp is when the check was performed.
	Timestamp time.Time

	// ContentHash is the SHA3-256 hash of the content at that time.
	ContentHash string

	// Summary holds the tag counts of the result.
	Summary model.Summary
}

// GetHistoryWithMetadata retrieves metadata of all saved results for file,
// newest first.
func (hdb *HistoryDB) GetHistoryWithMetadata(ctx context.Context, file string) ([]CheckResultMetadata, error) {
	query := `
	SELECT id, file, timestamp, content_hash, tag_summary
	FROM check_results
	WHERE file = ?
	ORDER BY timestamp DESC, id DESC
	`

	rows, err := hdb.db.QueryContext(ctx, query, file)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var results []CheckResultMetadata
	for rows.Next() {
		var meta CheckResultMetadata
		var timestamp string
		var hash, summaryJSON sql.NullString

		if err := rows.Scan(&meta.ID, &meta.File, &timestamp, &hash, &summaryJSON); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		meta.Timestamp = parseTimestamp(timestamp)
		meta.ContentHash = hash.String

		if summaryJSON.Valid && summaryJSON.String != "" {
			if err := json.Unmarshal([]byte(summaryJSON.String), &meta.Summary); err != nil {
				meta.Summary = model.Summary{}
			}
		}

		results = append(results, meta)
	}

	return results, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// More specific formats come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp parses s with the first matching format, or returns the
// zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
