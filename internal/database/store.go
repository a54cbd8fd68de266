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

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/privacyscan/internal/domain"
	"github.com/nao1215/privacyscan/internal/model"
	"github.com/nao1215/privacyscan/internal/scoring"
)

// FileName is the name of the database file inside the database directory.
const FileName = "privacyscan.db"

// Store provides SQLite-based storage for scans, evidence and score results.
//
// Design decision: The latest result is denormalized into the scans row
// while every run is also appended to score_history. Reads of the current
// score (the common case for the HTTP adapter) stay a single-row lookup,
// and history stays append-only.
type Store struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string

	// now returns the current time. Replaced in tests.
	now func() time.Time
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging so readers do not block on
	// the single writer.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a Store in dbDir.
// If CreateIfNotExists is false and the database doesn't exist,
// ErrDatabaseNotFound is returned.
func Open(dbDir string, opts Options) (*Store, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s (use CreateIfNotExists option to create)", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{
		db:     db,
		dbPath: dbPath,
		now:    time.Now,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the path of the database file.
func (s *Store) Path() string {
	return s.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (s *Store) createTables() error {
	schema := `
	-- Scans hold the scan input and the latest score result
	CREATE TABLE IF NOT EXISTS scans (
		id TEXT PRIMARY KEY,
		url TEXT NOT NULL,
		root_domain TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		created_at TEXT NOT NULL,
		scored_at TEXT,
		error_message TEXT NOT NULL DEFAULT '',
		result_json TEXT,
		digest TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_scans_url ON scans(url);
	CREATE INDEX IF NOT EXISTS idx_scans_created ON scans(created_at);

	-- Evidence records keep their insertion order through seq
	CREATE TABLE IF NOT EXISTS evidence (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		scan_id TEXT NOT NULL REFERENCES scans(id),
		kind TEXT NOT NULL,
		details TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_evidence_scan ON evidence(scan_id);

	-- Score history stores one row per scoring run
	CREATE TABLE IF NOT EXISTS score_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scan_id TEXT NOT NULL,
		url TEXT NOT NULL,
		score INTEGER NOT NULL,
		label TEXT NOT NULL,
		digest TEXT NOT NULL,
		issue_keys TEXT NOT NULL,
		risk_summary TEXT,
		timestamp TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_history_url ON score_history(url);
	CREATE INDEX IF NOT EXISTS idx_history_timestamp ON score_history(timestamp);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// CreateScan registers a new pending scan of rawURL. The URL is normalized
// and its registrable root domain derived. A URL without a registrable
// domain (such as localhost) is accepted with an empty root domain, which
// makes every observed domain count as third-party.
func (s *Store) CreateScan(ctx context.Context, rawURL string) (*model.Scan, error) {
	return s.CreateScanWithRoot(ctx, rawURL, "")
}

// CreateScanWithRoot is like CreateScan but uses rootDomain instead of
// deriving it, for sites whose assets live on a sibling registrable domain.
func (s *Store) CreateScanWithRoot(ctx context.Context, rawURL, rootDomain string) (*model.Scan, error) {
	normalized, err := domain.NormalizeURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	if rootDomain == "" {
		// An unparseable root is not an error: scoring falls back to
		// treating everything as third-party.
		rootDomain, _ = domain.RootDomain(normalized) //nolint:errcheck
	}

	scan := &model.Scan{
		ID:         uuid.NewString(),
		URL:        normalized,
		RootDomain: rootDomain,
		Status:     model.ScanStatusPending,
		CreatedAt:  s.now().UTC(),
	}

	query := `
	INSERT INTO scans (id, url, root_domain, status, created_at)
	VALUES (?, ?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query,
		scan.ID,
		scan.URL,
		scan.RootDomain,
		string(scan.Status),
		formatTimestamp(scan.CreatedAt),
	); err != nil {
		return nil, fmt.Errorf("failed to create scan: %w", err)
	}

	return scan, nil
}

// GetScan retrieves a scan by ID. It returns ErrScanNotFound if the scan
// does not exist.
func (s *Store) GetScan(ctx context.Context, id string) (*model.Scan, error) {
	query := `
	SELECT id, url, root_domain, status, created_at, scored_at, error_message
	FROM scans
	WHERE id = ?
	`

	scan, err := scanScan(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrScanNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan: %w", err)
	}
	return scan, nil
}

// ListScans returns all scans, newest first.
func (s *Store) ListScans(ctx context.Context) ([]model.Scan, error) {
	query := `
	SELECT id, url, root_domain, status, created_at, scored_at, error_message
	FROM scans
	ORDER BY created_at DESC, rowid DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	defer rows.Close()

	scans := make([]model.Scan, 0)
	for rows.Next() {
		scan, err := scanScan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		scans = append(scans, *scan)
	}

	return scans, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanScan reads one scans row.
func scanScan(row rowScanner) (*model.Scan, error) {
	var (
		scan      model.Scan
		status    string
		createdAt string
		scoredAt  sql.NullString
	)
	if err := row.Scan(
		&scan.ID,
		&scan.URL,
		&scan.RootDomain,
		&status,
		&createdAt,
		&scoredAt,
		&scan.ErrorMessage,
	); err != nil {
		return nil, err
	}

	scan.Status = model.ScanStatus(status)
	scan.CreatedAt = parseTimestamp(createdAt)
	if scoredAt.Valid {
		scan.ScoredAt = parseTimestamp(scoredAt.String)
	}
	return &scan, nil
}

// InsertEvidence appends evidence records to a scan inside one transaction.
// Records without an ID get a fresh UUID, ScanID is overwritten with scanID
// and a zero CreatedAt is set to the current time.
func (s *Store) InsertEvidence(ctx context.Context, scanID string, records ...model.EvidenceRecord) error {
	if err := s.requireScan(ctx, scanID); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO evidence (id, scan_id, kind, details, created_at)
	VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare evidence insert: %w", err)
	}
	defer stmt.Close()

	now := s.now().UTC()
	for _, r := range records {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		if r.CreatedAt.IsZero() {
			r.CreatedAt = now
		}
		if _, err := stmt.ExecContext(ctx,
			r.ID,
			scanID,
			string(r.Kind),
			string(r.Details),
			formatTimestamp(r.CreatedAt),
		); err != nil {
			return fmt.Errorf("failed to insert evidence %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit evidence: %w", err)
	}
	return nil
}

// ListEvidence returns the evidence of a scan in insertion order.
// It returns ErrScanNotFound if the scan does not exist, so that a missing
// scan is never mistaken for a scan without evidence.
func (s *Store) ListEvidence(ctx context.Context, scanID string) ([]model.EvidenceRecord, error) {
	if err := s.requireScan(ctx, scanID); err != nil {
		return nil, err
	}

	query := `
	SELECT id, scan_id, kind, details, created_at
	FROM evidence
	WHERE scan_id = ?
	ORDER BY seq
	`

	rows, err := s.db.QueryContext(ctx, query, scanID)
	if err != nil {
		return nil, fmt.Errorf("failed to list evidence: %w", err)
	}
	defer rows.Close()

	records := make([]model.EvidenceRecord, 0)
	for rows.Next() {
		var (
			r         model.EvidenceRecord
			kind      string
			details   string
			createdAt string
		)
		if err := rows.Scan(&r.ID, &r.ScanID, &kind, &details, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan evidence: %w", err)
		}
		r.Kind = model.EvidenceKind(kind)
		if details != "" {
			r.Details = json.RawMessage(details)
		}
		r.CreatedAt = parseTimestamp(createdAt)
		records = append(records, r)
	}

	return records, rows.Err()
}

// requireScan returns ErrScanNotFound unless scanID exists.
func (s *Store) requireScan(ctx context.Context, scanID string) error {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM scans WHERE id = ?", scanID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrScanNotFound, scanID)
	}
	if err != nil {
		return fmt.Errorf("failed to look up scan: %w", err)
	}
	return nil
}

// SaveResult stores result as the latest result of a scan, marks the scan
// scored and appends a score_history row. It returns the result digest.
func (s *Store) SaveResult(ctx context.Context, scanID string, result *model.ScoreResult) (string, error) {
	scan, err := s.GetScan(ctx, scanID)
	if err != nil {
		return "", err
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to serialize result: %w", err)
	}
	digest, err := scoring.Digest(result)
	if err != nil {
		return "", err
	}

	issueKeys := make([]string, len(result.Issues))
	for i, issue := range result.Issues {
		issueKeys[i] = issue.Key
	}
	keysJSON, _ := json.Marshal(issueKeys) //nolint:errcheck,errchkjson // a string slice always encodes

	riskSummary := make(map[string]int)
	for severity, count := range result.CountBySeverity() {
		riskSummary[severity.Name()] = count
	}
	riskJSON, _ := json.Marshal(riskSummary) //nolint:errcheck,errchkjson // riskSummary is a simple map; Marshal won't fail

	now := formatTimestamp(s.now().UTC())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	if _, err := tx.ExecContext(ctx, `
	UPDATE scans
	SET status = ?, scored_at = ?, error_message = '', result_json = ?, digest = ?
	WHERE id = ?
	`, string(model.ScanStatusScored), now, string(resultJSON), digest, scanID); err != nil {
		return "", fmt.Errorf("failed to save result: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
	INSERT INTO score_history (scan_id, url, score, label, digest, issue_keys, risk_summary, timestamp)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, scanID, scan.URL, result.Score, result.Label, digest, string(keysJSON), string(riskJSON), now); err != nil {
		return "", fmt.Errorf("failed to append score history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit result: %w", err)
	}
	return digest, nil
}

// GetResult returns the latest result of a scan and its digest.
// It returns ErrScanNotFound for an unknown scan and ErrResultNotFound for
// a scan that has not been scored.
func (s *Store) GetResult(ctx context.Context, scanID string) (*model.ScoreResult, string, error) {
	var (
		resultJSON sql.NullString
		digest     string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT result_json, digest FROM scans WHERE id = ?", scanID,
	).Scan(&resultJSON, &digest)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", fmt.Errorf("%w: %s", ErrScanNotFound, scanID)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to get result: %w", err)
	}
	if !resultJSON.Valid || resultJSON.String == "" {
		return nil, "", fmt.Errorf("%w: %s", ErrResultNotFound, scanID)
	}

	var result model.ScoreResult
	if err := json.Unmarshal([]byte(resultJSON.String), &result); err != nil {
		return nil, "", fmt.Errorf("failed to parse result: %w", err)
	}
	return &result, digest, nil
}

// MarkScanFailed records that scoring could not run for a scan.
func (s *Store) MarkScanFailed(ctx context.Context, scanID, reason string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE scans SET status = ?, error_message = ? WHERE id = ?",
		string(model.ScanStatusFailed), reason, scanID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark scan failed: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrScanNotFound, scanID)
	}
	return nil
}
