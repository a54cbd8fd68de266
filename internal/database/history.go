package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nao1215/privacyscan/internal/domain"
)

// ScoreHistoryEntry is one scoring run of a scan.
// It is used for displaying trends without loading full results.
type ScoreHistoryEntry struct {
	// ID is the unique identifier of the entry in the database.
	ID int64 `json:"id"`

	// ScanID is the scan that was scored.
	ScanID string `json:"scan_id"`

	// URL is the normalized scan URL.
	URL string `json:"url"`

	// Score and Label are the result of the run.
	Score int    `json:"score"`
	Label string `json:"label"`

	// Digest identifies the full result; equal digests mean equal results.
	Digest string `json:"digest"`

	// IssueKeys lists the issues raised, in result order.
	IssueKeys []string `json:"issue_keys"`

	// RiskSummary contains counts of issues by severity name.
	RiskSummary map[string]int `json:"risk_summary"`

	// Timestamp is when the run was stored.
	Timestamp time.Time `json:"timestamp"`
}

const historyColumns = `id, scan_id, url, score, label, digest, issue_keys, risk_summary, timestamp`

// GetScoreHistory returns the scoring runs of every scan of rawURL, newest
// first. The URL is normalized the same way CreateScan does.
func (s *Store) GetScoreHistory(ctx context.Context, rawURL string) ([]ScoreHistoryEntry, error) {
	normalized, err := domain.NormalizeURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	query := `SELECT ` + historyColumns + `
	FROM score_history
	WHERE url = ?
	ORDER BY timestamp DESC, id DESC
	`

	rows, err := s.db.QueryContext(ctx, query, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to get score history: %w", err)
	}
	defer rows.Close()

	var entries []ScoreHistoryEntry
	for rows.Next() {
		entry, err := scanHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		entries = append(entries, *entry)
	}

	return entries, rows.Err()
}

// GetScoreHistoryByID retrieves one history entry by its database ID.
func (s *Store) GetScoreHistoryByID(ctx context.Context, id int64) (*ScoreHistoryEntry, error) {
	query := `SELECT ` + historyColumns + ` FROM score_history WHERE id = ?`

	entry, err := scanHistory(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrHistoryNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get score history entry: %w", err)
	}
	return entry, nil
}

// ListScoredURLs returns every URL with at least one scoring run.
func (s *Store) ListScoredURLs(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT url FROM score_history
	ORDER BY url
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list scored URLs: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan url: %w", err)
		}
		urls = append(urls, url)
	}

	return urls, rows.Err()
}

// scanHistory reads one score_history row.
func scanHistory(row rowScanner) (*ScoreHistoryEntry, error) {
	var (
		entry     ScoreHistoryEntry
		keysJSON  string
		riskJSON  sql.NullString
		timestamp string
	)
	if err := row.Scan(
		&entry.ID,
		&entry.ScanID,
		&entry.URL,
		&entry.Score,
		&entry.Label,
		&entry.Digest,
		&keysJSON,
		&riskJSON,
		&timestamp,
	); err != nil {
		return nil, err
	}

	entry.Timestamp = parseTimestamp(timestamp)

	if err := json.Unmarshal([]byte(keysJSON), &entry.IssueKeys); err != nil {
		entry.IssueKeys = nil
	}

	entry.RiskSummary = make(map[string]int)
	if riskJSON.Valid && riskJSON.String != "" {
		if err := json.Unmarshal([]byte(riskJSON.String), &entry.RiskSummary); err != nil {
			entry.RiskSummary = make(map[string]int)
		}
	}

	return &entry, nil
}
