package database

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/nao1215/privacyscan/internal/model"
	"github.com/nao1215/privacyscan/internal/scoring"
)

// setupTestStore creates a temporary store whose clock advances one second
// per call, so that ordering by timestamp is deterministic.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	clock := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

// createScan creates a scan or fails the test.
func createScan(t *testing.T, s *Store, url string) *model.Scan {
	t.Helper()

	scan, err := s.CreateScan(context.Background(), url)
	if err != nil {
		t.Fatalf("CreateScan(%q) failed: %v", url, err)
	}
	return scan
}

func evidence(id string, kind model.EvidenceKind, details string) model.EvidenceRecord {
	return model.EvidenceRecord{ID: id, Kind: kind, Details: json.RawMessage(details)}
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		s, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer s.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if s.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("unexpected path %q", s.Path())
		}
	})

	t.Run("CreateIfNotExists=false returns ErrDatabaseNotFound", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "nonexistent-db")
		_, err := Open(dbDir, Options{CreateIfNotExists: false, EnableWAL: true})
		if !errors.Is(err, ErrDatabaseNotFound) {
			t.Fatalf("expected ErrDatabaseNotFound, got %v", err)
		}
		if _, statErr := os.Stat(dbDir); !os.IsNotExist(statErr) {
			t.Error("database directory should not have been created")
		}
	})

	t.Run("CreateIfNotExists=false opens existing database", func(t *testing.T) {
		t.Parallel()

		dbDir := t.TempDir()
		s1, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		scan := createScan(t, s1, "example.com")
		_ = s1.Close()

		s2, err := Open(dbDir, Options{CreateIfNotExists: false})
		if err != nil {
			t.Fatalf("failed to open existing database: %v", err)
		}
		defer s2.Close()

		if _, err := s2.GetScan(context.Background(), scan.ID); err != nil {
			t.Errorf("scan did not survive reopening: %v", err)
		}
	})
}

// TestDefaultOptions tests the default options.
func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	if !opts.CreateIfNotExists {
		t.Error("expected CreateIfNotExists to be true")
	}
	if !opts.EnableWAL {
		t.Error("expected EnableWAL to be true")
	}
}

// TestScans tests scan creation and lookup.
func TestScans(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("create normalizes url and derives root domain", func(t *testing.T) {
		t.Parallel()

		s := setupTestStore(t)
		scan := createScan(t, s, "WWW.GitHub.com/features#top")

		if scan.URL != "https://www.github.com/features" {
			t.Errorf("unexpected url %q", scan.URL)
		}
		if scan.RootDomain != "github.com" {
			t.Errorf("unexpected root domain %q", scan.RootDomain)
		}
		if scan.Status != model.ScanStatusPending {
			t.Errorf("expected pending status, got %q", scan.Status)
		}

		got, err := s.GetScan(ctx, scan.ID)
		if err != nil {
			t.Fatalf("GetScan failed: %v", err)
		}
		if !reflect.DeepEqual(got, scan) {
			t.Errorf("stored scan differs\n got: %+v\nwant: %+v", got, scan)
		}
	})

	t.Run("localhost gets an empty root domain", func(t *testing.T) {
		t.Parallel()

		s := setupTestStore(t)
		scan := createScan(t, s, "http://localhost:8080")
		if scan.RootDomain != "" {
			t.Errorf("expected empty root domain, got %q", scan.RootDomain)
		}
	})

	t.Run("explicit root domain", func(t *testing.T) {
		t.Parallel()

		s := setupTestStore(t)
		scan, err := s.CreateScanWithRoot(ctx, "https://shop.example.com", "example.net")
		if err != nil {
			t.Fatalf("CreateScanWithRoot failed: %v", err)
		}
		if scan.RootDomain != "example.net" {
			t.Errorf("expected root domain example.net, got %q", scan.RootDomain)
		}
	})

	t.Run("invalid url", func(t *testing.T) {
		t.Parallel()

		s := setupTestStore(t)
		if _, err := s.CreateScan(ctx, "   "); !errors.Is(err, ErrInvalidURL) {
			t.Errorf("expected ErrInvalidURL, got %v", err)
		}
	})

	t.Run("unknown scan", func(t *testing.T) {
		t.Parallel()

		s := setupTestStore(t)
		if _, err := s.GetScan(ctx, "missing"); !errors.Is(err, ErrScanNotFound) {
			t.Errorf("expected ErrScanNotFound, got %v", err)
		}
	})

	t.Run("list returns newest first", func(t *testing.T) {
		t.Parallel()

		s := setupTestStore(t)
		first := createScan(t, s, "a.example.com")
		second := createScan(t, s, "b.example.com")

		scans, err := s.ListScans(ctx)
		if err != nil {
			t.Fatalf("ListScans failed: %v", err)
		}
		if len(scans) != 2 || scans[0].ID != second.ID || scans[1].ID != first.ID {
			t.Errorf("unexpected scan order: %+v", scans)
		}
	})
}

// TestEvidence tests evidence insertion and listing.
func TestEvidence(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("keeps insertion order and assigns ids", func(t *testing.T) {
		t.Parallel()

		s := setupTestStore(t)
		scan := createScan(t, s, "example.com")

		records := []model.EvidenceRecord{
			evidence("z", model.KindTracker, `{"domain":"t.com"}`),
			evidence("", model.KindHeader, `{"name":"x-frame-options"}`),
			evidence("a", model.KindPolicy, ``),
		}
		if err := s.InsertEvidence(ctx, scan.ID, records...); err != nil {
			t.Fatalf("InsertEvidence failed: %v", err)
		}

		got, err := s.ListEvidence(ctx, scan.ID)
		if err != nil {
			t.Fatalf("ListEvidence failed: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 records, got %d", len(got))
		}
		if got[0].ID != "z" || got[2].ID != "a" {
			t.Errorf("insertion order not preserved: %s, %s", got[0].ID, got[2].ID)
		}
		if got[1].ID == "" {
			t.Error("expected an id to be assigned")
		}
		for _, r := range got {
			if r.ScanID != scan.ID {
				t.Errorf("record %s has scan id %q", r.ID, r.ScanID)
			}
			if r.CreatedAt.IsZero() {
				t.Errorf("record %s has no timestamp", r.ID)
			}
		}
		if string(got[0].Details) != `{"domain":"t.com"}` {
			t.Errorf("details not preserved: %s", got[0].Details)
		}
		if got[2].Details != nil {
			t.Errorf("expected nil details, got %q", got[2].Details)
		}
	})

	t.Run("empty scan lists no evidence", func(t *testing.T) {
		t.Parallel()

		s := setupTestStore(t)
		scan := createScan(t, s, "example.com")

		got, err := s.ListEvidence(ctx, scan.ID)
		if err != nil {
			t.Fatalf("ListEvidence failed: %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("expected an empty non-nil slice, got %#v", got)
		}
	})

	t.Run("unknown scan", func(t *testing.T) {
		t.Parallel()

		s := setupTestStore(t)
		if _, err := s.ListEvidence(ctx, "missing"); !errors.Is(err, ErrScanNotFound) {
			t.Errorf("ListEvidence: expected ErrScanNotFound, got %v", err)
		}
		if err := s.InsertEvidence(ctx, "missing", evidence("", model.KindPolicy, `{}`)); !errors.Is(err, ErrScanNotFound) {
			t.Errorf("InsertEvidence: expected ErrScanNotFound, got %v", err)
		}
	})

	t.Run("duplicate id rolls back the batch", func(t *testing.T) {
		t.Parallel()

		s := setupTestStore(t)
		scan := createScan(t, s, "example.com")

		err := s.InsertEvidence(ctx, scan.ID,
			evidence("dup", model.KindPolicy, `{}`),
			evidence("dup", model.KindPolicy, `{}`),
		)
		if err == nil {
			t.Fatal("expected an error for duplicate ids")
		}

		got, err := s.ListEvidence(ctx, scan.ID)
		if err != nil {
			t.Fatalf("ListEvidence failed: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("expected the batch to be rolled back, got %d records", len(got))
		}
	})
}

// TestResults tests storing and reading score results.
func TestResults(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("save and get", func(t *testing.T) {
		t.Parallel()

		s := setupTestStore(t)
		scan := createScan(t, s, "example.com")

		if _, _, err := s.GetResult(ctx, scan.ID); !errors.Is(err, ErrResultNotFound) {
			t.Errorf("expected ErrResultNotFound before scoring, got %v", err)
		}

		result := scoring.Score(nil, scan.RootDomain)
		digest, err := s.SaveResult(ctx, scan.ID, result)
		if err != nil {
			t.Fatalf("SaveResult failed: %v", err)
		}
		want, _ := scoring.Digest(result) //nolint:errcheck
		if digest != want {
			t.Errorf("digest = %s, expected %s", digest, want)
		}

		got, gotDigest, err := s.GetResult(ctx, scan.ID)
		if err != nil {
			t.Fatalf("GetResult failed: %v", err)
		}
		if gotDigest != digest {
			t.Errorf("stored digest %s, expected %s", gotDigest, digest)
		}
		if !reflect.DeepEqual(got, result) {
			t.Errorf("stored result differs\n got: %+v\nwant: %+v", got, result)
		}

		stored, err := s.GetScan(ctx, scan.ID)
		if err != nil {
			t.Fatalf("GetScan failed: %v", err)
		}
		if stored.Status != model.ScanStatusScored || stored.ScoredAt.IsZero() {
			t.Errorf("expected a scored scan, got %+v", stored)
		}
	})

	t.Run("unknown scan", func(t *testing.T) {
		t.Parallel()

		s := setupTestStore(t)
		if _, err := s.SaveResult(ctx, "missing", scoring.Score(nil, "")); !errors.Is(err, ErrScanNotFound) {
			t.Errorf("SaveResult: expected ErrScanNotFound, got %v", err)
		}
		if _, _, err := s.GetResult(ctx, "missing"); !errors.Is(err, ErrScanNotFound) {
			t.Errorf("GetResult: expected ErrScanNotFound, got %v", err)
		}
	})

	t.Run("mark failed", func(t *testing.T) {
		t.Parallel()

		s := setupTestStore(t)
		scan := createScan(t, s, "example.com")

		if err := s.MarkScanFailed(ctx, scan.ID, "evidence missing"); err != nil {
			t.Fatalf("MarkScanFailed failed: %v", err)
		}
		stored, err := s.GetScan(ctx, scan.ID)
		if err != nil {
			t.Fatalf("GetScan failed: %v", err)
		}
		if stored.Status != model.ScanStatusFailed || stored.ErrorMessage != "evidence missing" {
			t.Errorf("unexpected scan state %+v", stored)
		}

		if err := s.MarkScanFailed(ctx, "missing", "x"); !errors.Is(err, ErrScanNotFound) {
			t.Errorf("expected ErrScanNotFound, got %v", err)
		}
	})
}

// TestScoreHistory tests history entries appended by SaveResult.
func TestScoreHistory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := setupTestStore(t)

	first := createScan(t, s, "https://example.com/")
	if _, err := s.SaveResult(ctx, first.ID, scoring.Score(nil, first.RootDomain)); err != nil {
		t.Fatalf("SaveResult failed: %v", err)
	}

	second := createScan(t, s, "example.com")
	if err := s.InsertEvidence(ctx, second.ID,
		evidence("t1", model.KindTracker, `{"domain":"tracker.com"}`),
		evidence("p1", model.KindPolicy, `{}`),
	); err != nil {
		t.Fatalf("InsertEvidence failed: %v", err)
	}
	records, err := s.ListEvidence(ctx, second.ID)
	if err != nil {
		t.Fatalf("ListEvidence failed: %v", err)
	}
	if _, err := s.SaveResult(ctx, second.ID, scoring.Score(records, second.RootDomain)); err != nil {
		t.Fatalf("SaveResult failed: %v", err)
	}

	other := createScan(t, s, "other.org")
	if _, err := s.SaveResult(ctx, other.ID, scoring.Score(nil, other.RootDomain)); err != nil {
		t.Fatalf("SaveResult failed: %v", err)
	}

	history, err := s.GetScoreHistory(ctx, "EXAMPLE.com")
	if err != nil {
		t.Fatalf("GetScoreHistory failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(history))
	}
	if history[0].ScanID != second.ID || history[1].ScanID != first.ID {
		t.Errorf("expected newest first, got %s then %s", history[0].ScanID, history[1].ScanID)
	}
	if history[0].Score != 98 || history[1].Score != 95 {
		t.Errorf("unexpected scores %d and %d", history[0].Score, history[1].Score)
	}
	if !reflect.DeepEqual(history[0].IssueKeys, []string{scoring.IssueTrackers}) {
		t.Errorf("unexpected issue keys %v", history[0].IssueKeys)
	}
	if history[1].RiskSummary["low"] != 1 {
		t.Errorf("expected one low issue, got %v", history[1].RiskSummary)
	}

	entry, err := s.GetScoreHistoryByID(ctx, history[1].ID)
	if err != nil {
		t.Fatalf("GetScoreHistoryByID failed: %v", err)
	}
	if !reflect.DeepEqual(*entry, history[1]) {
		t.Errorf("entry differs\n got: %+v\nwant: %+v", *entry, history[1])
	}

	if _, err := s.GetScoreHistoryByID(ctx, 9999); !errors.Is(err, ErrHistoryNotFound) {
		t.Errorf("expected ErrHistoryNotFound, got %v", err)
	}

	urls, err := s.ListScoredURLs(ctx)
	if err != nil {
		t.Fatalf("ListScoredURLs failed: %v", err)
	}
	if !reflect.DeepEqual(urls, []string{"https://example.com/", "https://other.org/"}) {
		t.Errorf("unexpected urls %v", urls)
	}
}

// TestParseTimestamp tests timestamp parsing.
func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	want := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	testCases := []string{
		formatTimestamp(want),
		"2026-03-04 05:06:07",
		"2026-03-04T05:06:07Z",
		"2026-03-04T05:06:07",
	}
	for _, tc := range testCases {
		if got := parseTimestamp(tc); !got.Equal(want) {
			t.Errorf("parseTimestamp(%q) = %v, expected %v", tc, got, want)
		}
	}

	if got := parseTimestamp("garbage"); !got.IsZero() {
		t.Errorf("expected zero time, got %v", got)
	}
}
