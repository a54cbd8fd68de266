package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// TestBatchProcessorNew tests the BatchProcessor constructor.
func TestBatchProcessorNew(t *testing.T) {
	t.Parallel()

	t.Run("creates processor with defaults", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func() *Pipeline { return New() })
		if bp.concurrency != DefaultConcurrency {
			t.Errorf("expected default concurrency %d, got %d", DefaultConcurrency, bp.concurrency)
		}
		if bp.logger == nil {
			t.Error("expected non-nil logger")
		}
	})

	t.Run("applies WithConcurrency option", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func() *Pipeline { return New() }, WithConcurrency(5))
		if bp.concurrency != 5 {
			t.Errorf("expected concurrency 5, got %d", bp.concurrency)
		}
	})

	t.Run("ignores non-positive concurrency", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func() *Pipeline { return New() }, WithConcurrency(0), WithBatchLogger(nil))
		if bp.concurrency != DefaultConcurrency {
			t.Errorf("expected concurrency %d, got %d", DefaultConcurrency, bp.concurrency)
		}
		if bp.logger == nil {
			t.Error("expected non-nil logger")
		}
	})
}

// TestBatchProcessorProcessBatch tests batch scoring.
func TestBatchProcessorProcessBatch(t *testing.T) {
	t.Parallel()

	t.Run("scores every scan and keeps input order", func(t *testing.T) {
		t.Parallel()

		store := newMemoryStore()
		ids := make([]string, 10)
		for i := range ids {
			ids[i] = fmt.Sprintf("scan-%d", i)
			store.add(ids[i], "example.com", tracker("t", fmt.Sprintf("tracker%d.com", i)))
		}
		ids = append(ids, "missing")

		bp := NewBatchProcessor(func() *Pipeline { return DefaultPipeline(store, nil) }, WithConcurrency(3))
		jobs, err := bp.ProcessBatch(context.Background(), ids)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(jobs) != len(ids) {
			t.Fatalf("expected %d jobs, got %d", len(ids), len(jobs))
		}
		for i, job := range jobs {
			if job.ScanID != ids[i] {
				t.Errorf("job %d has scan id %q, expected %q", i, job.ScanID, ids[i])
			}
		}

		succeeded, failed := Summary(jobs)
		if succeeded != 10 || failed != 1 {
			t.Errorf("expected 10 succeeded and 1 failed, got %d and %d", succeeded, failed)
		}
		if !errors.Is(jobs[10].Err, errNotFound) {
			t.Errorf("expected the missing scan to fail with not found, got %v", jobs[10].Err)
		}
	})

	t.Run("respects concurrency limit", func(t *testing.T) {
		t.Parallel()

		var current, peak atomic.Int32
		factory := func() *Pipeline {
			p := New()
			p.AddStep(&mockStep{name: "slow", doFunc: func(context.Context, *Job) error {
				n := current.Add(1)
				for {
					old := peak.Load()
					if n <= old || peak.CompareAndSwap(old, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				current.Add(-1)
				return nil
			}})
			return p
		}

		ids := make([]string, 12)
		for i := range ids {
			ids[i] = fmt.Sprintf("scan-%d", i)
		}

		bp := NewBatchProcessor(factory, WithConcurrency(2))
		if _, err := bp.ProcessBatch(context.Background(), ids); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if peak.Load() > 2 {
			t.Errorf("expected at most 2 concurrent jobs, saw %d", peak.Load())
		}
	})

	t.Run("cancelled context returns an error", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		bp := NewBatchProcessor(func() *Pipeline { return New() })
		jobs, err := bp.ProcessBatch(ctx, []string{"a", "b"})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		for _, job := range jobs {
			if job == nil || job.Err == nil {
				t.Errorf("expected every job to carry the cancellation, got %+v", job)
			}
		}
	})

	t.Run("callback sees every job", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		seen := make(map[int]string)

		bp := NewBatchProcessor(func() *Pipeline { return New() })
		err := bp.ProcessBatchWithCallback(context.Background(), []string{"a", "b", "c"}, func(job *Job, index int) {
			mu.Lock()
			defer mu.Unlock()
			seen[index] = job.ScanID
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(seen) != 3 || seen[0] != "a" || seen[2] != "c" {
			t.Errorf("unexpected callbacks %v", seen)
		}
	})
}
