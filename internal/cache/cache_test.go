package cache

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
)

// TestGetOrStoreIdempotent verifies the core cache property: for any key the
// producer runs exactly once, and the second call returns identical bytes.
func TestGetOrStoreIdempotent(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var calls atomic.Int64
	produce := func() ([]byte, error) {
		calls.Add(1)
		return []byte(`{"match_id":"7"}`), nil
	}

	first, hit, err := s.GetOrStore("vlr:7", produce)
	if err != nil {
		t.Fatalf("first GetOrStore failed: %v", err)
	}
	if hit {
		t.Error("first call reported a hit")
	}

	second, hit, err := s.GetOrStore("vlr:7", produce)
	if err != nil {
		t.Fatalf("second GetOrStore failed: %v", err)
	}
	if !hit {
		t.Error("second call reported a miss")
	}
	if !bytes.Equal(first, second) {
		t.Errorf("payloads differ: %q vs %q", first, second)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("producer calls = %d, want 1", got)
	}
}

// TestDisabledStore verifies that a disabled store always invokes the
// producer and persists nothing.
func TestDisabledStore(t *testing.T) {
	s := Disabled()

	var calls atomic.Int64
	produce := func() ([]byte, error) {
		calls.Add(1)
		return []byte(`{}`), nil
	}

	for range 3 {
		if _, hit, err := s.GetOrStore("k", produce); err != nil || hit {
			t.Fatalf("GetOrStore = (hit=%v, err=%v), want miss and nil", hit, err)
		}
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("producer calls = %d, want 3", got)
	}
}

// TestCorruptEntryIsMiss verifies that an unreadable entry falls back to the
// producer instead of failing.
func TestCorruptEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// Write garbage at the entry's path.
	if err := os.WriteFile(s.keyPath("vlr:9"), []byte("not json{"), 0o644); err != nil {
		t.Fatalf("seed corrupt entry: %v", err)
	}

	data, hit, err := s.GetOrStore("vlr:9", func() ([]byte, error) {
		return []byte(`{"fresh":true}`), nil
	})
	if err != nil {
		t.Fatalf("GetOrStore failed: %v", err)
	}
	if hit {
		t.Error("corrupt entry reported as hit")
	}
	if string(data) != `{"fresh":true}` {
		t.Errorf("data = %q, want fresh payload", data)
	}
}

// TestProducerError verifies errors propagate and nothing is cached.
func TestProducerError(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	wantErr := errors.New("upstream down")
	if _, _, err := s.GetOrStore("k", func() ([]byte, error) { return nil, wantErr }); !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}

	// A later successful producer must run (no poisoned entry).
	data, hit, err := s.GetOrStore("k", func() ([]byte, error) { return []byte(`{}`), nil })
	if err != nil || hit || string(data) != `{}` {
		t.Errorf("recovery GetOrStore = (%q, %v, %v), want fresh miss", data, hit, err)
	}
}

// TestConcurrentGetOrStore verifies at-most-once production per key under
// concurrent access.
func TestConcurrentGetOrStore(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var calls atomic.Int64
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := s.GetOrStore("grid:42", func() ([]byte, error) {
				calls.Add(1)
				return []byte(`{"id":"42"}`), nil
			})
			if err != nil {
				t.Errorf("GetOrStore failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("producer calls = %d, want 1", got)
	}
}

// TestEntryFileNaming verifies one file per key named by digest.
func TestEntryFileNaming(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, _, err := s.GetOrStore(Key("vlr", "7"), func() ([]byte, error) { return []byte(`{}`), nil }); err != nil {
		t.Fatalf("GetOrStore failed: %v", err)
	}

	entries, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		t.Fatalf("glob failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("cache files = %d, want 1", len(entries))
	}
	// sha256 hex digest + ".json"
	if base := filepath.Base(entries[0]); len(base) != 64+len(".json") {
		t.Errorf("entry name %q does not look like a sha256 digest", base)
	}
}
