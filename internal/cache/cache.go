// Package cache provides a content-addressed store for raw API payloads.
//
// Each entry is one file in the cache directory, named by the SHA-256 hex
// digest of its key and holding the payload verbatim. Keys are composite
// "<adapter>:<recordID>" strings, so re-running the pipeline replays cached
// records without hitting the network. Corrupt or unreadable entries are
// treated as misses, never as fatal errors.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store is a file-backed content-addressed cache. A disabled Store always
// invokes the producer and persists nothing.
//
// GetOrStore is at-most-once per key: concurrent callers with the same key
// serialize, and only the first invokes the producer.
type Store struct {
	dir     string
	enabled bool

	mu   sync.Mutex
	keys map[string]*sync.Mutex
}

// New creates a Store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Store{
		dir:     dir,
		enabled: true,
		keys:    make(map[string]*sync.Mutex),
	}, nil
}

// Disabled returns a Store that performs no caching: every GetOrStore call
// invokes the producer and nothing is written to disk.
func Disabled() *Store {
	return &Store{keys: make(map[string]*sync.Mutex)}
}

// Enabled reports whether this store persists entries.
func (s *Store) Enabled() bool { return s.enabled }

// Key derives the stable cache key for one record of one adapter.
func Key(adapter, recordID string) string {
	return adapter + ":" + recordID
}

// GetOrStore returns the payload for key. On a hit the stored bytes are
// returned verbatim and produce is not invoked. On a miss, produce runs once,
// its result is persisted, and the fresh bytes are returned along with
// hit=false. Producer errors are returned unwrapped so callers can log them
// with source context.
func (s *Store) GetOrStore(key string, produce func() ([]byte, error)) (data []byte, hit bool, err error) {
	if !s.enabled {
		data, err = produce()
		return data, false, err
	}

	lock := s.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	path := s.keyPath(key)
	if stored, readErr := os.ReadFile(path); readErr == nil && json.Valid(stored) {
		return stored, true, nil
	}

	data, err = produce()
	if err != nil {
		return nil, false, err
	}

	// A failed write degrades to uncached operation.
	_ = os.WriteFile(path, data, 0o644)
	return data, false, nil
}

func (s *Store) keyLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.keys[key]
	if !ok {
		lock = &sync.Mutex{}
		s.keys[key] = lock
	}
	return lock
}

func (s *Store) keyPath(key string) string {
	h := sha256.Sum256([]byte(key))
	return filepath.Join(s.dir, hex.EncodeToString(h[:])+".json")
}
