package diskcache_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/calvinalkan/diskcache/pkg/diskcache"
)

// newStore creates a store that is stopped when the test ends.
// An empty opts.CachePath gets a fresh temp dir.
func newStore(t *testing.T, opts diskcache.Options) *diskcache.Store {
	t.Helper()

	if opts.CachePath == "" {
		opts.CachePath = t.TempDir()
	}

	store, err := diskcache.New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	t.Cleanup(store.Stop)

	return store
}

// startStore is newStore followed by a successful Start.
func startStore(t *testing.T, opts diskcache.Options) *diskcache.Store {
	t.Helper()

	store := newStore(t, opts)

	err := store.Start(t.Context())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	return store
}

// writeRecord puts a record for key directly on disk, bypassing Set.
func writeRecord(t *testing.T, root string, key diskcache.Key, item any, stored time.Time, ttl time.Duration) string {
	t.Helper()

	data, err := diskcache.EncodeRecordForTesting(key, item, stored.UnixMilli(), ttl.Milliseconds())
	if err != nil {
		t.Fatalf("encode record: %v", err)
	}

	path := diskcache.RecordPath(root, key)

	return writeRaw(t, path, data)
}

// writeRaw writes data at path, creating parent directories.
func writeRaw(t *testing.T, path string, data []byte) string {
	t.Helper()

	err := os.MkdirAll(filepath.Dir(path), 0o755)
	if err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	err = os.WriteFile(path, data, 0o644)
	if err != nil {
		t.Fatalf("write %s: %v", path, err)
	}

	return path
}

func fileExists(t *testing.T, path string) bool {
	t.Helper()

	_, err := os.Stat(path)
	if err == nil {
		return true
	}

	if os.IsNotExist(err) {
		return false
	}

	t.Fatalf("stat %s: %v", path, err)

	return false
}

// waitUntil polls cond until it holds or timeout passes.
func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()

	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		if cond() {
			return true
		}

		time.Sleep(10 * time.Millisecond)
	}

	return cond()
}
