package diskcache

// Export internal hooks for testing.
// This file is only compiled during tests.

// SetDigestForTesting replaces the id digest function, e.g. to force
// collisions. Must be called before the store is used.
func SetDigestForTesting(s *Store, fn func(id string) string) {
	s.digest = fn
}

// WaitReclaimsForTesting blocks until background reclaims started by Get
// have finished.
func WaitReclaimsForTesting(s *Store) {
	s.reclaims.Wait()
}

// EncodeRecordForTesting builds record bytes exactly as Set would.
func EncodeRecordForTesting(key Key, item any, storedMs, ttlMs int64) ([]byte, error) {
	return encodeEnvelope(key, item, storedMs, ttlMs)
}

// LockFileName is the sweep lock file name under the cache root.
const LockFileName = lockFileName
