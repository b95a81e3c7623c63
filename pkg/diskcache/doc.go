// Package diskcache provides a persistent, file-per-entry cache with TTL
// expiration and background reclamation.
//
// Entries are addressed by a [Key] (a segment namespace plus an id) and
// stored as individual JSON record files under a root directory, so cached
// data survives process restarts. Reads cost a file read, not a map lookup.
//
// # Basic Usage
//
//	store, err := diskcache.New(diskcache.DefaultOptions("/var/cache/app"))
//	if err != nil {
//	    return err // [ErrConfig]
//	}
//
//	if err := store.Start(ctx); err != nil {
//	    return err // root missing, not a directory, or not writable
//	}
//	defer store.Stop()
//
//	key := diskcache.Key{Segment: "users", ID: "42"}
//	err = store.Set(ctx, key, user, 10*time.Minute)
//
//	entry, found, err := store.Get(ctx, key)
//	if found {
//	    err = entry.Decode(&user)
//	}
//
// # On-disk Layout
//
// A key resolves to
//
//	<root>/<segment>/<h[0:2]>/<h[2:4]>/<h>.record
//
// where h is the lowercase hex MD5 digest of the id. Records are written to
// a temp file and renamed into place, so readers never see a partial write.
// Files whose names do not match the record pattern are never touched, so
// a cache root may hold other files.
//
// # Expiration
//
// Expiration is lazy: [Store.Get] reports expired and corrupt records as a
// miss and deletes them. When [Options.CleanEvery] is positive, a sweeper
// also walks the root periodically and deletes expired and corrupt records
// nobody reads anymore.
//
// # Concurrency
//
// A [Store] is safe for concurrent use. There is no locking between client
// operations: concurrent writers to one key race and the last rename wins.
// Two stores may share a root; only one of them sweeps at a time.
//
// # Error Handling
//
// A miss is not an error. Errors wrap one of the sentinels in errors.go
// ([ErrConfig], [ErrValidation], [ErrNotConnected], [ErrIO],
// [ErrSerialization], [ErrSweepBusy]); use [errors.Is] to classify them.
// Corrupt records are reclaimed and reported as misses, never as errors.
package diskcache
