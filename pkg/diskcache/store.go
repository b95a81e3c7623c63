package diskcache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	iofs "io/fs"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/calvinalkan/diskcache/pkg/fs"
)

const (
	dirPerms  = 0o755
	filePerms = 0o644
)

// probeData is written, read back and deleted by [Store.Start].
var probeData = []byte("diskcache probe\n")

// Entry is a live cache entry returned by [Store.Get].
type Entry struct {
	Key Key

	// Item is the JSON encoding of the value passed to [Store.Set].
	Item json.RawMessage

	// Stored is when the entry was written, at millisecond precision.
	Stored time.Time

	// TTL is the lifetime left at the time of the read, not the
	// lifetime the entry was stored with.
	TTL time.Duration
}

// Decode unmarshals the item into v.
func (e Entry) Decode(v any) error {
	err := json.Unmarshal(e.Item, v)
	if err != nil {
		return fmt.Errorf("decode item %s/%q: %w", e.Key.Segment, e.Key.ID, err)
	}

	return nil
}

// Store is a disk-backed cache rooted at one directory.
//
// A Store starts not ready. [Store.Start] validates the root and makes it
// ready; [Store.Stop] makes it not ready again. Get, Set, Drop and Sweep
// fail with [ErrNotConnected] while not ready.
type Store struct {
	root       string
	cleanEvery time.Duration
	fs         fs.FS
	log        *slog.Logger
	now        func() time.Time
	digest     func(id string) string

	// lifecycle serializes Start and Stop, including Stop's drain.
	lifecycle sync.Mutex

	// mu guards the sweep schedule and orders reclaim spawns against Stop.
	mu          sync.RWMutex
	ready       atomic.Bool
	sweepTimer  *time.Timer
	sweepCancel context.CancelFunc
	sweeps      sync.WaitGroup
	reclaims    sync.WaitGroup
}

// New creates a Store from opts. It does no I/O; call [Store.Start] before
// use. Returns an error wrapping [ErrConfig] for invalid options.
func New(opts Options) (*Store, error) {
	err := opts.validate()
	if err != nil {
		return nil, err
	}

	opts = opts.withDefaults()

	return &Store{
		root:       filepath.Clean(opts.CachePath),
		cleanEvery: opts.CleanEvery,
		fs:         opts.FS,
		log:        opts.Logger,
		now:        opts.Now,
		digest:     digestID,
	}, nil
}

// Root returns the cache root directory.
func (s *Store) Root() string {
	return s.root
}

// IsReady reports whether the store has been started and not stopped.
func (s *Store) IsReady() bool {
	return s.ready.Load()
}

// Start validates the cache root and makes the store ready.
//
// The root must exist and be a directory. Start then writes, reads back
// and deletes a probe file to catch permission problems early. Any failure
// wraps [ErrConfig] and leaves the store not ready.
//
// Start on a ready store returns nil without probing again. When
// [Options.CleanEvery] is positive, Start also schedules the sweeper.
func (s *Store) Start(ctx context.Context) error {
	if ctx == nil {
		return errors.New("start: context is nil")
	}

	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.ready.Load() {
		return nil
	}

	err := ctx.Err()
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}

	err = s.checkRoot()
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}

	s.mu.Lock()
	s.ready.Store(true)

	if s.cleanEvery > 0 {
		sweepCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		s.sweepCancel = cancel
		s.scheduleSweep(sweepCtx, firstSweepDelay(s.cleanEvery))
	}
	s.mu.Unlock()

	s.log.Info("cache store ready", "root", s.root, "clean_every", s.cleanEvery)

	return nil
}

// Stop makes the store not ready and cancels any pending sweep.
//
// A sweep already walking the tree stops at the next file and is not
// rescheduled. Stop waits for it and for background reclaims started by
// [Store.Get] to finish. Stop is idempotent.
func (s *Store) Stop() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	s.mu.Lock()
	wasReady := s.ready.Swap(false)

	if s.sweepCancel != nil {
		s.sweepCancel()
		s.sweepCancel = nil
	}

	if s.sweepTimer != nil {
		if s.sweepTimer.Stop() {
			// The callback will never run, so it cannot release its slot.
			s.sweeps.Done()
		}

		s.sweepTimer = nil
	}
	s.mu.Unlock()

	s.sweeps.Wait()
	s.reclaims.Wait()

	if wasReady {
		s.log.Info("cache store stopped", "root", s.root)
	}
}

func (s *Store) checkRoot() error {
	info, err := s.fs.Stat(s.root)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return fmt.Errorf("%w: cache path %q does not exist", ErrConfig, s.root)
		}

		return fmt.Errorf("%w: stat cache path %q: %w", ErrConfig, s.root, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%w: cache path %q is not a directory", ErrConfig, s.root)
	}

	probe := filepath.Join(s.root, ".probe-"+uuid.NewString())

	err = s.fs.WriteFile(probe, probeData, filePerms)
	if err != nil {
		return fmt.Errorf("%w: cache path %q is not writable: %w", ErrConfig, s.root, err)
	}

	data, readErr := s.fs.ReadFile(probe)
	if readErr == nil && !bytes.Equal(data, probeData) {
		readErr = fmt.Errorf("probe %q read back %d bytes, wrote %d", probe, len(data), len(probeData))
	}

	removeErr := s.fs.Remove(probe)

	err = errors.Join(readErr, removeErr)
	if err != nil {
		return fmt.Errorf("%w: cache path %q failed probe: %w", ErrConfig, s.root, err)
	}

	return nil
}

// Location returns the record path key resolves to under this store's
// root. It does no I/O and works whether or not the store is ready.
func (s *Store) Location(key Key) (string, error) {
	err := validateKey(key)
	if err != nil {
		return "", err
	}

	return s.location(key), nil
}

func (s *Store) location(key Key) string {
	return recordPath(s.root, key.Segment, s.digest(key.ID))
}

// precheck runs the checks every client operation does before any I/O.
func (s *Store) precheck(ctx context.Context, key Key) error {
	if ctx == nil {
		return errors.New("context is nil")
	}

	err := ctx.Err()
	if err != nil {
		return err
	}

	if !s.ready.Load() {
		return ErrNotConnected
	}

	return validateKey(key)
}

// Get returns the live entry for key.
//
// found is false, with a nil error, when there is no record, when it has
// expired, or when it is corrupt. Expired records are deleted in the
// background; corrupt records are deleted before Get returns. Failures of
// either deletion are logged, not returned. Other read failures wrap
// [ErrIO].
func (s *Store) Get(ctx context.Context, key Key) (Entry, bool, error) {
	err := s.precheck(ctx, key)
	if err != nil {
		return Entry{}, false, fmt.Errorf("get: %w", err)
	}

	path := s.location(key)
	now := s.now()

	env, res, err := s.inspect(path, now)
	if err != nil {
		return Entry{}, false, fmt.Errorf("get %s/%q: %w", key.Segment, key.ID, err)
	}

	switch res {
	case loadMissing:
		return Entry{}, false, nil
	case loadCorrupt:
		_ = s.reclaim(path, "corrupt")

		return Entry{}, false, nil
	case loadExpired:
		s.reclaimInBackground(path)

		return Entry{}, false, nil
	}

	if env.Key != key {
		// Digest collision: the record belongs to another id.
		s.log.Debug("record key mismatch", "path", path, "segment", key.Segment, "id", key.ID,
			"stored_segment", env.Key.Segment, "stored_id", env.Key.ID)

		return Entry{}, false, nil
	}

	return Entry{
		Key:    env.Key,
		Item:   env.Item,
		Stored: time.UnixMilli(env.Stored),
		TTL:    env.remaining(now),
	}, true, nil
}

// Set stores item under key for ttl, replacing any existing record.
//
// item is encoded with encoding/json; an unencodable item fails with
// [ErrSerialization] and nothing is written. The record is written to a
// temp file and renamed into place. TTLs below one millisecond are rounded
// up to one.
//
// A ttl of zero or less is not an error: nothing is written and any
// existing record for key is removed, as if it expired immediately.
func (s *Store) Set(ctx context.Context, key Key, item any, ttl time.Duration) error {
	err := s.precheck(ctx, key)
	if err != nil {
		return fmt.Errorf("set: %w", err)
	}

	path := s.location(key)

	if ttl <= 0 {
		s.log.Debug("set with non-positive ttl, removing record", "path", path, "ttl", ttl)

		err = s.remove(path)
		if err != nil {
			return fmt.Errorf("set %s/%q: %w", key.Segment, key.ID, err)
		}

		return nil
	}

	data, err := encodeEnvelope(key, item, s.now().UnixMilli(), max(ttl.Milliseconds(), 1))
	if err != nil {
		return fmt.Errorf("set %s/%q: %w", key.Segment, key.ID, err)
	}

	dir := filepath.Dir(path)

	err = s.fs.MkdirAll(dir, dirPerms)
	if err != nil {
		return fmt.Errorf("set %s/%q: %w: create %s: %w", key.Segment, key.ID, ErrIO, dir, err)
	}

	err = s.fs.WriteFileAtomic(path, data, filePerms)
	if err != nil {
		return fmt.Errorf("set %s/%q: %w: write %s: %w", key.Segment, key.ID, ErrIO, path, err)
	}

	return nil
}

// Drop removes the record for key. Dropping a key with no record is not an
// error. Other failures wrap [ErrIO].
func (s *Store) Drop(ctx context.Context, key Key) error {
	err := s.precheck(ctx, key)
	if err != nil {
		return fmt.Errorf("drop: %w", err)
	}

	err = s.remove(s.location(key))
	if err != nil {
		return fmt.Errorf("drop %s/%q: %w", key.Segment, key.ID, err)
	}

	return nil
}

// ValidateSegmentName is [ValidateSegmentName], exposed on the store for
// adapters that only hold a *Store.
func (*Store) ValidateSegmentName(name string) error {
	return ValidateSegmentName(name)
}

// remove deletes path, treating a missing file as success.
func (s *Store) remove(path string) error {
	err := s.fs.Remove(path)
	if err != nil && !errors.Is(err, iofs.ErrNotExist) {
		return fmt.Errorf("%w: remove %s: %w", ErrIO, path, err)
	}

	return nil
}

// loadResult classifies what [Store.inspect] found at a path.
type loadResult uint8

const (
	loadMissing loadResult = iota
	loadLive
	loadExpired
	loadCorrupt
)

// inspect reads, decodes and classifies the record at path. This is the
// single definition of expiry shared by Get and the sweeper; both reclaim
// what it reports as expired or corrupt.
//
// Only the read itself can fail. Decode failures are logged and reported
// as loadCorrupt.
func (s *Store) inspect(path string, now time.Time) (envelope, loadResult, error) {
	data, err := s.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return envelope{}, loadMissing, nil
		}

		return envelope{}, loadMissing, fmt.Errorf("%w: read %s: %w", ErrIO, path, err)
	}

	env, err := decodeEnvelope(data)
	if err != nil {
		s.log.Warn("corrupt record", "path", path, "err", err)

		return envelope{}, loadCorrupt, nil
	}

	if !env.live(now) {
		return envelope{}, loadExpired, nil
	}

	return env, loadLive, nil
}

// reclaim deletes a dead record. Failures are logged and returned for
// bookkeeping; callers never surface them.
func (s *Store) reclaim(path, reason string) error {
	err := s.remove(path)
	if err != nil {
		s.log.Warn("reclaim failed", "path", path, "reason", reason, "err", err)

		return err
	}

	s.log.Debug("reclaimed record", "path", path, "reason", reason)

	return nil
}

// reclaimInBackground deletes an expired record without blocking the
// caller. Stop waits for these to finish.
func (s *Store) reclaimInBackground(path string) {
	s.mu.RLock()

	if !s.ready.Load() {
		s.mu.RUnlock()
		_ = s.reclaim(path, "expired")

		return
	}

	s.reclaims.Add(1)
	s.mu.RUnlock()

	go func() {
		defer s.reclaims.Done()

		_ = s.reclaim(path, "expired")
	}()
}
