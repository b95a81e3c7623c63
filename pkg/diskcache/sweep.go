package diskcache

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/calvinalkan/diskcache/pkg/fs"
)

// lockFileName is the flock file that keeps stores sharing a root from
// sweeping it at the same time. It never matches [IsRecordName].
const lockFileName = ".diskcache.lock"

const maxFirstSweepDelay = time.Second

// SweepStats summarizes one sweep.
type SweepStats struct {
	Scanned  int           // record files inspected
	Live     int           // records left in place
	Expired  int           // expired records deleted
	Corrupt  int           // undecodable records deleted
	Failed   int           // files or directories that could not be read or deleted
	Duration time.Duration // wall time of the walk
}

// Sweep walks the cache root once and deletes every expired or corrupt
// record, using the same expiry check as [Store.Get].
//
// Only regular files named like records are inspected; symlinks are never
// followed and other files are left alone. A failure on one file is logged
// and counted in [SweepStats.Failed]; the walk goes on. Sweep returns an
// error only when the root itself cannot be listed (wrapping [ErrIO]), when
// ctx is canceled, or with [ErrSweepBusy] when another store holds the
// sweep lock for this root.
func (s *Store) Sweep(ctx context.Context) (SweepStats, error) {
	if ctx == nil {
		return SweepStats{}, errors.New("sweep: context is nil")
	}

	if !s.ready.Load() {
		return SweepStats{}, fmt.Errorf("sweep: %w", ErrNotConnected)
	}

	return s.sweep(ctx)
}

func (s *Store) sweep(ctx context.Context) (SweepStats, error) {
	var stats SweepStats

	lockPath := filepath.Join(s.root, lockFileName)

	lock, err := s.fs.TryLock(lockPath)
	if err != nil {
		if errors.Is(err, fs.ErrLocked) {
			return stats, fmt.Errorf("sweep: %w", ErrSweepBusy)
		}

		return stats, fmt.Errorf("sweep: %w: lock %s: %w", ErrIO, lockPath, err)
	}

	defer func() { _ = lock.Close() }()

	start := time.Now()

	entries, err := s.fs.ReadDir(s.root)
	if err != nil {
		return stats, fmt.Errorf("sweep: %w: read %s: %w", ErrIO, s.root, err)
	}

	err = s.sweepEntries(ctx, s.root, entries, &stats)
	stats.Duration = time.Since(start)

	if err != nil {
		return stats, fmt.Errorf("sweep: %w", err)
	}

	return stats, nil
}

func (s *Store) sweepDir(ctx context.Context, dir string, stats *SweepStats) error {
	entries, err := s.fs.ReadDir(dir)
	if err != nil {
		stats.Failed++
		s.log.Warn("sweep: cannot read directory", "path", dir, "err", err)

		return nil
	}

	return s.sweepEntries(ctx, dir, entries, stats)
}

func (s *Store) sweepEntries(ctx context.Context, dir string, entries []os.DirEntry, stats *SweepStats) error {
	for _, entry := range entries {
		err := ctx.Err()
		if err != nil {
			return err
		}

		path := filepath.Join(dir, entry.Name())
		mode := entry.Type()

		switch {
		case mode&os.ModeSymlink != 0:
			continue
		case mode.IsDir():
			err = s.sweepDir(ctx, path, stats)
			if err != nil {
				return err
			}
		case mode.IsRegular() && IsRecordName(entry.Name()):
			s.sweepFile(path, stats)
		}
	}

	return nil
}

func (s *Store) sweepFile(path string, stats *SweepStats) {
	_, res, err := s.inspect(path, s.now())
	if err != nil {
		stats.Scanned++
		stats.Failed++
		s.log.Warn("sweep: cannot read record", "path", path, "err", err)

		return
	}

	switch res {
	case loadMissing:
		// Deleted between listing and reading.
		return
	case loadLive:
		stats.Scanned++
		stats.Live++

		return
	case loadExpired:
		stats.Scanned++
		stats.Expired++
		err = s.reclaim(path, "expired")
	case loadCorrupt:
		stats.Scanned++
		stats.Corrupt++
		err = s.reclaim(path, "corrupt")
	}

	if err != nil {
		stats.Failed++
	}
}

// scheduleSweep arms the sweep timer. Callers hold s.mu.
func (s *Store) scheduleSweep(ctx context.Context, delay time.Duration) {
	s.sweeps.Add(1)
	s.sweepTimer = time.AfterFunc(delay, func() {
		defer s.sweeps.Done()

		s.runScheduledSweep(ctx)
	})
}

func (s *Store) runScheduledSweep(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	stats, err := s.sweep(ctx)

	switch {
	case err == nil:
		s.log.Info("sweep done", "root", s.root, "scanned", stats.Scanned, "expired", stats.Expired,
			"corrupt", stats.Corrupt, "failed", stats.Failed, "duration", stats.Duration)
	case errors.Is(err, ErrSweepBusy), errors.Is(err, context.Canceled):
		s.log.Debug("sweep skipped", "root", s.root, "err", err)
	default:
		s.log.Warn("sweep failed", "root", s.root, "err", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if ctx.Err() != nil {
		return
	}

	s.scheduleSweep(ctx, nextSweepDelay(s.cleanEvery))
}

// firstSweepDelay spreads the first sweep of stores started together over
// [0, min(interval, maxFirstSweepDelay)).
func firstSweepDelay(interval time.Duration) time.Duration {
	return jitter(min(interval, maxFirstSweepDelay))
}

// nextSweepDelay is interval plus up to a tenth of it.
func nextSweepDelay(interval time.Duration) time.Duration {
	return interval + jitter(interval/10)
}

func jitter(upTo time.Duration) time.Duration {
	if upTo <= 0 {
		return 0
	}

	return rand.N(upTo)
}
