// Package fs provides the filesystem abstraction used by the cache store.
//
// The main types are:
//   - [FS]: interface for the filesystem operations the store performs
//   - [Real]: production implementation using [os], atomic renames and flock
//   - [Chaos]: testing implementation that injects errno failures
//
// Example usage:
//
//	fsys := fs.NewReal()
//	err := fsys.WriteFileAtomic("entry.record", data, 0o644)
//	if err != nil {
//	    return err
//	}
//
//	data, err = fsys.ReadFile("entry.record")
package fs

import (
	"io"
	"os"
)

// Locker represents a held file lock.
// Call [Locker.Close] to release the lock.
type Locker interface {
	io.Closer
}

// FS defines the filesystem operations needed to persist cache records.
//
// All methods mirror their [os] package equivalents but can be intercepted
// for testing with fault injection. Errors keep [os] semantics, so
// [os.IsNotExist] and errors.Is(err, fs.ErrNotExist) work on them.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type FS interface {
	// ReadFile reads an entire file into memory. See [os.ReadFile].
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to a file, creating or truncating it.
	// See [os.WriteFile]. Not atomic: readers may observe a partial file.
	WriteFile(path string, data []byte, perm os.FileMode) error

	// WriteFileAtomic writes data to a temp file in the same directory
	// and renames it over path. Readers see either the old or the new
	// content, never a mix.
	WriteFileAtomic(path string, data []byte, perm os.FileMode) error

	// ReadDir reads a directory and returns its entries sorted by name.
	// See [os.ReadDir]. Entries are not followed through symlinks.
	ReadDir(path string) ([]os.DirEntry, error)

	// MkdirAll creates a directory and all parents. See [os.MkdirAll].
	// No error if the directory already exists.
	MkdirAll(path string, perm os.FileMode) error

	// Stat returns file info. See [os.Stat].
	Stat(path string) (os.FileInfo, error)

	// Remove deletes a file or empty directory. See [os.Remove].
	Remove(path string) error

	// TryLock acquires an exclusive lock on path without blocking,
	// creating the lock file if needed. Returns [ErrLocked] when another
	// holder (in this or another process) owns the lock.
	TryLock(path string) (Locker, error)
}
