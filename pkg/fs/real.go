package fs

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/natefinch/atomic"
	"golang.org/x/sys/unix"
)

// ErrLocked is returned by [FS.TryLock] when the lock is held elsewhere.
var ErrLocked = errors.New("lock held")

// Real implements [FS] using the real filesystem.
//
// Most methods are pure passthroughs to the [os] package with identical
// behavior and error semantics. The exceptions are [Real.WriteFileAtomic],
// which goes through a temp file and rename, and [Real.TryLock], which
// uses flock(2).
type Real struct{}

// NewReal returns a new [Real] filesystem.
func NewReal() *Real {
	return &Real{}
}

// A passthrough wrapper for [os.ReadFile].
func (r *Real) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// A passthrough wrapper for [os.WriteFile].
func (r *Real) WriteFile(path string, data []byte, perm os.FileMode) error {
	return os.WriteFile(path, data, perm)
}

// WriteFileAtomic writes through a temp file created next to path and
// renamed into place. The temp file name is path plus a random suffix, so
// it never matches a record name while it exists.
func (r *Real) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	err := atomic.WriteFile(path, bytes.NewReader(data))
	if err != nil {
		return err
	}

	// atomic.WriteFile keeps the temp file's 0600 mode for new files.
	err = os.Chmod(path, perm)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	return nil
}

// A passthrough wrapper for [os.ReadDir].
func (r *Real) ReadDir(path string) ([]os.DirEntry, error) {
	return os.ReadDir(path)
}

// A passthrough wrapper for [os.MkdirAll].
func (r *Real) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// A passthrough wrapper for [os.Stat].
func (r *Real) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// A passthrough wrapper for [os.Remove].
func (r *Real) Remove(path string) error {
	return os.Remove(path)
}

// --- Locking ---

const lockPerms = 0o644

// realLock holds an exclusive flock on an open file.
type realLock struct {
	file *os.File
}

func (l *realLock) Close() error {
	if l.file == nil {
		return nil
	}

	_ = unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	err := l.file.Close()
	l.file = nil

	return err
}

// TryLock takes a non-blocking exclusive flock on path.
// The lock file is left in place after release so the inode stays stable
// for every holder.
func (r *Real) TryLock(path string) (Locker, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, lockPerms)
	if err != nil {
		return nil, err
	}

	err = unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if err != nil {
		_ = file.Close()

		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, fmt.Errorf("%s: %w", path, ErrLocked)
		}

		return nil, &os.PathError{Op: "flock", Path: path, Err: err}
	}

	return &realLock{file: file}, nil
}

// Compile-time interface check.
var _ FS = (*Real)(nil)
