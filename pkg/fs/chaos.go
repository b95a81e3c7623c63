package fs

import (
	"os"
	"sync"
	"sync/atomic"
	"syscall"
)

// Op identifies an [FS] method for fault injection.
type Op uint8

// Operations that [Chaos] can fail.
const (
	OpReadFile Op = iota
	OpWriteFile
	OpWriteFileAtomic
	OpReadDir
	OpMkdirAll
	OpStat
	OpRemove
	OpTryLock
	opCount
)

var opNames = [opCount]string{
	OpReadFile:        "read",
	OpWriteFile:       "write",
	OpWriteFileAtomic: "write",
	OpReadDir:         "readdirent",
	OpMkdirAll:        "mkdir",
	OpStat:            "stat",
	OpRemove:          "remove",
	OpTryLock:         "flock",
}

// String returns the syscall-ish name used in injected [os.PathError]s.
func (op Op) String() string {
	if op >= opCount {
		return "unknown"
	}

	return opNames[op]
}

// Chaos wraps an [FS] and fails selected operations with real errno values.
//
// Unlike random fault injection, Chaos is driven by explicit rules: each
// rule names an [Op], a path predicate and the errno to return. Rules are
// sticky until [Chaos.Reset]. Operations without a matching rule pass
// through to the wrapped filesystem.
//
// Injected errors are *os.PathError values wrapping a [syscall.Errno], so
// os.IsPermission, errors.Is(err, fs.ErrNotExist) and friends behave as
// they would for a real failure. Use [IsInjected] to tell them apart.
type Chaos struct {
	fs FS

	mu    sync.RWMutex
	rules []chaosRule

	faults [opCount]atomic.Int64
}

type chaosRule struct {
	op    Op
	match func(path string) bool
	errno syscall.Errno
}

// NewChaos creates a new Chaos filesystem wrapping fs.
// Panics if fs is nil.
func NewChaos(fs FS) *Chaos {
	if fs == nil {
		panic("fs is nil")
	}

	return &Chaos{fs: fs}
}

// Fail makes op return errno for every path match accepts.
func (c *Chaos) Fail(op Op, match func(path string) bool, errno syscall.Errno) {
	if match == nil {
		panic("match is nil")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.rules = append(c.rules, chaosRule{op: op, match: match, errno: errno})
}

// FailPath makes op return errno for exactly path.
func (c *Chaos) FailPath(op Op, path string, errno syscall.Errno) {
	c.Fail(op, func(p string) bool { return p == path }, errno)
}

// Reset removes all rules. Fault counters are kept.
func (c *Chaos) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rules = nil
}

// Faults returns how many times op was failed by a rule.
func (c *Chaos) Faults(op Op) int64 {
	if op >= opCount {
		return 0
	}

	return c.faults[op].Load()
}

func (c *Chaos) check(op Op, path string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, r := range c.rules {
		if r.op == op && r.match(path) {
			c.faults[op].Add(1)

			pathErr := &os.PathError{Op: op.String(), Path: path, Err: r.errno}
			markInjectedPathError(pathErr)

			return pathErr
		}
	}

	return nil
}

func (c *Chaos) ReadFile(path string) ([]byte, error) {
	if err := c.check(OpReadFile, path); err != nil {
		return nil, err
	}

	return c.fs.ReadFile(path)
}

func (c *Chaos) WriteFile(path string, data []byte, perm os.FileMode) error {
	if err := c.check(OpWriteFile, path); err != nil {
		return err
	}

	return c.fs.WriteFile(path, data, perm)
}

func (c *Chaos) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if err := c.check(OpWriteFileAtomic, path); err != nil {
		return err
	}

	return c.fs.WriteFileAtomic(path, data, perm)
}

func (c *Chaos) ReadDir(path string) ([]os.DirEntry, error) {
	if err := c.check(OpReadDir, path); err != nil {
		return nil, err
	}

	return c.fs.ReadDir(path)
}

func (c *Chaos) MkdirAll(path string, perm os.FileMode) error {
	if err := c.check(OpMkdirAll, path); err != nil {
		return err
	}

	return c.fs.MkdirAll(path, perm)
}

func (c *Chaos) Stat(path string) (os.FileInfo, error) {
	if err := c.check(OpStat, path); err != nil {
		return nil, err
	}

	return c.fs.Stat(path)
}

func (c *Chaos) Remove(path string) error {
	if err := c.check(OpRemove, path); err != nil {
		return err
	}

	return c.fs.Remove(path)
}

func (c *Chaos) TryLock(path string) (Locker, error) {
	if err := c.check(OpTryLock, path); err != nil {
		return nil, err
	}

	return c.fs.TryLock(path)
}

// Compile-time interface check.
var _ FS = (*Chaos)(nil)
