package fs

import (
	"errors"
	iofs "io/fs"
	"sync"
)

// IsInjected reports whether err (or any wrapped error) was injected by [Chaos].
// Returns false if err is nil.
func IsInjected(err error) bool {
	if err == nil {
		return false
	}

	var pathErr *iofs.PathError
	if errors.As(err, &pathErr) {
		_, ok := injectedPathErrors.Load(pathErr)

		return ok
	}

	return false
}

// --- Private api ---

var injectedPathErrors sync.Map // map[*fs.PathError]struct{}

// markInjectedPathError registers a PathError as injected. Panics if err is nil.
func markInjectedPathError(err *iofs.PathError) {
	if err == nil {
		panic("err is nil")
	}

	injectedPathErrors.Store(err, struct{}{})
}
