package diskcache

import "errors"

// Sentinel errors returned by diskcache operations.
//
// Callers should use [errors.Is] to check error types:
//
//	if errors.Is(err, diskcache.ErrNotConnected) {
//	    // call Start first
//	}
var (
	// ErrConfig indicates invalid construction options or an unusable
	// cache root (missing, not a directory, failed write probe).
	//
	// Fatal: fix the configuration. Never retried automatically.
	ErrConfig = errors.New("diskcache: invalid configuration")

	// ErrValidation indicates a malformed key or segment name.
	//
	// The operation was aborted before any I/O. This is a programming error.
	ErrValidation = errors.New("diskcache: invalid input")

	// ErrNotConnected indicates an operation on a store that is not started.
	ErrNotConnected = errors.New("diskcache: not connected")

	// ErrIO indicates a filesystem failure other than not-found, such as
	// permission denied or a hardware error.
	ErrIO = errors.New("diskcache: io")

	// ErrCorrupt indicates a record file that could not be decoded.
	//
	// Store operations never return it: corrupt records are deleted and
	// reported as misses. It surfaces in logs and from the codec.
	ErrCorrupt = errors.New("diskcache: corrupt record")

	// ErrSerialization indicates an item that cannot be encoded.
	//
	// Nothing was written.
	ErrSerialization = errors.New("diskcache: cannot serialize item")

	// ErrSweepBusy indicates another store instance is sweeping the same root.
	//
	// Transient: the next scheduled sweep will try again.
	ErrSweepBusy = errors.New("diskcache: sweep busy")
)
