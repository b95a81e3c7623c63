package diskcache

import (
	"fmt"
	"strings"
)

// Key addresses a cache entry.
type Key struct {
	// Segment is the namespace the entry belongs to. It becomes a directory
	// under the cache root. Must be non-empty and free of NUL bytes.
	//
	// Segment is joined into the path as is: separators nest it deeper, and
	// ".." elements can resolve outside the root, where the sweeper never
	// looks. Callers taking segment names from untrusted input must
	// constrain them.
	Segment string `json:"segment"`

	// ID identifies the entry within its segment. Any string is valid,
	// including the empty string.
	ID string `json:"id"`
}

// ValidateSegmentName reports whether name can be used as a [Key.Segment].
// Returns an error wrapping [ErrValidation] for an empty name or a name
// containing a NUL byte, nil otherwise.
func ValidateSegmentName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty segment name", ErrValidation)
	}

	if strings.IndexByte(name, 0) >= 0 {
		return fmt.Errorf("%w: segment name %q contains a NUL byte", ErrValidation, name)
	}

	return nil
}

func validateKey(key Key) error {
	err := ValidateSegmentName(key.Segment)
	if err != nil {
		return fmt.Errorf("key: %w", err)
	}

	return nil
}
