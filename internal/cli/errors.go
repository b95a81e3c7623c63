package cli

import "errors"

// Error variables for CLI commands.
var (
	ErrMissingArgs  = errors.New("missing arguments")
	ErrTooManyArgs  = errors.New("too many arguments")
	ErrNotFound     = errors.New("not found")
	ErrInvalidJSON  = errors.New("item is not valid JSON")
	ErrTTLRequired  = errors.New("--ttl is required")
	ErrShellNesting = errors.New("shell cannot be started from the shell")
)
