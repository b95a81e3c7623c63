package config

import "errors"

// Error variables for config loading.
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrCachePathEmpty     = errors.New("cache-path cannot be empty")
	ErrCleanEveryInvalid  = errors.New("clean-every must be a non-negative integer number of milliseconds")
)
