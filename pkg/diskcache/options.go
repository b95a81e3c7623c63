package diskcache

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/calvinalkan/diskcache/pkg/fs"
)

// DefaultCleanEvery is the sweep interval used by [DefaultOptions].
const DefaultCleanEvery = time.Hour

// Options configures a [Store].
type Options struct {
	// CachePath is the root directory holding all records.
	//
	// Required. It must already exist when [Store.Start] is called; the
	// store never creates it.
	CachePath string

	// CleanEvery is the interval between background sweeps.
	//
	// Zero disables sweeping; expired records are then only removed when
	// read. Must not be negative.
	CleanEvery time.Duration

	// FS is the filesystem records are stored on.
	//
	// Default: [fs.NewReal].
	FS fs.FS

	// Logger receives reclamation failures and sweep summaries.
	//
	// Default: discards everything.
	Logger *slog.Logger

	// Now returns the current time. Used for stored timestamps and expiry.
	//
	// Default: [time.Now].
	Now func() time.Time
}

// DefaultOptions returns options for cachePath with sweeping enabled at
// [DefaultCleanEvery].
func DefaultOptions(cachePath string) Options {
	return Options{
		CachePath:  cachePath,
		CleanEvery: DefaultCleanEvery,
	}
}

func (o Options) validate() error {
	if o.CachePath == "" {
		return fmt.Errorf("%w: cache path is required", ErrConfig)
	}

	if o.CleanEvery < 0 {
		return fmt.Errorf("%w: clean interval must not be negative, got %s", ErrConfig, o.CleanEvery)
	}

	return nil
}

func (o Options) withDefaults() Options {
	if o.FS == nil {
		o.FS = fs.NewReal()
	}

	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}

	if o.Now == nil {
		o.Now = time.Now
	}

	return o
}
