package cli

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"
)

// SweepCmd returns the sweep command.
func SweepCmd(sess *session) *Command {
	return &Command{
		Flags: flag.NewFlagSet("sweep", flag.ContinueOnError),
		Usage: "sweep",
		Short: "Delete expired and corrupt records now",
		Long: `Walk the cache root once and delete every expired or corrupt record.

Prints what was found. Records that could not be read or deleted are
reported as a warning and make the command exit 1.`,
		Exec: func(ctx context.Context, io *IO, _ []string) error {
			store, err := sess.open(ctx)
			if err != nil {
				return err
			}

			stats, err := store.Sweep(ctx)
			if err != nil {
				return err
			}

			io.Printf("scanned=%d live=%d expired=%d corrupt=%d failed=%d duration=%s\n",
				stats.Scanned, stats.Live, stats.Expired, stats.Corrupt, stats.Failed, stats.Duration)

			if stats.Failed > 0 {
				io.Warn(fmt.Sprintf("%d entries could not be swept", stats.Failed),
					"check permissions under "+store.Root()+" (run with -v for paths)")
			}

			return nil
		},
	}
}
