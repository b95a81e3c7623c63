package cli

import (
	"context"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/diskcache/pkg/diskcache"
)

// WhereCmd returns the where command.
func WhereCmd(sess *session) *Command {
	return &Command{
		Flags:   flag.NewFlagSet("where", flag.ContinueOnError),
		Usage:   "where <segment> <id>",
		Short:   "Print the record path for a key",
		Long:    "Print the file a record for <segment>/<id> is stored at. Does not touch the disk.",
		Args:    2,
		MaxArgs: 2,
		Exec: func(_ context.Context, io *IO, args []string) error {
			err := diskcache.ValidateSegmentName(args[0])
			if err != nil {
				return err
			}

			io.Println(diskcache.RecordPath(sess.cfg.CachePathAbs, diskcache.Key{Segment: args[0], ID: args[1]}))

			return nil
		},
	}
}
