package cli

import (
	"context"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/diskcache/pkg/diskcache"
)

// DropCmd returns the drop command.
func DropCmd(sess *session) *Command {
	return &Command{
		Flags:   flag.NewFlagSet("drop", flag.ContinueOnError),
		Usage:   "drop <segment> <id>",
		Short:   "Remove an item",
		Long:    "Remove the record for <segment>/<id>. Dropping a missing item succeeds.",
		Args:    2,
		MaxArgs: 2,
		Exec: func(ctx context.Context, _ *IO, args []string) error {
			store, err := sess.open(ctx)
			if err != nil {
				return err
			}

			return store.Drop(ctx, diskcache.Key{Segment: args[0], ID: args[1]})
		},
	}
}
