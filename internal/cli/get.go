package cli

import (
	"context"
	"fmt"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/diskcache/pkg/diskcache"
)

// GetCmd returns the get command.
func GetCmd(sess *session) *Command {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	meta := fs.BoolP("meta", "m", false, "Also print stored time and remaining ttl")

	return &Command{
		Flags: fs,
		Usage: "get <segment> <id> [--meta]",
		Short: "Print a cached item",
		Long: `Print the JSON item stored under <segment>/<id>.

Exits 1 with "not found" when there is no live entry. Expired and corrupt
records count as not found and are deleted.`,
		Args:    2,
		MaxArgs: 2,
		Exec: func(ctx context.Context, io *IO, args []string) error {
			return execGet(ctx, io, sess, args, *meta)
		},
	}
}

func execGet(ctx context.Context, io *IO, sess *session, args []string, meta bool) error {
	store, err := sess.open(ctx)
	if err != nil {
		return err
	}

	key := diskcache.Key{Segment: args[0], ID: args[1]}

	entry, found, err := store.Get(ctx, key)
	if err != nil {
		return err
	}

	if !found {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, key.Segment, key.ID)
	}

	io.Println(string(entry.Item))

	if meta {
		io.Println("stored=" + entry.Stored.UTC().Format(time.RFC3339Nano))
		io.Println("ttl=" + entry.TTL.String())
	}

	return nil
}
