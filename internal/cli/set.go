package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/diskcache/pkg/diskcache"
)

// SetCmd returns the set command.
func SetCmd(sess *session) *Command {
	fs := flag.NewFlagSet("set", flag.ContinueOnError)
	ttl := fs.DurationP("ttl", "t", 0, "Time to live (e.g. 90s, 1h)")

	return &Command{
		Flags: fs,
		Usage: "set <segment> <id> <json|-> --ttl <d>",
		Short: "Store an item",
		Long: `Store a JSON item under <segment>/<id> for --ttl.

The item is the rest of the command line joined by spaces, or stdin when
it is "-". A --ttl of 0 or less removes any existing record.`,
		Args: 3,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if !fs.Changed("ttl") {
				return ErrTTLRequired
			}

			return execSet(ctx, o, sess, args, *ttl)
		},
	}
}

func execSet(ctx context.Context, o *IO, sess *session, args []string, ttl time.Duration) error {
	raw := []byte(strings.Join(args[2:], " "))

	if len(args) == 3 && args[2] == "-" {
		if o.in == nil {
			return fmt.Errorf("%w: no stdin", ErrInvalidJSON)
		}

		data, err := io.ReadAll(o.in)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}

		raw = bytes.TrimSpace(data)
	}

	if !json.Valid(raw) {
		return fmt.Errorf("%w: %q", ErrInvalidJSON, raw)
	}

	store, err := sess.open(ctx)
	if err != nil {
		return err
	}

	key := diskcache.Key{Segment: args[0], ID: args[1]}

	return store.Set(ctx, key, json.RawMessage(raw), ttl)
}
