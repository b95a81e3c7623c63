package cli

import (
	"context"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/diskcache/pkg/diskcache"
)

// CheckSegmentCmd returns the check-segment command.
func CheckSegmentCmd() *Command {
	return &Command{
		Flags:   flag.NewFlagSet("check-segment", flag.ContinueOnError),
		Usage:   "check-segment <name>",
		Short:   "Check that a segment name is usable",
		Args:    1,
		MaxArgs: 1,
		Exec: func(_ context.Context, io *IO, args []string) error {
			err := diskcache.ValidateSegmentName(args[0])
			if err != nil {
				return err
			}

			io.Println("ok")

			return nil
		},
	}
}
