package cli

import (
	"context"

	"github.com/juju/errors"
	"github.com/sigrelay/sigrelay/server/command"
	"github.com/sigrelay/sigrelay/server/logger"
)

type Props struct {
	Log     logger.Logger
	Version string
	Args    []string
}

// Exec runs the sigrelay command line with props.Args.
func Exec(ctx context.Context, props Props) error {
	err := NewRootCommand(props).Exec(ctx, props.Args)

	return errors.Trace(err)
}

func NewRootCommand(props Props) *command.Command {
	return command.New(command.Params{
		Name:             "sigrelay",
		Desc:             "sigrelay relays WebSocket signaling messages between browser peers.",
		ArgsPreProcessor: command.ArgsProcessorFunc(defaultToServer),
		SubCommands: []*command.Command{
			newServerCmd(props),
			newVersionCmd(props),
		},
	})
}

// defaultToServer runs the server command when no command was named, so that
// `sigrelay -c relay.yml` starts the relay. Help requests are left alone.
func defaultToServer(_ *command.Command, args []string) []string {
	if len(args) == 0 {
		return []string{"server"}
	}

	for _, arg := range args {
		if arg == "" || arg[0] != '-' {
			break
		}

		if arg == "-h" || arg == "--help" {
			return args
		}
	}

	if args[0] != "" && args[0][0] == '-' {
		return append([]string{"server"}, args...)
	}

	return args
}
