package main

import (
	"context"
	"os"

	"github.com/juju/errors"
	"github.com/sigrelay/sigrelay/server/cli"
	"github.com/sigrelay/sigrelay/server/logformatter"
	"github.com/sigrelay/sigrelay/server/logger"
	"github.com/sigrelay/sigrelay/server/multierr"
	"github.com/spf13/pflag"
)

const gitDescribe string = "v0.0.0"

func start(ctx context.Context, log logger.Logger, args []string) error {
	err := cli.Exec(ctx, cli.Props{
		Log:     log,
		Version: gitDescribe,
		Args:    args,
	})

	return errors.Trace(err)
}

func newLogger() logger.Logger {
	return logger.New().
		WithConfig(
			logger.NewConfig(logger.ConfigMap{
				"**:conn":  logger.LevelWarn,
				"**:relay": logger.LevelInfo,
				"**:ws":    logger.LevelInfo,
				"":         logger.LevelInfo,
			}),
		).
		WithConfig(logger.NewConfigFromString(os.Getenv("SIGRELAY_LOG"))).
		WithFormatter(logformatter.New()).
		WithNamespaceAppended("main")
}

func main() {
	log := newLogger()

	err := start(context.Background(), log, os.Args[1:])

	if multierr.Is(err, pflag.ErrHelp) {
		os.Exit(1)
	} else if err != nil {
		log.Error("Command error", errors.Trace(err), nil)
		os.Exit(1)
	}
}
