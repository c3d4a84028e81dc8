// Package command is a small sub-command runner on top of pflag.
package command

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/juju/errors"
	"github.com/spf13/pflag"
)

var ErrCommandNotFound = errors.New("command not found")

// Handler is a command line handler. It receives the arguments left over
// after the command's own flags were parsed.
type Handler interface {
	Handle(ctx context.Context, args []string) error
}

type HandlerFunc func(ctx context.Context, args []string) error

func (h HandlerFunc) Handle(ctx context.Context, args []string) error {
	return h(ctx, args)
}

// FlagRegistry registers the flags of a command.
type FlagRegistry interface {
	RegisterFlags(cmd *Command, flags *pflag.FlagSet)
}

type FlagRegistryFunc func(cmd *Command, flags *pflag.FlagSet)

func (f FlagRegistryFunc) RegisterFlags(cmd *Command, flags *pflag.FlagSet) {
	f(cmd, flags)
}

// ArgsProcessor rewrites the arguments before they are parsed, for example
// to insert a default sub-command.
type ArgsProcessor interface {
	ProcessArgs(c *Command, args []string) []string
}

type ArgsProcessorFunc func(cmd *Command, args []string) []string

func (f ArgsProcessorFunc) ProcessArgs(cmd *Command, args []string) []string {
	return f(cmd, args)
}

type Command struct {
	params      Params
	subCommands map[string]*Command
	writer      io.Writer
}

type Params struct {
	Name             string
	Desc             string
	ArgsPreProcessor ArgsProcessor
	FlagRegistry     FlagRegistry
	Handler          Handler
	SubCommands      []*Command
}

func New(params Params) *Command {
	subCommands := make(map[string]*Command, len(params.SubCommands))

	for _, cmd := range params.SubCommands {
		subCommands[cmd.Name()] = cmd
	}

	c := &Command{
		params:      params,
		subCommands: subCommands,
	}

	c.SetWriter(os.Stderr)

	return c
}

// SetWriter sets the usage output of this command and all sub-commands.
func (c *Command) SetWriter(w io.Writer) {
	c.writer = w

	for _, s := range c.params.SubCommands {
		s.SetWriter(w)
	}
}

func (c *Command) Name() string {
	return c.params.Name
}

func (c *Command) Desc() string {
	return c.params.Desc
}

func (c *Command) Usage(flags *pflag.FlagSet) {
	var b bytes.Buffer

	flagUsages := flags.FlagUsages()

	b.WriteString("Usage: ")
	b.WriteString(c.params.Name)

	if flagUsages != "" {
		b.WriteString(" [OPTIONS]")
	}

	if len(c.params.SubCommands) > 0 {
		b.WriteString(" [COMMAND] [ARG...]")
	}

	b.WriteString("\n")
	b.WriteString(c.params.Desc)
	b.WriteString("\n")

	if flagUsages != "" {
		b.WriteString("\nOptions:\n")
		b.WriteString(flagUsages)
		b.WriteString("\n")
	}

	if len(c.params.SubCommands) > 0 {
		b.WriteString("\nCommands:\n")

		width := 12
		for _, s := range c.params.SubCommands {
			if l := len(s.Name()); l > width {
				width = l
			}
		}

		for _, s := range c.params.SubCommands {
			b.WriteString(fmt.Sprintf("  %-*s %s\n", width, s.Name(), s.Desc()))
		}

		b.WriteString("\n")
	}

	_, _ = b.WriteTo(c.writer)
}

func (c *Command) newFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet(c.Name(), pflag.ContinueOnError)

	flags.SetOutput(c.writer)
	flags.Usage = func() {
		c.Usage(flags)
	}

	// Stop at the first positional argument so that sub-command flags are left
	// for the sub-command.
	flags.SetInterspersed(false)

	if c.params.FlagRegistry != nil {
		c.params.FlagRegistry.RegisterFlags(c, flags)
	}

	return flags
}

// Exec parses args, runs the handler and then the sub-command named by the
// first leftover argument. The context is cancelled on SIGINT or SIGTERM.
func (c *Command) Exec(ctx context.Context, args []string) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if c.params.ArgsPreProcessor != nil {
		args = c.params.ArgsPreProcessor.ProcessArgs(c, args)
	}

	flags := c.newFlagSet()

	if err := flags.Parse(args); err != nil {
		return errors.Annotatef(err, "parse args for command: %s", c.params.Name)
	}

	args = flags.Args()

	if c.params.Handler != nil {
		if err := c.params.Handler.Handle(ctx, args); err != nil {
			return errors.Trace(err)
		}
	}

	if len(args) > 0 && args[0] == "--" {
		args = args[1:]
	}

	if len(args) == 0 || len(c.subCommands) == 0 {
		return nil
	}

	sub, ok := c.subCommands[args[0]]
	if !ok {
		return errors.Annotatef(ErrCommandNotFound, "command: %s", args[0])
	}

	return errors.Trace(sub.Exec(ctx, args[1:]))
}
