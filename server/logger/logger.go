package logger

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Logger is a namespaced, leveled logger with structured context.
type Logger interface {
	Factory

	// Level returns the level configured for this logger's namespace.
	Level() Level

	Namespace() string

	// IsLevelEnabled returns true when messages at level would be written.
	IsLevelEnabled(level Level) bool

	Trace(message string, ctx Ctx) (int, error)
	Debug(message string, ctx Ctx) (int, error)
	Info(message string, ctx Ctx) (int, error)
	Warn(message string, ctx Ctx) (int, error)

	// Error adds a log entry with level error. When err is set its
	// description is appended to the message.
	Error(message string, err error, ctx Ctx) (int, error)
}

// Factory derives new loggers. None of the methods modify the receiver.
type Factory interface {
	Ctx() Ctx
	WithCtx(Ctx) Logger
	WithFormatter(Formatter) Logger
	WithWriter(io.Writer) Logger
	WithNamespace(namespace string) Logger

	// WithNamespaceAppended returns a new Logger whose namespace is the
	// current one followed by a colon and namespace.
	WithNamespaceAppended(namespace string) Logger

	// WithConfig returns a new Logger with config set. A nil config is
	// ignored.
	WithConfig(config Config) Logger
}

type logger struct {
	config    Config
	ctx       Ctx
	formatter Formatter
	namespace string
	writer    io.Writer
}

var _ Logger = &logger{}

// New returns a disabled Logger writing to stderr. Use WithConfig to enable
// levels for namespaces.
func New() Logger {
	return &logger{
		config:    LevelDisabled,
		formatter: NewStringFormatter(StringFormatterParams{}),
		writer:    os.Stderr,
	}
}

// NewFromEnv returns a Logger configured from the environment variable key,
// in the format understood by NewConfigFromString.
func NewFromEnv(key string) Logger {
	return New().WithConfig(NewConfigFromString(os.Getenv(key)))
}

func (l *logger) clone(modify func(c *logger)) Logger {
	c := *l
	modify(&c)

	return &c
}

func (l *logger) Ctx() Ctx {
	return l.ctx
}

func (l *logger) WithCtx(ctx Ctx) Logger {
	return l.clone(func(c *logger) { c.ctx = l.ctx.WithCtx(ctx) })
}

func (l *logger) WithFormatter(formatter Formatter) Logger {
	return l.clone(func(c *logger) { c.formatter = formatter })
}

func (l *logger) WithWriter(writer io.Writer) Logger {
	return l.clone(func(c *logger) { c.writer = writer })
}

func (l *logger) WithNamespace(namespace string) Logger {
	return l.clone(func(c *logger) { c.namespace = namespace })
}

func (l *logger) WithNamespaceAppended(namespace string) Logger {
	if l.namespace != "" {
		namespace = l.namespace + ":" + namespace
	}

	return l.WithNamespace(namespace)
}

func (l *logger) WithConfig(config Config) Logger {
	if config == nil {
		return l
	}

	return l.clone(func(c *logger) { c.config = config })
}

func (l *logger) Namespace() string {
	return l.namespace
}

func (l *logger) Level() Level {
	return l.config.LevelForNamespace(l.namespace)
}

func (l *logger) IsLevelEnabled(level Level) bool {
	configured := l.Level()

	return configured > LevelDisabled && level <= configured
}

func (l *logger) Trace(message string, ctx Ctx) (int, error) {
	return l.log(LevelTrace, message, ctx)
}

func (l *logger) Debug(message string, ctx Ctx) (int, error) {
	return l.log(LevelDebug, message, ctx)
}

func (l *logger) Info(message string, ctx Ctx) (int, error) {
	return l.log(LevelInfo, message, ctx)
}

func (l *logger) Warn(message string, ctx Ctx) (int, error) {
	return l.log(LevelWarn, message, ctx)
}

func (l *logger) Error(message string, err error, ctx Ctx) (int, error) {
	if err != nil {
		if message != "" {
			message = fmt.Sprintf("%s: %+v", message, err)
		} else {
			message = fmt.Sprintf("%+v", err)
		}
	}

	return l.log(LevelError, message, ctx)
}

func (l *logger) log(level Level, body string, ctx Ctx) (int, error) {
	if !l.IsLevelEnabled(level) {
		return 0, nil
	}

	formatted, err := l.formatter.Format(Message{
		Timestamp: time.Now(),
		Namespace: l.namespace,
		Level:     level,
		Body:      body,
		Ctx:       l.ctx.WithCtx(ctx),
	})
	if err != nil {
		return 0, fmt.Errorf("log format error: %w", err)
	}

	i, err := l.writer.Write(formatted)
	if err != nil {
		return i, fmt.Errorf("log write error: %w", err)
	}

	return i, nil
}
