package logger

import (
	"fmt"
	"sort"
	"strings"
)

// Formatter turns a Message into the bytes written to the log writer.
type Formatter interface {
	Format(message Message) ([]byte, error)
}

// StringFormatter is the default Formatter. It writes one line per message:
// timestamp, level, namespace, body and the sorted context.
type StringFormatter struct {
	params StringFormatterParams
}

type StringFormatterParams struct {
	// DateLayout is passed to time.Time.Format. A layout without any
	// reference time components, like "-", prints as is.
	DateLayout string

	// DisableContextKeySorting prints context keys in map order.
	DisableContextKeySorting bool
}

var _ Formatter = &StringFormatter{}

func NewStringFormatter(params StringFormatterParams) *StringFormatter {
	if params.DateLayout == "" {
		params.DateLayout = "2006-01-02T15:04:05.000000Z07:00"
	}

	return &StringFormatter{
		params: params,
	}
}

// Format implements Formatter.
func (f *StringFormatter) Format(message Message) ([]byte, error) {
	keys := make([]string, 0, len(message.Ctx))

	for k := range message.Ctx {
		keys = append(keys, k)
	}

	if !f.params.DisableContextKeySorting {
		sort.Strings(keys)
	}

	var b strings.Builder

	for _, k := range keys {
		b.WriteString(" ")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(fmt.Sprintf("%+v", message.Ctx[k]))
	}

	ret := fmt.Sprintf("%s %5s [%20s] %s%s\n",
		message.Timestamp.Format(f.params.DateLayout),
		message.Level,
		message.Namespace,
		message.Body,
		b.String(),
	)

	return []byte(ret), nil
}
