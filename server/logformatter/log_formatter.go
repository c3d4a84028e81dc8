package logformatter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sigrelay/sigrelay/server/logger"
)

// Keys hoisted out of the context and printed in brackets before the body.
const (
	CtxKeyConnID  = "conn_id"
	CtxKeyChannel = "channel"
)

const (
	timeLayout     = "2006-01-02T15:04:05.000000Z07:00"
	namespaceWidth = 20
)

// LogFormatter formats log lines for the console. The connection id and
// channel, when present, are printed in front of the message so that lines
// of a single connection are easy to grep.
type LogFormatter struct{}

func New() *LogFormatter {
	return &LogFormatter{}
}

var _ logger.Formatter = &LogFormatter{}

func (f *LogFormatter) Format(message logger.Message) ([]byte, error) {
	ctx := message.Ctx

	keys := make([]string, 0, len(ctx))

	for k := range ctx {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	var (
		b      strings.Builder
		prefix string
	)

	connID, hasConnID := ctx[CtxKeyConnID]
	channel, hasChannel := ctx[CtxKeyChannel]

	switch {
	case hasConnID && hasChannel:
		prefix = fmt.Sprintf("[%v/%v] ", channel, connID)
	case hasConnID:
		prefix = fmt.Sprintf("[%v] ", connID)
	}

	for _, k := range keys {
		if prefix != "" && (k == CtxKeyConnID || k == CtxKeyChannel) {
			continue
		}

		b.WriteString(" ")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(fmt.Sprintf("%+v", ctx[k]))
	}

	namespace := message.Namespace

	if len(namespace) > namespaceWidth {
		namespace = namespace[len(namespace)-namespaceWidth:]
	}

	ret := fmt.Sprintf("%s %5s [%*s] %s%s%s\n",
		message.Timestamp.Format(timeLayout),
		message.Level,
		namespaceWidth,
		namespace,
		prefix,
		strings.TrimRight(message.Body, "\n"),
		b.String(),
	)

	return []byte(ret), nil
}
