package logger

import "time"

// Message is a single log entry handed to a Formatter.
type Message struct {
	Timestamp time.Time

	// Namespace is the full namespace of the Logger this message was sent to.
	Namespace string

	Level Level

	Body string

	Ctx Ctx
}
