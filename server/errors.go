package server

import "github.com/juju/errors"

var (
	// ErrCapacity is returned by Registry.Register when the channel already
	// holds the maximum number of connections.
	ErrCapacity = errors.New("channel is full")

	// ErrConnClosed is returned when sending to a connection that is not
	// open.
	ErrConnClosed = errors.New("connection is not open")

	// ErrQueueFull is returned when a recipient cannot keep up. The
	// recipient is closed.
	ErrQueueFull = errors.New("send queue full")
)
