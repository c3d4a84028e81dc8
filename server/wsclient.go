package server

import (
	"context"
	"sync"
	"time"

	"github.com/juju/errors"
	"github.com/sigrelay/sigrelay/server/identifiers"
	"github.com/sigrelay/sigrelay/server/logger"
	"nhooyr.io/websocket"
)

type ConnState int

const (
	ConnStateConnecting ConnState = iota
	ConnStateOpen
	ConnStateClosing
	ConnStateClosed
)

func (s ConnState) String() string {
	switch s {
	case ConnStateConnecting:
		return "connecting"
	case ConnStateOpen:
		return "open"
	case ConnStateClosing:
		return "closing"
	case ConnStateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Frame is a single websocket message. The relay never modifies Data.
type Frame struct {
	Type websocket.MessageType
	Data []byte
}

func NewTextFrame(data string) Frame {
	return Frame{
		Type: websocket.MessageText,
		Data: []byte(data),
	}
}

// Peer is a registered participant of a channel.
type Peer interface {
	ID() identifiers.ConnID
	Label() identifiers.Label
	State() ConnState

	// Open moves a connecting peer to the open state. The frames are queued
	// before anything else can be sent to the peer.
	Open(frames ...Frame) error

	// Send queues frame for delivery without blocking.
	Send(frame Frame) error
}

type WSReader interface {
	Read(ctx context.Context) (websocket.MessageType, []byte, error)
}

type WSWriter interface {
	Write(ctx context.Context, typ websocket.MessageType, msg []byte) error
	Ping(ctx context.Context) error
	Close(code websocket.StatusCode, reason string) error
}

type WSReadWriter interface {
	WSReader
	WSWriter
}

type ConnParams struct {
	ID      identifiers.ConnID
	Label   identifiers.Label
	Channel identifiers.ChannelID

	// QueueSize is the capacity of the outbound queue.
	QueueSize    int
	WriteTimeout time.Duration

	Log logger.Logger

	// OnClose is called once, right after the connection left the open
	// state.
	OnClose func()
}

// Conn wraps a single websocket. Outbound frames are queued and written by a
// dedicated goroutine so that a slow client never blocks the sender.
type Conn struct {
	params ConnParams
	ws     WSReadWriter
	log    logger.Logger

	createdAt time.Time

	stateMu     sync.Mutex
	state       ConnState
	closeStatus websocket.StatusCode
	closeReason string

	sendCh    chan Frame
	closeCh   chan struct{}
	closeOnce sync.Once
	doneCh    chan struct{}

	errMu sync.RWMutex
	err   error
}

var _ Peer = &Conn{}

// NewConn creates a new connection in the connecting state and starts its
// writer goroutine.
func NewConn(ws WSReadWriter, params ConnParams) *Conn {
	if params.QueueSize < 1 {
		params.QueueSize = DefaultSendQueueSize
	}

	if params.WriteTimeout <= 0 {
		params.WriteTimeout = DefaultWriteTimeout
	}

	if params.Log == nil {
		params.Log = logger.New()
	}

	c := &Conn{
		params:    params,
		ws:        ws,
		log:       params.Log.WithNamespaceAppended("conn"),
		createdAt: time.Now(),
		state:     ConnStateConnecting,
		sendCh:    make(chan Frame, params.QueueSize),
		closeCh:   make(chan struct{}),
		doneCh:    make(chan struct{}),
	}

	go c.writeLoop()

	return c
}

func (c *Conn) ID() identifiers.ConnID {
	return c.params.ID
}

func (c *Conn) Label() identifiers.Label {
	return c.params.Label
}

func (c *Conn) Channel() identifiers.ChannelID {
	return c.params.Channel
}

func (c *Conn) State() ConnState {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()

	return c.state
}

// Duration returns the time since the connection was accepted.
func (c *Conn) Duration() time.Duration {
	return time.Since(c.createdAt)
}

func (c *Conn) Open(frames ...Frame) error {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()

	if c.state != ConnStateConnecting {
		return errors.Annotatef(ErrConnClosed, "open in state %s", c.state)
	}

	c.state = ConnStateOpen

	for _, frame := range frames {
		select {
		case c.sendCh <- frame:
		default:
			c.log.Warn("Send queue full, dropping greeting", nil)
		}
	}

	return nil
}

func (c *Conn) Send(frame Frame) error {
	c.stateMu.Lock()

	if c.state != ConnStateOpen {
		c.stateMu.Unlock()

		return errors.Trace(ErrConnClosed)
	}

	select {
	case c.sendCh <- frame:
		c.stateMu.Unlock()

		return nil
	default:
	}

	c.stateMu.Unlock()

	c.Close(websocket.StatusPolicyViolation, "send queue full")

	return errors.Trace(ErrQueueFull)
}

// Close moves the connection to the closing state. It never blocks: the
// websocket is closed by the writer goroutine, after which the state becomes
// closed and Done is closed. Only the first call has any effect.
func (c *Conn) Close(status websocket.StatusCode, reason string) {
	closed := false

	c.closeOnce.Do(func() {
		c.stateMu.Lock()
		c.state = ConnStateClosing
		c.closeStatus = status
		c.closeReason = reason
		c.stateMu.Unlock()

		close(c.closeCh)

		closed = true
	})

	if closed && c.params.OnClose != nil {
		c.params.OnClose()
	}
}

// Done is closed after the underlying websocket was closed.
func (c *Conn) Done() <-chan struct{} {
	return c.doneCh
}

// Ping sends a websocket ping and waits for the pong. A concurrent reader
// (Subscribe) is required for the pong to be received.
func (c *Conn) Ping(ctx context.Context) error {
	return errors.Annotate(c.ws.Ping(ctx), "ping")
}

func (c *Conn) writeLoop() {
	defer close(c.doneCh)

	for {
		// Pending frames are discarded once the connection is closing.
		select {
		case <-c.closeCh:
			c.closeWS()

			return
		default:
		}

		select {
		case <-c.closeCh:
			c.closeWS()

			return
		case frame := <-c.sendCh:
			if err := c.write(frame); err != nil {
				c.setErr(err)
				c.Close(websocket.StatusInternalError, "write failed")
			}
		}
	}
}

func (c *Conn) write(frame Frame) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.params.WriteTimeout)
	defer cancel()

	err := c.ws.Write(ctx, frame.Type, frame.Data)

	return errors.Annotate(err, "write")
}

func (c *Conn) closeWS() {
	c.stateMu.Lock()
	status, reason := c.closeStatus, c.closeReason
	c.stateMu.Unlock()

	if err := c.ws.Close(status, reason); err != nil {
		c.log.Trace("Close websocket", logger.Ctx{
			"error": err.Error(),
		})
	}

	c.stateMu.Lock()
	c.state = ConnStateClosed
	c.stateMu.Unlock()
}

func (c *Conn) setErr(err error) {
	c.errMu.Lock()
	defer c.errMu.Unlock()

	if c.err == nil {
		c.err = err
	}
}

// Err returns the first read or write error.
func (c *Conn) Err() error {
	c.errMu.RLock()
	defer c.errMu.RUnlock()

	return c.err
}

// Subscribe reads frames until the websocket fails or ctx is done. The
// returned channel is closed afterwards and Err reports the cause.
func (c *Conn) Subscribe(ctx context.Context) <-chan Frame {
	frameCh := make(chan Frame)

	go func() {
		defer close(frameCh)

		for {
			typ, data, err := c.ws.Read(ctx)
			if err != nil {
				c.setErr(errors.Annotate(err, "read"))

				return
			}

			select {
			case frameCh <- Frame{Type: typ, Data: data}:
			case <-ctx.Done():
				c.setErr(errors.Annotate(ctx.Err(), "read"))

				return
			}
		}
	}()

	return frameCh
}
