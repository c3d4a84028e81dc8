package server_test

import (
	"context"
	"io"
	"sync"

	"github.com/juju/errors"
	"github.com/sigrelay/sigrelay/server"
	"github.com/sigrelay/sigrelay/server/identifiers"
	"nhooyr.io/websocket"
)

type mockPeer struct {
	id    identifiers.ConnID
	label identifiers.Label

	mu      sync.Mutex
	state   server.ConnState
	frames  []server.Frame
	sendErr error
	onSend  func()
}

var _ server.Peer = &mockPeer{}

func newMockPeer(id string, label string) *mockPeer {
	return &mockPeer{
		id:    identifiers.ConnID(id),
		label: identifiers.Label(label),
		state: server.ConnStateConnecting,
	}
}

func (p *mockPeer) ID() identifiers.ConnID {
	return p.id
}

func (p *mockPeer) Label() identifiers.Label {
	return p.label
}

func (p *mockPeer) State() server.ConnState {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.state
}

func (p *mockPeer) setState(state server.ConnState) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state = state
}

func (p *mockPeer) Open(frames ...server.Frame) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != server.ConnStateConnecting {
		return errors.Trace(server.ErrConnClosed)
	}

	p.state = server.ConnStateOpen
	p.frames = append(p.frames, frames...)

	return nil
}

func (p *mockPeer) Send(frame server.Frame) error {
	p.mu.Lock()
	onSend := p.onSend
	p.mu.Unlock()

	if onSend != nil {
		onSend()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.sendErr != nil {
		return p.sendErr
	}

	if p.state != server.ConnStateOpen {
		return errors.Trace(server.ErrConnClosed)
	}

	p.frames = append(p.frames, frame)

	return nil
}

func (p *mockPeer) received() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	ret := make([]string, 0, len(p.frames))

	for _, frame := range p.frames {
		ret = append(ret, string(frame.Data))
	}

	return ret
}

// fakeWS is an in-memory websocket. Frames pushed to in are returned by
// Read, frames written end up in out.
type fakeWS struct {
	in  chan server.Frame
	out chan server.Frame

	// block, when set, makes Write wait until it is closed or the write
	// times out.
	block chan struct{}

	pingErr error

	closeOnce sync.Once
	closed    chan struct{}

	mu          sync.Mutex
	closeStatus websocket.StatusCode
	closeReason string
}

func newFakeWS() *fakeWS {
	return &fakeWS{
		in:     make(chan server.Frame),
		out:    make(chan server.Frame, 100),
		closed: make(chan struct{}),
	}
}

var _ server.WSReadWriter = &fakeWS{}

func (f *fakeWS) Read(ctx context.Context) (websocket.MessageType, []byte, error) {
	select {
	case frame, ok := <-f.in:
		if !ok {
			return 0, nil, io.EOF
		}

		return frame.Type, frame.Data, nil
	case <-f.closed:
		return 0, nil, io.ErrClosedPipe
	case <-ctx.Done():
		return 0, nil, ctx.Err()
	}
}

func (f *fakeWS) Write(ctx context.Context, typ websocket.MessageType, msg []byte) error {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	select {
	case <-f.closed:
		return io.ErrClosedPipe
	default:
	}

	f.out <- server.Frame{Type: typ, Data: msg}

	return nil
}

func (f *fakeWS) Ping(ctx context.Context) error {
	return f.pingErr
}

func (f *fakeWS) Close(code websocket.StatusCode, reason string) error {
	f.closeOnce.Do(func() {
		f.mu.Lock()
		f.closeStatus = code
		f.closeReason = reason
		f.mu.Unlock()

		close(f.closed)
	})

	return nil
}

func (f *fakeWS) status() (websocket.StatusCode, string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.closeStatus, f.closeReason
}
