package server

import (
	"context"
	"time"

	"github.com/sigrelay/sigrelay/server/clock"
)

type PingerParams struct {
	// Clock defaults to the real clock.
	Clock clock.Clock

	Interval time.Duration
	Timeout  time.Duration

	// Ping sends a ping and blocks until the pong arrives or ctx is done.
	Ping func(ctx context.Context) error

	// OnFailure is called once when a ping fails. The pinger stops
	// afterwards.
	OnFailure func(err error)
}

// Pinger sends pings to a client on a regular interval and reports the
// first ping that was not answered in time.
type Pinger struct {
	params PingerParams
	ticker clock.Ticker
	doneCh chan struct{}
}

// NewPinger creates a new instance of Pinger and starts its event loop,
// which runs until ctx is done or a ping fails.
func NewPinger(ctx context.Context, params PingerParams) *Pinger {
	if params.Clock == nil {
		params.Clock = clock.New()
	}

	p := &Pinger{
		params: params,
		ticker: params.Clock.NewTicker(params.Interval),
		doneCh: make(chan struct{}),
	}

	go p.run(ctx)

	return p
}

// run is the main event loop.
func (p *Pinger) run(ctx context.Context) {
	defer close(p.doneCh)
	defer p.ticker.Stop()

	for {
		select {
		case <-p.ticker.C():
			if err := p.ping(ctx); err != nil {
				if ctx.Err() == nil {
					p.params.OnFailure(err)
				}

				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (p *Pinger) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.params.Timeout)
	defer cancel()

	return p.params.Ping(ctx)
}

// Done is closed when the event loop exits.
func (p *Pinger) Done() <-chan struct{} {
	return p.doneCh
}
