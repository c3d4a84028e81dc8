package server

import (
	"bytes"
	"encoding/json"

	"github.com/juju/errors"
	"github.com/sigrelay/sigrelay/server/identifiers"
	"github.com/sigrelay/sigrelay/server/logger"
	"nhooyr.io/websocket"
)

const (
	PresenceTypeJoin  = "relay_join"
	PresenceTypeLeave = "relay_leave"
)

// PresenceMessage is sent to the other peers of a channel when a peer joins
// or leaves and presence announcements are enabled.
type PresenceMessage struct {
	Type  string             `json:"type"`
	ID    identifiers.ConnID `json:"id"`
	Label identifiers.Label  `json:"label,omitempty"`
}

type RelayParams struct {
	Channel identifiers.ChannelID
	Config  RelayConfig
	Log     logger.Logger
}

// Relay forwards frames between the peers of one channel.
type Relay struct {
	channel  identifiers.ChannelID
	config   RelayConfig
	log      logger.Logger
	registry *Registry
}

func NewRelay(params RelayParams) *Relay {
	log := params.Log
	if log == nil {
		log = logger.New()
	}

	return &Relay{
		channel: params.Channel,
		config:  params.Config,
		log: log.WithNamespaceAppended("relay").WithCtx(logger.Ctx{
			"channel": params.Channel,
		}),
		registry: NewRegistry(params.Config.MaxChannelConnections),
	}
}

func (r *Relay) Channel() identifiers.ChannelID {
	return r.channel
}

// Join registers peer, opens it with the optional welcome message and
// announces it to the others. ErrCapacity is returned when the channel is
// full, in which case the peer stays unregistered.
func (r *Relay) Join(peer Peer) error {
	if err := r.registry.Register(peer); err != nil {
		return errors.Trace(err)
	}

	var greeting []Frame

	if r.config.SendWelcomeMessage {
		greeting = append(greeting, NewTextFrame(r.config.WelcomeMessage))
	}

	if err := peer.Open(greeting...); err != nil {
		r.registry.Unregister(peer.ID())

		return errors.Annotatef(err, "open peer: %s", peer.ID())
	}

	r.log.Trace("Join", logger.Ctx{
		"conn_id": peer.ID(),
		"label":   peer.Label(),
	})

	if r.config.AnnouncePresence {
		r.announce(peer, PresenceTypeJoin)
	}

	return nil
}

// Leave unregisters peer and reports whether it was still registered. It is
// safe to call more than once; the leave is only announced the first time.
func (r *Relay) Leave(peer Peer) bool {
	if !r.registry.Unregister(peer.ID()) {
		return false
	}

	r.log.Trace("Leave", logger.Ctx{
		"conn_id": peer.ID(),
		"label":   peer.Label(),
	})

	if r.config.AnnouncePresence {
		r.announce(peer, PresenceTypeLeave)
	}

	return true
}

func (r *Relay) announce(peer Peer, typ string) {
	data, err := json.Marshal(PresenceMessage{
		Type:  typ,
		ID:    peer.ID(),
		Label: peer.Label(),
	})
	if err != nil {
		r.log.Error("Marshal presence", errors.Trace(err), nil)

		return
	}

	r.deliver(peer, Frame{
		Type: websocket.MessageText,
		Data: data,
	}, "")
}

// Relay delivers frame to every other open peer of the channel and returns
// the number of successful deliveries. Frames from peers that are not open
// are dropped.
func (r *Relay) Relay(sender Peer, frame Frame) int {
	if sender.State() != ConnStateOpen {
		return 0
	}

	prometheusRelayFramesTotal.Inc()

	var to identifiers.Label

	if r.config.AddressedDelivery {
		to, _ = addressee(frame)
	}

	return r.deliver(sender, frame, to)
}

// deliver sends frame to all open peers other than sender, or only to those
// labeled to when it is set. A failed send closes that recipient and is
// otherwise ignored.
func (r *Relay) deliver(sender Peer, frame Frame, to identifiers.Label) int {
	delivered := 0

	r.registry.ForEachOther(sender.ID(), func(peer Peer) {
		if to != "" && peer.Label() != to {
			return
		}

		if err := peer.Send(frame); err != nil {
			prometheusRelayDeliveryFailuresTotal.Inc()

			r.log.Debug("Deliver", logger.Ctx{
				"conn_id":      sender.ID(),
				"recipient_id": peer.ID(),
				"error":        err.Error(),
			})

			return
		}

		delivered++
	})

	prometheusRelayDeliveriesTotal.Add(float64(delivered))

	return delivered
}

func (r *Relay) Size() int {
	return r.registry.Size()
}

func (r *Relay) Connections() map[identifiers.ConnID]identifiers.Label {
	return r.registry.Connections()
}

var toKey = []byte(`"to"`)

// addressee returns the value of the top level string field "to" of a JSON
// text frame.
func addressee(frame Frame) (identifiers.Label, bool) {
	if frame.Type != websocket.MessageText || !bytes.Contains(frame.Data, toKey) {
		return "", false
	}

	var msg struct {
		To *string `json:"to"`
	}

	if err := json.Unmarshal(frame.Data, &msg); err != nil || msg.To == nil || *msg.To == "" {
		return "", false
	}

	return identifiers.Label(*msg.To), true
}
