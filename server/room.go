package server

import (
	"sync"

	"github.com/sigrelay/sigrelay/server/identifiers"
)

type NewRelayFunc func(channel identifiers.ChannelID) *Relay

type relayCounter struct {
	count uint64
	relay *Relay
}

// ChannelManager creates a Relay for a channel on the first Enter and drops
// it after the last Exit.
type ChannelManager struct {
	channels   map[identifiers.ChannelID]*relayCounter
	channelsMu sync.RWMutex
	newRelay   NewRelayFunc
}

func NewChannelManager(newRelay NewRelayFunc) *ChannelManager {
	return &ChannelManager{
		channels: map[identifiers.ChannelID]*relayCounter{},
		newRelay: newRelay,
	}
}

func (m *ChannelManager) Enter(channel identifiers.ChannelID) (relay *Relay, isNew bool) {
	m.channelsMu.Lock()
	defer m.channelsMu.Unlock()

	rc, ok := m.channels[channel]
	if ok {
		rc.count++
	} else {
		isNew = true
		rc = &relayCounter{
			count: 1,
			relay: m.newRelay(channel),
		}
		m.channels[channel] = rc

		prometheusRelayChannelsActive.Inc()
	}

	return rc.relay, isNew
}

func (m *ChannelManager) Exit(channel identifiers.ChannelID) (isRemoved bool) {
	m.channelsMu.Lock()
	defer m.channelsMu.Unlock()

	rc, ok := m.channels[channel]
	if ok {
		rc.count--
		if rc.count == 0 {
			isRemoved = true

			delete(m.channels, channel)

			prometheusRelayChannelsActive.Dec()
		}
	}

	return isRemoved
}

func (m *ChannelManager) Size() int {
	m.channelsMu.RLock()
	defer m.channelsMu.RUnlock()

	return len(m.channels)
}

// Snapshot returns the registered connections of every channel, keyed by
// channel name.
func (m *ChannelManager) Snapshot() map[string]map[identifiers.ConnID]identifiers.Label {
	m.channelsMu.RLock()
	relays := make([]*Relay, 0, len(m.channels))

	for _, rc := range m.channels {
		relays = append(relays, rc.relay)
	}
	m.channelsMu.RUnlock()

	ret := make(map[string]map[identifiers.ConnID]identifiers.Label, len(relays))

	for _, relay := range relays {
		ret[relay.Channel().String()] = relay.Connections()
	}

	return ret
}
