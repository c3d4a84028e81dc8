package server

import (
	"sync"

	"github.com/juju/errors"
	"github.com/sigrelay/sigrelay/server/identifiers"
)

// Registry tracks the peers of a single channel.
type Registry struct {
	capacity int

	peersMu sync.RWMutex
	peers   map[identifiers.ConnID]Peer
}

// NewRegistry creates a registry holding at most capacity peers. Zero means
// unlimited.
func NewRegistry(capacity int) *Registry {
	return &Registry{
		capacity: capacity,
		peers:    map[identifiers.ConnID]Peer{},
	}
}

func (r *Registry) Register(peer Peer) error {
	r.peersMu.Lock()
	defer r.peersMu.Unlock()

	id := peer.ID()

	if _, ok := r.peers[id]; ok {
		return errors.AlreadyExistsf("peer: %s", id)
	}

	if r.capacity > 0 && len(r.peers) >= r.capacity {
		return errors.Annotatef(ErrCapacity, "register peer: %s (capacity %d)", id, r.capacity)
	}

	r.peers[id] = peer

	return nil
}

// Unregister removes the peer and reports whether it was registered. Calling
// it more than once is safe.
func (r *Registry) Unregister(id identifiers.ConnID) bool {
	r.peersMu.Lock()
	defer r.peersMu.Unlock()

	_, ok := r.peers[id]
	delete(r.peers, id)

	return ok
}

// ForEachOther calls fn for every registered peer except sender and returns
// the number of calls. Peers that are not open when their turn comes are
// skipped. fn is called without holding the lock so it may unregister peers.
func (r *Registry) ForEachOther(sender identifiers.ConnID, fn func(peer Peer)) int {
	count := 0

	for _, peer := range r.snapshot() {
		if peer.ID() == sender || peer.State() != ConnStateOpen {
			continue
		}

		fn(peer)

		count++
	}

	return count
}

func (r *Registry) snapshot() []Peer {
	r.peersMu.RLock()
	defer r.peersMu.RUnlock()

	peers := make([]Peer, 0, len(r.peers))

	for _, peer := range r.peers {
		peers = append(peers, peer)
	}

	return peers
}

func (r *Registry) Size() int {
	r.peersMu.RLock()
	defer r.peersMu.RUnlock()

	return len(r.peers)
}

// Connections returns the labels of all registered peers.
func (r *Registry) Connections() map[identifiers.ConnID]identifiers.Label {
	r.peersMu.RLock()
	defer r.peersMu.RUnlock()

	ret := make(map[identifiers.ConnID]identifiers.Label, len(r.peers))

	for id, peer := range r.peers {
		ret[id] = peer.Label()
	}

	return ret
}
