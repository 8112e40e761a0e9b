package gossip

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Hub connects peers living in one process. Delivery is asynchronous and
// per-peer FIFO.
type Hub struct {
	mu    sync.RWMutex
	peers map[string]*Peer
}

func NewHub() *Hub {
	return &Hub{peers: make(map[string]*Peer)}
}

// Join registers a started peer for backend under id, replacing any peer
// with the same id.
func (h *Hub) Join(id string, backend Backend, log logrus.FieldLogger) *Peer {
	p := newPeer(id, h, backend, log)
	h.mu.Lock()
	h.peers[id] = p
	h.mu.Unlock()
	p.Start()
	return p
}

// Peers returns the ids of the joined peers.
func (h *Hub) Peers() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]string, 0, len(h.peers))
	for id := range h.peers {
		ids = append(ids, id)
	}
	return ids
}

func (h *Hub) leave(id string) {
	h.mu.Lock()
	delete(h.peers, id)
	h.mu.Unlock()
}

func (h *Hub) broadcast(from string, raw []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, p := range h.peers {
		if id != from {
			p.Deliver(from, raw)
		}
	}
}

func (h *Hub) send(from, to string, raw []byte) bool {
	h.mu.RLock()
	p, ok := h.peers[to]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	return p.Deliver(from, raw)
}
