package ws

import (
	"sync"

	"github.com/HovhannisyanAlbert/chatServer/pkg/metrics"
)

// Conn is one subscriber as the hub sees it. Send must never block: it
// enqueues best-effort and reports whether the payload was accepted.
type Conn interface {
	Send(payload []byte) bool
	Close() error
	ID() string
}

// Hub is the broadcast registry: group key -> set of live connections.
// Join/Leave are idempotent; Send fans out to the membership snapshot taken
// at call time.
type Hub struct {
	mu     sync.RWMutex
	groups map[string]map[Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{groups: make(map[string]map[Conn]struct{})}
}

// Join subscribes c to group. Joining a group the connection is already in is
// a no-op.
func (h *Hub) Join(group string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	gs, ok := h.groups[group]
	if !ok {
		gs = make(map[Conn]struct{})
		h.groups[group] = gs
	}
	gs[c] = struct{}{}
}

// Leave unsubscribes c from group. Leaving a group the connection is not in
// is a no-op; empty groups are pruned.
func (h *Hub) Leave(group string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if gs, ok := h.groups[group]; ok {
		delete(gs, c)
		if len(gs) == 0 {
			delete(h.groups, group)
		}
	}
}

// Send delivers payload to every connection joined to group at the moment of
// the call. Delivery is best-effort and at-most-once per connection; a slow
// or dead peer costs a dropped payload, never a blocked sender. Returns the
// number of accepted deliveries.
func (h *Hub) Send(group string, payload []byte) int {
	h.mu.RLock()
	conns := make([]Conn, 0, len(h.groups[group]))
	for c := range h.groups[group] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	sent := 0
	for _, c := range conns {
		metrics.BroadcastFanout.Inc()
		if c.Send(payload) {
			sent++
		}
	}
	return sent
}

// GroupSize reports the current membership of a group.
func (h *Hub) GroupSize(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}
