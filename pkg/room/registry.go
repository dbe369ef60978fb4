package room

import (
	"log/slog"
	"sync"
)

// Registry is the in-memory Broker. Membership changes take the write lock
// briefly; publishes share the read lock and hand payloads to subscriber
// queues outside any lock, so fan-out in one room never blocks another room
// and a slow consumer never stalls the publisher.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]map[Subscriber]struct{}
	log   *slog.Logger
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{rooms: make(map[string]map[Subscriber]struct{}), log: log}
}

func (r *Registry) Join(roomKey string, sub Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[roomKey]
	if !ok {
		members = make(map[Subscriber]struct{})
		r.rooms[roomKey] = members
	}
	members[sub] = struct{}{}
}

// Leave removes the subscriber. Idempotent: leaving twice, or leaving a room
// never joined, is a no-op.
func (r *Registry) Leave(roomKey string, sub Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[roomKey]
	if !ok {
		return
	}
	delete(members, sub)
	if len(members) == 0 {
		delete(r.rooms, roomKey)
	}
}

func (r *Registry) Publish(roomKey string, payload []byte) {
	r.mu.RLock()
	members := make([]Subscriber, 0, len(r.rooms[roomKey]))
	for sub := range r.rooms[roomKey] {
		members = append(members, sub)
	}
	r.mu.RUnlock()

	var dead []Subscriber
	for _, sub := range members {
		if !sub.Send(payload) {
			dead = append(dead, sub)
		}
	}

	// A full queue means the consumer stopped draining; evict it rather
	// than let it hold up the room. The grown-stale subscriber recovers by
	// reconnecting and fetching history.
	for _, sub := range dead {
		r.Leave(roomKey, sub)
		sub.Close()
		r.log.Warn("evicted slow subscriber", "room", roomKey)
	}
}

// MemberCount reports how many subscribers a room currently has.
func (r *Registry) MemberCount(roomKey string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[roomKey])
}
