package realtime

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrijs2005/lentik/internal/logging"
)

// Conn is one registered duplex connection. Send must not block; an error
// means the connection is dead and will be pruned. Close must be idempotent.
//
// UserID and FamilyID name who opened the connection and which family it is
// scoped to; for a chat connection that is the family owning the chat.
type Conn interface {
	Send(payload []byte) error
	Close() error
	UserID() string
	FamilyID() string
}

// Registry is a concurrency-safe room key -> connection set mapping.
// Empty rooms are removed as soon as their last connection leaves.
type Registry struct {
	name   string
	mu     sync.RWMutex
	rooms  map[string]map[Conn]struct{}
	logger logging.Logger
}

func NewRegistry(name string, logger logging.Logger) *Registry {
	return &Registry{
		name:   name,
		rooms:  make(map[string]map[Conn]struct{}),
		logger: logger.With("registry", name),
	}
}

// Join adds c to room. Joining twice is a no-op.
func (r *Registry) Join(room string, c Conn) {
	r.mu.Lock()
	set, ok := r.rooms[room]
	if !ok {
		set = make(map[Conn]struct{})
		r.rooms[room] = set
	}
	set[c] = struct{}{}
	n := len(set)
	r.mu.Unlock()

	r.logger.Debug(context.Background(), "joined", "room", room, "connections", n)
}

// Leave removes c from room, dropping the room once it is empty. Leaving a
// room c is not in is a no-op.
func (r *Registry) Leave(room string, c Conn) {
	r.mu.Lock()
	removed := r.removeLocked(room, c)
	r.mu.Unlock()

	if removed {
		r.logger.Debug(context.Background(), "left", "room", room)
	}
}

func (r *Registry) removeLocked(room string, c Conn) bool {
	set, ok := r.rooms[room]
	if !ok {
		return false
	}
	if _, ok := set[c]; !ok {
		return false
	}
	delete(set, c)
	if len(set) == 0 {
		delete(r.rooms, room)
	}
	return true
}

// Broadcast sends payload to every connection in room at the time of the
// call and returns how many accepted it. Connections whose Send fails are
// removed and closed once every recipient has been tried. Broadcast never
// fails from the caller's point of view.
func (r *Registry) Broadcast(ctx context.Context, room string, payload []byte) int {
	targets := r.snapshot(room)
	if len(targets) == 0 {
		return 0
	}

	var failed []Conn
	for _, c := range targets {
		if err := c.Send(payload); err != nil {
			r.logger.Warn(ctx, "delivery failed", "room", room, "error", err)
			failed = append(failed, c)
		}
	}

	r.removeFailed(ctx, room, failed)
	return len(targets) - len(failed)
}

func (r *Registry) snapshot(room string) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.rooms[room]
	conns := make([]Conn, 0, len(set))
	for c := range set {
		conns = append(conns, c)
	}
	return conns
}

func (r *Registry) removeFailed(ctx context.Context, room string, failed []Conn) {
	if len(failed) == 0 {
		return
	}

	r.mu.Lock()
	for _, c := range failed {
		r.removeLocked(room, c)
	}
	r.mu.Unlock()

	// close outside the lock; Close may touch the network
	for _, c := range failed {
		_ = c.Close()
	}
	r.logger.Info(ctx, "pruned dead connections", "room", room, "count", len(failed))
}

// Evict removes every connection for which match returns true, from every
// room, and closes it. It returns how many were evicted.
func (r *Registry) Evict(ctx context.Context, match func(Conn) bool) int {
	var evicted []Conn

	r.mu.Lock()
	for room, set := range r.rooms {
		for c := range set {
			if match(c) {
				evicted = append(evicted, c)
				delete(set, c)
			}
		}
		if len(set) == 0 {
			delete(r.rooms, room)
		}
	}
	r.mu.Unlock()

	for _, c := range evicted {
		_ = c.Close()
	}
	if len(evicted) > 0 {
		r.logger.Info(ctx, "evicted connections", "count", len(evicted))
	}
	return len(evicted)
}

// Len returns the number of connections in room.
func (r *Registry) Len(room string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[room])
}

// Contains reports whether c is registered in room.
func (r *Registry) Contains(room string, c Conn) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[room][c]
	return ok
}

// Rooms returns the keys of all non-empty rooms, sorted.
func (r *Registry) Rooms() []string {
	r.mu.RLock()
	keys := make([]string, 0, len(r.rooms))
	for k := range r.rooms {
		keys = append(keys, k)
	}
	r.mu.RUnlock()

	sort.Strings(keys)
	return keys
}

// CloseAll closes every registered connection. Connections leave their rooms
// through their own handlers as they shut down.
func (r *Registry) CloseAll() {
	r.mu.RLock()
	var all []Conn
	for _, set := range r.rooms {
		for c := range set {
			all = append(all, c)
		}
	}
	r.mu.RUnlock()

	for _, c := range all {
		_ = c.Close()
	}
}
