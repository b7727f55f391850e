package memory

import (
	"context"
	"sync"

	"peercall/internal/core/domain"
	"peercall/internal/core/ports"
)

// MemoryConnectionRegistry keeps the live connection set in a process-local
// map. All state is process-lifetime scoped; nothing survives a restart.
type MemoryConnectionRegistry struct {
	conns map[domain.ConnID]*domain.Connection
	mu    sync.RWMutex
}

func NewMemoryConnectionRegistry() ports.ConnectionRegistry {
	return &MemoryConnectionRegistry{
		conns: make(map[domain.ConnID]*domain.Connection),
	}
}

func (r *MemoryConnectionRegistry) Register(ctx context.Context, id domain.ConnID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.conns[id]; exists {
		return domain.ErrConnectionExists
	}

	r.conns[id] = &domain.Connection{ID: id}
	return nil
}

func (r *MemoryConnectionRegistry) RoomOf(ctx context.Context, id domain.ConnID) (domain.RoomID, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, exists := r.conns[id]
	if !exists {
		return "", false, domain.ErrConnectionNotFound
	}

	return conn.RoomID, conn.Joined, nil
}

func (r *MemoryConnectionRegistry) AssignRoom(ctx context.Context, id domain.ConnID, room domain.RoomID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, exists := r.conns[id]
	if !exists {
		return domain.ErrConnectionNotFound
	}
	if conn.Joined {
		return domain.ErrAlreadyJoined
	}

	conn.RoomID = room
	conn.Joined = true
	return nil
}

func (r *MemoryConnectionRegistry) Unregister(ctx context.Context, id domain.ConnID) (domain.RoomID, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, exists := r.conns[id]
	if !exists {
		return "", false, domain.ErrConnectionNotFound
	}

	delete(r.conns, id)
	return conn.RoomID, conn.Joined, nil
}

func (r *MemoryConnectionRegistry) Count(ctx context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.conns)
}
