package memory

import (
	"context"
	"sync"

	"peercall/internal/core/domain"
	"peercall/internal/core/ports"
)

// roomCapacity is fixed: a call has exactly two participants.
const roomCapacity = 2

// MemoryRoomDirectory maps room identifiers to member sets. A single mutex
// guards the whole directory, which makes the capacity check-and-insert in
// Join atomic across concurrent joins to the same room. Contention is low:
// membership changes are rare next to message relay, which never locks here
// for longer than a map lookup.
type MemoryRoomDirectory struct {
	rooms map[domain.RoomID]map[domain.ConnID]struct{}
	mu    sync.RWMutex
}

func NewMemoryRoomDirectory() ports.RoomDirectory {
	return &MemoryRoomDirectory{
		rooms: make(map[domain.RoomID]map[domain.ConnID]struct{}),
	}
}

func (d *MemoryRoomDirectory) Join(ctx context.Context, room domain.RoomID, id domain.ConnID) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	members, exists := d.rooms[room]
	if !exists {
		d.rooms[room] = map[domain.ConnID]struct{}{id: {}}
		return 1, nil
	}

	if _, member := members[id]; member {
		return len(members), nil
	}
	if len(members) >= roomCapacity {
		return len(members), domain.ErrRoomFull
	}

	members[id] = struct{}{}
	return len(members), nil
}

func (d *MemoryRoomDirectory) Leave(ctx context.Context, room domain.RoomID, id domain.ConnID) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	members, exists := d.rooms[room]
	if !exists {
		return 0, nil
	}

	delete(members, id)
	if len(members) == 0 {
		delete(d.rooms, room)
	}
	return len(members), nil
}

func (d *MemoryRoomDirectory) Peers(ctx context.Context, room domain.RoomID, excluding domain.ConnID) ([]domain.ConnID, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	members, exists := d.rooms[room]
	if !exists {
		return nil, nil
	}

	peers := make([]domain.ConnID, 0, len(members))
	for id := range members {
		if id != excluding {
			peers = append(peers, id)
		}
	}
	return peers, nil
}

func (d *MemoryRoomDirectory) Exists(ctx context.Context, room domain.RoomID) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	_, exists := d.rooms[room]
	return exists
}

func (d *MemoryRoomDirectory) Rooms(ctx context.Context) int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.rooms)
}
