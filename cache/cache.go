package cache

import (
	"sync"
	"time"

	"lab-server/entities"
)

type roomEntry struct {
	pcs      []entities.RoomPC
	loadedAt time.Time
}

// RoomCache keeps each room's PC list for a bounded time so that fan-out
// over every room does not hit the store once per room per broadcast.
type RoomCache struct {
	mu    sync.RWMutex
	rooms map[int]roomEntry // map[roomNumber]entry
	ttl   time.Duration
	now   func() time.Time
}

func NewRoomCache(ttl time.Duration) *RoomCache {
	return &RoomCache{
		rooms: make(map[int]roomEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get returns a copy of the cached list, or false when absent or expired.
func (rc *RoomCache) Get(room int) ([]entities.RoomPC, bool) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()

	entry, ok := rc.rooms[room]
	if !ok || rc.now().Sub(entry.loadedAt) >= rc.ttl {
		return nil, false
	}
	pcs := make([]entities.RoomPC, len(entry.pcs))
	copy(pcs, entry.pcs)
	return pcs, true
}

func (rc *RoomCache) Put(room int, pcs []entities.RoomPC) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	stored := make([]entities.RoomPC, len(pcs))
	copy(stored, pcs)
	rc.rooms[room] = roomEntry{pcs: stored, loadedAt: rc.now()}
}

// Invalidate drops every cached room.
func (rc *RoomCache) Invalidate() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.rooms = make(map[int]roomEntry)
}

// Stats returns the number of cached rooms and PCs.
func (rc *RoomCache) Stats() map[string]interface{} {
	rc.mu.RLock()
	defer rc.mu.RUnlock()

	total := 0
	for _, entry := range rc.rooms {
		total += len(entry.pcs)
	}
	return map[string]interface{}{
		"cached_rooms": len(rc.rooms),
		"cached_pcs":   total,
		"ttl_seconds":  rc.ttl.Seconds(),
	}
}
