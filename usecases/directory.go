package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lab-server/cache"
	"lab-server/entities"
	"lab-server/repositories"
)

// DirectoryUseCase answers "which machine is PC n of room r". Rooms are a
// fixed configured set; each one is its own PC id namespace.
type DirectoryUseCase struct {
	repo  repositories.RoomPcRepository
	rooms []int
	valid map[int]bool
	cache *cache.RoomCache
}

const roomCacheTTL = 30 * time.Second

func NewDirectoryUseCase(repo repositories.RoomPcRepository, rooms []int) *DirectoryUseCase {
	valid := make(map[int]bool, len(rooms))
	for _, n := range rooms {
		valid[n] = true
	}
	return &DirectoryUseCase{
		repo:  repo,
		rooms: append([]int(nil), rooms...),
		valid: valid,
		cache: cache.NewRoomCache(roomCacheTTL),
	}
}

// CacheStats reports how much of the directory is served from memory.
func (uc *DirectoryUseCase) CacheStats() map[string]interface{} {
	return uc.cache.Stats()
}

func (uc *DirectoryUseCase) Rooms() []int {
	return append([]int(nil), uc.rooms...)
}

func (uc *DirectoryUseCase) ValidRoom(room int) bool {
	return uc.valid[room]
}

func (uc *DirectoryUseCase) Resolve(ctx context.Context, room int, pcID uint) (*entities.RoomPC, error) {
	if !uc.valid[room] {
		return nil, fmt.Errorf("%w: room %d does not exist", ErrNotFound, room)
	}
	pc, err := uc.repo.Get(ctx, room, pcID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: pc %d in room %d", ErrNotFound, pcID, room)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve pc %d in room %d: %w", pcID, room, err)
	}
	return pc, nil
}

func (uc *DirectoryUseCase) ListRoom(ctx context.Context, room int) ([]entities.RoomPC, error) {
	if !uc.valid[room] {
		return nil, fmt.Errorf("%w: room %d does not exist", ErrNotFound, room)
	}
	if pcs, ok := uc.cache.Get(room); ok {
		return pcs, nil
	}
	pcs, err := uc.repo.ListByRoom(ctx, room)
	if err != nil {
		return nil, err
	}
	uc.cache.Put(room, pcs)
	return pcs, nil
}

func (uc *DirectoryUseCase) FindByIP(ctx context.Context, ip string) (*entities.RoomPC, error) {
	pc, err := uc.repo.FindByIP(ctx, ip)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: no pc with ip %s", ErrNotFound, ip)
	}
	return pc, err
}

func (uc *DirectoryUseCase) Count(ctx context.Context) (int64, error) {
	return uc.repo.Count(ctx)
}

// Seed writes the provisioning file into the directory, updating PCs that
// already exist.
func (uc *DirectoryUseCase) Seed(ctx context.Context, pcs []entities.RoomPC) error {
	for _, pc := range pcs {
		if !uc.valid[pc.RoomNumber] {
			return fmt.Errorf("%w: room %d is not configured", ErrValidation, pc.RoomNumber)
		}
	}
	defer uc.cache.Invalidate()
	return uc.repo.UpsertAll(ctx, pcs)
}
