package repository

import (
	"context"
	"sync"

	"hellmusic/internal/models"
)

// MemoryRuntimeRepository keeps runtime state in process memory. It is lost on
// restart, which matches how the bot treats voice chat sessions.
type MemoryRuntimeRepository struct {
	mu       sync.RWMutex
	activeVC []models.ActiveVC
	loops    map[int64]int
	watchers map[int64]map[string]bool
}

func NewMemoryRuntimeRepository() *MemoryRuntimeRepository {
	return &MemoryRuntimeRepository{
		loops:    make(map[int64]int),
		watchers: make(map[int64]map[string]bool),
	}
}

func (r *MemoryRuntimeRepository) GetActiveVC(ctx context.Context) ([]models.ActiveVC, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.ActiveVC, len(r.activeVC))
	copy(out, r.activeVC)
	return out, nil
}

// AddActiveVC keeps the first registration of a chat; later calls are no-ops.
func (r *MemoryRuntimeRepository) AddActiveVC(ctx context.Context, vc models.ActiveVC) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(vc.ChatID) >= 0 {
		return nil
	}
	r.activeVC = append(r.activeVC, vc)
	return nil
}

func (r *MemoryRuntimeRepository) IsActiveVC(ctx context.Context, chatID int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.indexOf(chatID) >= 0, nil
}

func (r *MemoryRuntimeRepository) RemoveActiveVC(ctx context.Context, chatID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i := r.indexOf(chatID); i >= 0 {
		r.activeVC = append(r.activeVC[:i], r.activeVC[i+1:]...)
	}
	return nil
}

func (r *MemoryRuntimeRepository) indexOf(chatID int64) int {
	for i, vc := range r.activeVC {
		if vc.ChatID == chatID {
			return i
		}
	}
	return -1
}

func (r *MemoryRuntimeRepository) SetLoop(ctx context.Context, chatID int64, loop int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loops[chatID] = loop
	return nil
}

func (r *MemoryRuntimeRepository) GetLoop(ctx context.Context, chatID int64) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loops[chatID], nil
}

// SetWatcher updates a single key and leaves the chat's other keys untouched.
func (r *MemoryRuntimeRepository) SetWatcher(ctx context.Context, chatID int64, key string, watch bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys, ok := r.watchers[chatID]
	if !ok {
		keys = make(map[string]bool)
		r.watchers[chatID] = keys
	}
	keys[key] = watch
	return nil
}

func (r *MemoryRuntimeRepository) GetWatcher(ctx context.Context, chatID int64, key string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.watchers[chatID][key], nil
}
