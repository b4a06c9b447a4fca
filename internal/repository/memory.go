package repository

import (
	"sync"

	"github.com/ivanoskov/villa_bot/internal/model"
)

// MemoryFunnelRepository воронка в памяти процесса, сбрасывается при рестарте
type MemoryFunnelRepository struct {
	mu     sync.RWMutex
	counts map[model.State]map[int64]struct{}
}

func NewMemoryFunnelRepository() *MemoryFunnelRepository {
	return &MemoryFunnelRepository{counts: make(map[model.State]map[int64]struct{})}
}

func (r *MemoryFunnelRepository) Hit(state model.State, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.counts[state]
	if !ok {
		m = make(map[int64]struct{})
		r.counts[state] = m
	}
	m[userID] = struct{}{}
	return nil
}

func (r *MemoryFunnelRepository) Counts() (map[model.State]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[model.State]int, len(r.counts))
	for s, set := range r.counts {
		out[s] = len(set)
	}
	return out, nil
}
