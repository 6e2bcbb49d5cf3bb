// Package profile persists user preference profiles.
package profile

import (
	"context"
	"sync"

	"github.com/kailas-cloud/travelrag/internal/domain"
	"github.com/kailas-cloud/travelrag/internal/domain/preference"
)

// MemoryRepo keeps profiles in process memory. Profiles are cloned on the way in and out.
type MemoryRepo struct {
	mu       sync.RWMutex
	profiles map[string]*preference.Profile
}

// NewMemory creates an empty in-memory profile repository.
func NewMemory() *MemoryRepo {
	return &MemoryRepo{profiles: make(map[string]*preference.Profile)}
}

// Get returns the stored profile or domain.ErrNotFound.
func (r *MemoryRepo) Get(_ context.Context, userID string) (*preference.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p.Clone(), nil
}

// Save replaces the stored profile.
func (r *MemoryRepo) Save(_ context.Context, p *preference.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.profiles[p.UserID] = p.Clone()
	return nil
}
