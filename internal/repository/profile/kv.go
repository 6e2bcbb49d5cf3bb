package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kailas-cloud/travelrag/internal/db"
	"github.com/kailas-cloud/travelrag/internal/domain"
	"github.com/kailas-cloud/travelrag/internal/domain/preference"
)

// kvStore is the consumer interface for profiles in the key-value store (ISP).
type kvStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// KVRepo stores one JSON document per user under prefix+"profile:"+userID.
type KVRepo struct {
	store  kvStore
	prefix string
}

// NewKV creates a key-value backed profile repository.
func NewKV(s kvStore, prefix string) *KVRepo {
	return &KVRepo{store: s, prefix: prefix + "profile:"}
}

// Get returns the stored profile or domain.ErrNotFound.
func (r *KVRepo) Get(ctx context.Context, userID string) (*preference.Profile, error) {
	data, err := r.store.Get(ctx, r.prefix+userID)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get profile %s: %w", userID, err)
	}

	var p preference.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", userID, err)
	}
	p.UserID = userID
	return &p, nil
}

// Save writes the profile.
func (r *KVRepo) Save(ctx context.Context, p *preference.Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile %s: %w", p.UserID, err)
	}
	if err := r.store.Set(ctx, r.prefix+p.UserID, data); err != nil {
		return fmt.Errorf("save profile %s: %w", p.UserID, err)
	}
	return nil
}
