package preference

import (
	"context"

	"github.com/kailas-cloud/travelrag/internal/domain/preference"
)

// ProfileStore persists preference profiles. Get returns domain.ErrNotFound for unknown users.
type ProfileStore interface {
	Get(ctx context.Context, userID string) (*preference.Profile, error)
	Save(ctx context.Context, p *preference.Profile) error
}

// TextEncoder batch-encodes texts with the document embedder.
type TextEncoder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}
