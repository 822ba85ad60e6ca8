package players

//go:generate mockgen -destination=mock/mock_repository.go -package=mockplayers -source=repository.go

import (
	"context"

	"github.com/KirkDiggler/dungeon-run-discord/internal/domain/player"
)

// Repository defines the interface for player record storage
type Repository interface {
	// Get retrieves a record by id, returning nil when absent
	Get(ctx context.Context, id string) (*player.Record, error)

	// Save upserts a record
	Save(ctx context.Context, record *player.Record) error

	// Delete removes a record
	Delete(ctx context.Context, id string) error

	// GetAll retrieves every record keyed by id
	GetAll(ctx context.Context) (map[string]*player.Record, error)

	// Count returns the number of stored records
	Count(ctx context.Context) (int64, error)
}
