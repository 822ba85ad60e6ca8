package players

import (
	"context"
	"fmt"
	"sync"

	"github.com/KirkDiggler/dungeon-run-discord/internal/domain/player"
)

// inMemoryRepository implements Repository using in-memory storage
type inMemoryRepository struct {
	mu      sync.RWMutex
	records map[string]*player.Record
}

// NewInMemoryRepository creates a new in-memory player repository
func NewInMemoryRepository() Repository {
	return &inMemoryRepository{
		records: make(map[string]*player.Record),
	}
}

// Get retrieves a record by id
func (r *inMemoryRepository) Get(ctx context.Context, id string) (*player.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, exists := r.records[id]
	if !exists {
		return nil, nil
	}

	// Return a copy to avoid external modifications
	recordCopy := *record
	return &recordCopy, nil
}

// Save upserts a record
func (r *inMemoryRepository) Save(ctx context.Context, record *player.Record) error {
	if record == nil {
		return fmt.Errorf("record cannot be nil")
	}
	if record.ID == "" {
		return fmt.Errorf("record ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	recordCopy := *record
	r.records[record.ID] = &recordCopy

	return nil
}

// Delete removes a record
func (r *inMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.records, id)
	return nil
}

// GetAll retrieves every record keyed by id
func (r *inMemoryRepository) GetAll(ctx context.Context) (map[string]*player.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make(map[string]*player.Record, len(r.records))
	for id, record := range r.records {
		recordCopy := *record
		records[id] = &recordCopy
	}

	return records, nil
}

// Count returns the number of stored records
func (r *inMemoryRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.records)), nil
}
