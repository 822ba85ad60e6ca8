package runs

import (
	"sync"

	"github.com/KirkDiggler/dungeon-run-discord/internal/domain/run"
)

// Registry is the process-wide home of active runs plus the player→run
// reverse index. No two runs share a player.
type Registry struct {
	mu        sync.RWMutex
	runs      map[string]*run.Run
	playerRun map[string]string
}

// NewRegistry creates an empty run registry
func NewRegistry() *Registry {
	return &Registry{
		runs:      make(map[string]*run.Run),
		playerRun: make(map[string]string),
	}
}

// Get returns the run with the given id, nil when absent
func (r *Registry) Get(id string) *run.Run {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.runs[id]
}

// GetByPlayer returns the run the player is in, nil when absent
func (r *Registry) GetByPlayer(playerID string) *run.Run {
	r.mu.RLock()
	defer r.mu.RUnlock()

	runID, ok := r.playerRun[playerID]
	if !ok {
		return nil
	}
	return r.runs[runID]
}

// Put registers a run and indexes its party
func (r *Registry) Put(active *run.Run) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.runs[active.ID] = active
	for playerID := range active.Party {
		r.playerRun[playerID] = active.ID
	}
}

// DropPlayer removes a player's reverse index entry
func (r *Registry) DropPlayer(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.playerRun, playerID)
}

// Remove deletes a run and every index entry pointing at it
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	active, ok := r.runs[id]
	if !ok {
		return
	}
	for playerID := range active.Party {
		delete(r.playerRun, playerID)
	}
	delete(r.runs, id)
}

// Len returns the number of active runs
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.runs)
}
