package queues

import (
	"sync"

	"github.com/KirkDiggler/dungeon-run-discord/internal/domain/queue"
)

// Registry is the process-wide home of waiting queues plus the
// player→queue reverse index. Created at startup and injected wherever
// queue state is touched; all access is serialized behind one mutex.
type Registry struct {
	mu          sync.RWMutex
	queues      map[string]*queue.Queue
	playerQueue map[string]string
}

// NewRegistry creates an empty queue registry
func NewRegistry() *Registry {
	return &Registry{
		queues:      make(map[string]*queue.Queue),
		playerQueue: make(map[string]string),
	}
}

// Get returns the queue with the given id, nil when absent
func (r *Registry) Get(id string) *queue.Queue {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.queues[id]
}

// GetByPlayer returns the queue the player belongs to, nil when unqueued
func (r *Registry) GetByPlayer(playerID string) *queue.Queue {
	r.mu.RLock()
	defer r.mu.RUnlock()

	queueID, ok := r.playerQueue[playerID]
	if !ok {
		return nil
	}
	return r.queues[queueID]
}

// Put registers a queue and indexes all of its members
func (r *Registry) Put(q *queue.Queue) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.queues[q.ID] = q
	for _, m := range q.Members {
		r.playerQueue[m.PlayerID] = q.ID
	}
}

// IndexMember records the reverse index entry for one member
func (r *Registry) IndexMember(playerID, queueID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.playerQueue[playerID] = queueID
}

// DropMember removes a player's reverse index entry
func (r *Registry) DropMember(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.playerQueue, playerID)
}

// Remove deletes a queue and every reverse-index entry pointing at it
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	q, ok := r.queues[id]
	if !ok {
		return
	}
	for _, m := range q.Members {
		delete(r.playerQueue, m.PlayerID)
	}
	delete(r.queues, id)
}

// Len returns the number of registered queues
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.queues)
}
