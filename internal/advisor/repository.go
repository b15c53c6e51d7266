package advisor

import (
	"context"
	"sync"
)

// Repository stores per-session conversation transcripts.
type Repository interface {
	// History returns the session's turns in order. A session with no
	// recorded turns yields an empty history, not an error.
	History(ctx context.Context, sessionID string) ([]Message, error)

	// Append records turns at the end of the session's transcript.
	Append(ctx context.Context, sessionID string, messages ...Message) error
}

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing and single-instance deployments.
// Production should use PostgresRepository.
type InMemoryRepository struct {
	mu          sync.RWMutex
	transcripts map[string][]Message
}

// NewInMemoryRepository creates a new in-memory transcript repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		transcripts: make(map[string][]Message),
	}
}

// History returns the session's turns in order.
func (r *InMemoryRepository) History(_ context.Context, sessionID string) ([]Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	turns := r.transcripts[sessionID]

	// Return a copy
	cpy := make([]Message, len(turns))
	copy(cpy, turns)
	return cpy, nil
}

// Append records turns at the end of the session's transcript.
func (r *InMemoryRepository) Append(_ context.Context, sessionID string, messages ...Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.transcripts[sessionID] = append(r.transcripts[sessionID], messages...)
	return nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
