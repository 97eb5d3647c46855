package memory

import (
	"context"
	"sync"

	"github.com/aretw0/bargain/pkg/domain"
)

// Archive implements ports.Archive in memory.
// Safe for concurrent use.
type Archive struct {
	data map[string]*domain.Transcript
	mu   sync.RWMutex
}

// NewArchive creates a new in-memory archive.
func NewArchive() *Archive {
	return &Archive{
		data: make(map[string]*domain.Transcript),
	}
}

// Put stores a copy of the transcript.
func (a *Archive) Put(ctx context.Context, transcript *domain.Transcript) error {
	copied := transcript.Clone()

	a.mu.Lock()
	defer a.mu.Unlock()
	a.data[transcript.SessionID] = copied
	return nil
}

// Get returns a copy so callers can't mutate archived data by pointer.
func (a *Archive) Get(ctx context.Context, sessionID string) (*domain.Transcript, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	transcript, ok := a.data[sessionID]
	if !ok {
		return nil, domain.ErrTranscriptNotFound
	}
	return transcript.Clone(), nil
}

// Delete removes the transcript.
func (a *Archive) Delete(ctx context.Context, sessionID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.data, sessionID)
	return nil
}

// List returns archived session IDs.
func (a *Archive) List(ctx context.Context) ([]string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	ids := make([]string, 0, len(a.data))
	for id := range a.data {
		ids = append(ids, id)
	}
	return ids, nil
}
