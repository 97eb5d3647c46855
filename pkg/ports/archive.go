package ports

import (
	"context"

	"github.com/aretw0/bargain/pkg/domain"
)

// Archive defines the interface for persisting negotiation transcripts.
// Transcripts are written once a negotiation ends and are read back for audit.
type Archive interface {
	// Put stores the transcript, replacing any previous one for the same session.
	Put(ctx context.Context, transcript *domain.Transcript) error

	// Get retrieves the transcript of a session.
	// Returns domain.ErrTranscriptNotFound if there is none.
	Get(ctx context.Context, sessionID string) (*domain.Transcript, error)

	// List returns the IDs of all archived sessions. Order is implementation-defined.
	List(ctx context.Context) ([]string, error)

	// Delete removes a transcript. Deleting a missing transcript is not an error.
	Delete(ctx context.Context, sessionID string) error
}
