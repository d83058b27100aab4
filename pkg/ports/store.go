package ports

import (
	"context"

	"github.com/aretw0/choicefsm/pkg/domain"
)

// StateStore persists session snapshots so a machine can be driven across
// requests or processes.
type StateStore[S comparable] interface {
	// Save persists the snapshot for a given session ID.
	Save(ctx context.Context, sessionID string, snap *domain.Snapshot[S]) error

	// Load retrieves the snapshot for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Snapshot[S], error)

	// Delete removes the snapshot for a given session ID. Deleting a missing
	// session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all stored sessions.
	List(ctx context.Context) ([]string, error)
}
