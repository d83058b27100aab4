package middleware

import (
	"context"

	"github.com/aretw0/choicefsm/pkg/domain"
	"github.com/aretw0/choicefsm/pkg/ports"
)

type historyLimit[S comparable] struct {
	next  ports.StateStore[S]
	limit int
}

// NewHistoryLimit keeps only the last limit entries of a snapshot's history
// when saving. Steps still counts every handled event. A limit <= 0 disables
// trimming.
func NewHistoryLimit[S comparable](limit int) Middleware[S] {
	return func(next ports.StateStore[S]) ports.StateStore[S] {
		if limit <= 0 {
			return next
		}
		return &historyLimit[S]{next: next, limit: limit}
	}
}

func (m *historyLimit[S]) Save(ctx context.Context, sessionID string, snap *domain.Snapshot[S]) error {
	if len(snap.History) <= m.limit {
		return m.next.Save(ctx, sessionID, snap)
	}
	// Trim a copy; the caller keeps its full history.
	trimmed := snap.Clone()
	trimmed.History = trimmed.History[len(trimmed.History)-m.limit:]
	return m.next.Save(ctx, sessionID, trimmed)
}

func (m *historyLimit[S]) Load(ctx context.Context, sessionID string) (*domain.Snapshot[S], error) {
	return m.next.Load(ctx, sessionID)
}

func (m *historyLimit[S]) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *historyLimit[S]) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
