package middleware

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aretw0/splash/pkg/domain"
	"github.com/aretw0/splash/pkg/ports"
)

type loggingMiddleware struct {
	next   ports.SnapshotStore
	logger *slog.Logger
}

// Logging logs failed store operations at warn and successful writes at debug.
func Logging(logger *slog.Logger) Middleware {
	return func(next ports.SnapshotStore) ports.SnapshotStore {
		return &loggingMiddleware{next: next, logger: logger}
	}
}

func (m *loggingMiddleware) log(op, sessionID string, err error, attrs ...any) {
	attrs = append([]any{"op", op, "session_id", sessionID}, attrs...)
	switch {
	case err == nil:
		m.logger.Debug("store operation", attrs...)
	case errors.Is(err, domain.ErrSessionNotFound):
		m.logger.Debug("store miss", attrs...)
	default:
		m.logger.Warn("store operation failed", append(attrs, "err", err)...)
	}
}

func (m *loggingMiddleware) Save(ctx context.Context, sessionID string, snap domain.Snapshot) error {
	err := m.next.Save(ctx, sessionID, snap)
	m.log("save", sessionID, err, "revision", snap.Revision)
	return err
}

func (m *loggingMiddleware) Load(ctx context.Context, sessionID string) (domain.Snapshot, error) {
	snap, err := m.next.Load(ctx, sessionID)
	if err != nil {
		m.log("load", sessionID, err)
	}
	return snap, err
}

func (m *loggingMiddleware) Delete(ctx context.Context, sessionID string) error {
	err := m.next.Delete(ctx, sessionID)
	m.log("delete", sessionID, err)
	return err
}

func (m *loggingMiddleware) List(ctx context.Context) ([]string, error) {
	ids, err := m.next.List(ctx)
	if err != nil {
		m.log("list", "", err)
	}
	return ids, err
}
