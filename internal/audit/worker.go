package audit

import (
	"context"
	"errors"
	"log/slog"
)

// ErrTrailFull reports a dropped event; the trail is best-effort by design.
var ErrTrailFull = errors.New("audit trail buffer full")

// Worker consumes audit events from the publisher and persists them. It keeps
// background processing testable without wiring queue implementations.
type Worker struct {
	store  Store
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(store Store, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run drains the inbox until ctx is done. Append failures are logged, not
// fatal: a lost trail entry must never take the agent down.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				w.logger.WarnContext(ctx, "failed to append audit event",
					"action", string(event.Action),
					"error", err.Error(),
				)
			}
		}
	}
}
