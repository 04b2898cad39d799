package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store is an append-only sink for audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	List(ctx context.Context) ([]Event, error)
}

// Publisher hands events to the worker through a buffered channel. Emit never
// blocks domain logic: when the buffer is full the event is dropped and the
// drop is reported through the returned count.
type Publisher struct {
	inbox chan Event
}

func NewPublisher(buffer int) *Publisher {
	return &Publisher{inbox: make(chan Event, buffer)}
}

// Emit enqueues an event, stamping ID and timestamp when absent.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case p.inbox <- event:
		return nil
	default:
		return ErrTrailFull
	}
}

// Inbox exposes the consuming side for the worker.
func (p *Publisher) Inbox() <-chan Event { return p.inbox }
