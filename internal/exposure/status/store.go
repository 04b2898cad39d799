// Package status owns the in-memory exposure status cell: the single source
// of truth the engine and the control surface read, persisted on every
// mutation and observable through synchronous subscriptions.
package status

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"shield/internal/exposure/models"
	"shield/internal/storage"
)

// StorageKey is the fixed persistence key for the serialized status record.
const StorageKey = "exposureStatus"

// Subscriber receives every new status snapshot, synchronously, in mutation
// order. Subscribing does not replay the current value.
type Subscriber func(models.ExposureStatus)

// Store holds the current ExposureStatus. Get never blocks and never fails;
// Set and Append persist through the adapter and then notify subscribers.
// A persistence failure is logged and the in-memory value stays
// authoritative for the session.
type Store struct {
	mu     sync.Mutex
	value  models.ExposureStatus
	subs   map[int]Subscriber
	nextID int
	kv     storage.KV
	logger *slog.Logger
}

func New(kv storage.KV, logger *slog.Logger) *Store {
	return &Store{
		value:  models.Monitoring(),
		subs:   make(map[int]Subscriber),
		kv:     kv,
		logger: logger,
	}
}

// Load seeds the cell from the persistence adapter. An absent or corrupt
// record leaves the monitoring default in place. Load notifies subscribers
// like any other mutation but does not write back.
func (s *Store) Load(ctx context.Context) {
	raw, err := s.kv.GetItem(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.WarnContext(ctx, "failed to load exposure status, starting from default",
				"error", err.Error(),
			)
		}
		return
	}

	s.mu.Lock()
	s.value = models.Decode(raw)
	snapshot, subs := s.value, s.snapshotSubs()
	s.mu.Unlock()

	notify(subs, snapshot)
}

// Get returns the current value synchronously.
func (s *Store) Get() models.ExposureStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Set replaces the value wholesale, persists it, and notifies subscribers.
func (s *Store) Set(ctx context.Context, value models.ExposureStatus) {
	s.mu.Lock()
	s.value = value
	snapshot, subs := s.value, s.snapshotSubs()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	notify(subs, snapshot)
}

// Append merges a partial record into the current value, then behaves like
// Set. Patches cannot change the variant tag; transitions go through the
// models constructors.
func (s *Store) Append(ctx context.Context, patch models.Patch) {
	s.mu.Lock()
	s.value = s.value.Merge(patch)
	snapshot, subs := s.value, s.snapshotSubs()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	notify(subs, snapshot)
}

// Subscribe registers a listener for every subsequent mutation and returns
// its unsubscribe function.
func (s *Store) Subscribe(fn Subscriber) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) persist(ctx context.Context, value models.ExposureStatus) {
	raw, err := value.Encode()
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to encode exposure status", "error", err.Error())
		return
	}
	if err := s.kv.SetItem(ctx, StorageKey, raw); err != nil {
		s.logger.WarnContext(ctx, "failed to persist exposure status, in-memory value remains authoritative",
			"error", err.Error(),
		)
	}
}

func (s *Store) snapshotSubs() []Subscriber {
	subs := make([]Subscriber, 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return subs
}

func notify(subs []Subscriber, snapshot models.ExposureStatus) {
	for _, fn := range subs {
		fn(snapshot)
	}
}
