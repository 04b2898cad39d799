package status

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shield/internal/exposure/models"
	"shield/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// failingKV breaks reads or writes on demand.
type failingKV struct {
	*storage.InMemoryKV
	failGet bool
	failSet bool
}

func (f *failingKV) GetItem(ctx context.Context, key string) (string, error) {
	if f.failGet {
		return "", errors.New("disk on fire")
	}
	return f.InMemoryKV.GetItem(ctx, key)
}

func (f *failingKV) SetItem(ctx context.Context, key, value string) error {
	if f.failSet {
		return errors.New("disk on fire")
	}
	return f.InMemoryKV.SetItem(ctx, key, value)
}

func TestDefaultValueIsMonitoring(t *testing.T) {
	store := New(storage.NewInMemoryKV(), testLogger())
	assert.Equal(t, models.Monitoring(), store.Get())
}

func TestSetPersistsUnderFixedKey(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewInMemoryKV()
	store := New(kv, testLogger())

	store.Set(ctx, models.ExposureStatus{Type: models.StatusDiagnosed, CycleEndsAt: 42})

	raw, err := kv.GetItem(ctx, StorageKey)
	require.NoError(t, err)
	var persisted map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &persisted))
	assert.Equal(t, "diagnosed", persisted["type"])
	assert.Equal(t, float64(42), persisted["cycleEndsAt"])
}

func TestLoadSeedsFromStorage(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewInMemoryKV()
	require.NoError(t, kv.SetItem(ctx, StorageKey, `{"type":"diagnosed","cycleEndsAt":42}`))

	store := New(kv, testLogger())
	assert.Equal(t, models.StatusMonitoring, store.Get().Type)

	store.Load(ctx)
	assert.Equal(t, models.StatusDiagnosed, store.Get().Type)
	assert.Equal(t, int64(42), store.Get().CycleEndsAt)
}

func TestLoadToleratesCorruptAndMissingRecords(t *testing.T) {
	ctx := context.Background()

	store := New(storage.NewInMemoryKV(), testLogger())
	store.Load(ctx)
	assert.Equal(t, models.Monitoring(), store.Get())

	kv := storage.NewInMemoryKV()
	require.NoError(t, kv.SetItem(ctx, StorageKey, "{corrupt"))
	store = New(kv, testLogger())
	store.Load(ctx)
	assert.Equal(t, models.Monitoring(), store.Get())
}

func TestLoadFailureDegradesToDefault(t *testing.T) {
	store := New(&failingKV{InMemoryKV: storage.NewInMemoryKV(), failGet: true}, testLogger())
	store.Load(context.Background())
	assert.Equal(t, models.Monitoring(), store.Get())
}

func TestPersistenceFailureKeepsInMemoryValue(t *testing.T) {
	ctx := context.Background()
	store := New(&failingKV{InMemoryKV: storage.NewInMemoryKV(), failSet: true}, testLogger())

	store.Set(ctx, models.ExposureStatus{Type: models.StatusExposed})
	assert.Equal(t, models.StatusExposed, store.Get().Type)
}

func TestAppendMergesShallowly(t *testing.T) {
	ctx := context.Background()
	store := New(storage.NewInMemoryKV(), testLogger())
	store.Set(ctx, models.ExposureStatus{Type: models.StatusDiagnosed, CycleStartsAt: 1, CycleEndsAt: 2, NeedsSubmission: true})

	completed := int64(99)
	store.Append(ctx, models.Patch{SubmissionLastCompletedAt: &completed})

	got := store.Get()
	assert.Equal(t, models.StatusDiagnosed, got.Type)
	assert.Equal(t, int64(1), got.CycleStartsAt)
	require.NotNil(t, got.SubmissionLastCompletedAt)
	assert.Equal(t, int64(99), *got.SubmissionLastCompletedAt)
}

func TestSubscribersNotifiedSynchronouslyInOrder(t *testing.T) {
	ctx := context.Background()
	store := New(storage.NewInMemoryKV(), testLogger())

	var seen []models.StatusType
	unsubscribe := store.Subscribe(func(s models.ExposureStatus) {
		seen = append(seen, s.Type)
	})

	// No stale event on subscription.
	assert.Empty(t, seen)

	store.Set(ctx, models.ExposureStatus{Type: models.StatusExposed})
	store.Set(ctx, models.ExposureStatus{Type: models.StatusMonitoring})
	assert.Equal(t, []models.StatusType{models.StatusExposed, models.StatusMonitoring}, seen)

	unsubscribe()
	store.Set(ctx, models.ExposureStatus{Type: models.StatusDiagnosed})
	assert.Len(t, seen, 2)
}
