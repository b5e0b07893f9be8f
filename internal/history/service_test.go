package history

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/passgen/internal/domain"
	"github.com/MrSnakeDoc/passgen/internal/logger"
)

type fakeStore struct {
	mu       sync.Mutex
	saved    domain.History
	saves    int
	loadErr  error
	saveErr  error
	loadWith domain.History
}

func (f *fakeStore) LoadHistory(context.Context) (domain.History, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.loadWith, nil
}

func (f *fakeStore) SaveHistory(_ context.Context, h domain.History) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = h.Clone()
	return nil
}

func newTestService(store Persister) *Service {
	n := 0
	fixed := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	return NewService(store, logger.Nop(),
		WithClock(func() time.Time { return fixed }),
		WithIDGenerator(func() string { n++; return fmt.Sprintf("id-%d", n) }),
	)
}

func texts(h domain.History) []string {
	out := make([]string, len(h))
	for i, e := range h {
		out[i] = e.Text
	}
	return out
}

func TestRecordPersistsEveryChange(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)
	ctx := context.Background()

	e, h := svc.Record(ctx, "first", "Europe/Paris")
	assert.Equal(t, "id-1", e.ID)
	assert.Equal(t, "Europe/Paris", e.Timezone)
	assert.Equal(t, time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC), e.CreatedAt)
	assert.Equal(t, []string{"first"}, texts(h))

	svc.Record(ctx, "second", "UTC")
	assert.Equal(t, []string{"second", "first"}, texts(svc.List()))
	assert.Equal(t, []string{"second", "first"}, texts(store.saved))
	assert.Equal(t, 2, store.saves)
}

func TestRecordCapsAndDeduplicates(t *testing.T) {
	svc := newTestService(&fakeStore{})
	ctx := context.Background()

	for _, pw := range []string{"a", "b", "c", "d", "e", "f"} {
		svc.Record(ctx, pw, "")
	}
	assert.Equal(t, []string{"f", "e", "d", "c", "b"}, texts(svc.List()))

	svc.Record(ctx, "c", "")
	assert.Equal(t, []string{"c", "f", "e", "d", "b"}, texts(svc.List()))
}

func TestDelete(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)
	ctx := context.Background()
	for _, pw := range []string{"a", "b", "c"} {
		svc.Record(ctx, pw, "")
	}

	h, err := svc.Delete(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, texts(h))
	assert.Equal(t, []string{"c", "a"}, texts(store.saved))

	saves := store.saves
	h, err = svc.Delete(ctx, 7)
	require.ErrorIs(t, err, domain.ErrIndexOutOfRange)
	assert.Equal(t, []string{"c", "a"}, texts(h))
	assert.Equal(t, saves, store.saves, "failed delete must not persist")
}

func TestDeleteID(t *testing.T) {
	svc := newTestService(&fakeStore{})
	ctx := context.Background()
	svc.Record(ctx, "a", "")
	svc.Record(ctx, "b", "")

	h, err := svc.DeleteID(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, texts(h))

	_, err = svc.DeleteID(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrEntryNotFound)
}

func TestGet(t *testing.T) {
	svc := newTestService(&fakeStore{})
	svc.Record(context.Background(), "a", "")

	e, err := svc.Get(0)
	require.NoError(t, err)
	assert.Equal(t, "a", e.Text)

	_, err = svc.Get(1)
	require.ErrorIs(t, err, domain.ErrIndexOutOfRange)
}

func TestLoad(t *testing.T) {
	persisted := domain.History{
		{ID: "x", GeneratedPassword: domain.GeneratedPassword{Text: "old"}},
	}
	svc := newTestService(&fakeStore{loadWith: persisted})

	h := svc.Load(context.Background())
	assert.Equal(t, []string{"old"}, texts(h))
	assert.Equal(t, []string{"old"}, texts(svc.List()))
}

func TestLoadFailureStartsEmpty(t *testing.T) {
	svc := newTestService(&fakeStore{loadErr: errors.New("redis down")})

	h := svc.Load(context.Background())
	assert.Empty(t, h)
	assert.Empty(t, svc.List())
}

func TestPersistFailureKeepsMemoryState(t *testing.T) {
	svc := newTestService(&fakeStore{saveErr: errors.New("redis down")})

	_, h := svc.Record(context.Background(), "a", "")
	assert.Equal(t, []string{"a"}, texts(h))
	assert.Equal(t, []string{"a"}, texts(svc.List()))
}

func TestListIsACopy(t *testing.T) {
	svc := newTestService(&fakeStore{})
	svc.Record(context.Background(), "a", "")

	h := svc.List()
	h[0].Text = "mutated"
	assert.Equal(t, "a", svc.List()[0].Text)
}

func TestConcurrentRecord(t *testing.T) {
	svc := NewService(&fakeStore{}, logger.Nop())
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			svc.Record(context.Background(), fmt.Sprintf("pw-%d", i), "")
		}(i)
	}
	wg.Wait()
	assert.Len(t, svc.List(), domain.MaxHistory)
}
