package history

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/passgen/internal/domain"
	"github.com/MrSnakeDoc/passgen/internal/logger"
)

// Persister stores the whole history as a single value.
type Persister interface {
	LoadHistory(ctx context.Context) (domain.History, error)
	SaveHistory(ctx context.Context, h domain.History) error
}

// Service owns the in-memory history and mirrors every change to the
// persister. Persistence is best effort: failures are logged and the
// in-memory state stays authoritative.
type Service struct {
	mu      sync.RWMutex
	entries domain.History
	store   Persister
	logger  logger.Logger
	now     func() time.Time
	newID   func() string
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides the uuid based entry IDs.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) { s.newID = gen }
}

// NewService creates an empty history. Call Load to restore persisted entries.
func NewService(store Persister, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		entries: domain.History{},
		store:   store,
		logger:  log,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory history with the persisted one.
// A missing or unreadable value yields an empty history.
func (s *Service) Load(ctx context.Context) domain.History {
	h, err := s.store.LoadHistory(ctx)
	if err != nil {
		s.logger.Warn("failed to load history, starting empty", logger.Error(err))
		h = domain.History{}
	}

	s.mu.Lock()
	s.entries = h.Clone()
	s.mu.Unlock()

	s.logger.Info("history loaded", logger.Int("entries", len(h)))
	return h.Clone()
}

// Record adds a freshly generated password to the front of the history.
func (s *Service) Record(ctx context.Context, text, timezone string) (domain.HistoryEntry, domain.History) {
	e := domain.HistoryEntry{
		ID: s.newID(),
		GeneratedPassword: domain.GeneratedPassword{
			Text:      text,
			CreatedAt: s.now().UTC(),
			Timezone:  timezone,
		},
	}

	s.mu.Lock()
	s.entries = s.entries.Record(e)
	snapshot := s.entries.Clone()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	return e, snapshot
}

// Delete removes the entry at index. Out of range indexes change nothing.
func (s *Service) Delete(ctx context.Context, index int) (domain.History, error) {
	s.mu.Lock()
	next, err := s.entries.Delete(index)
	if err != nil {
		snapshot := s.entries.Clone()
		s.mu.Unlock()
		return snapshot, err
	}
	s.entries = next
	snapshot := next.Clone()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	return snapshot, nil
}

// DeleteID removes the entry with the given ID.
func (s *Service) DeleteID(ctx context.Context, id string) (domain.History, error) {
	s.mu.Lock()
	next, err := s.entries.DeleteID(id)
	if err != nil {
		snapshot := s.entries.Clone()
		s.mu.Unlock()
		return snapshot, err
	}
	s.entries = next
	snapshot := next.Clone()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	return snapshot, nil
}

// List returns a copy of the history, most recent first.
func (s *Service) List() domain.History {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries.Clone()
}

// Get returns the entry at index.
func (s *Service) Get(index int) (domain.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries.At(index)
}

func (s *Service) persist(ctx context.Context, h domain.History) {
	if err := s.store.SaveHistory(ctx, h); err != nil {
		s.logger.Warn("failed to persist history",
			logger.Int("entries", len(h)),
			logger.Error(err))
	}
}
