package redis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/passgen/internal/domain"
)

// ErrCorruptHistory is returned when the persisted blob cannot be decoded.
var ErrCorruptHistory = errors.New("corrupt history blob")

// historyRecord is the persisted shape of one entry. Older writers stored
// plain strings instead; both are accepted by DecodeHistory.
type historyRecord struct {
	ID       string `json:"id,omitempty"`
	Password string `json:"password"`
	Timezone string `json:"timezone,omitempty"`
	Date     string `json:"date,omitempty"`
}

// LoadHistory reads the history blob. A missing key is an empty history.
func (s *Store) LoadHistory(ctx context.Context) (domain.History, error) {
	data, err := s.client.Get(ctx, HistoryKey(s.prefix)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.History{}, nil
		}
		return nil, fmt.Errorf("failed to get history: %w", err)
	}

	h, err := DecodeHistory(data)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// SaveHistory overwrites the history blob with h.
func (s *Store) SaveHistory(ctx context.Context, h domain.History) error {
	data, err := EncodeHistory(h)
	if err != nil {
		return err
	}

	// No TTL: the blob lives until overwritten
	if err := s.client.Set(ctx, HistoryKey(s.prefix), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}
	return nil
}

// EncodeHistory always writes the object shape.
func EncodeHistory(h domain.History) ([]byte, error) {
	records := make([]historyRecord, 0, len(h))
	for _, e := range h {
		r := historyRecord{
			ID:       e.ID,
			Password: e.Text,
			Timezone: e.Timezone,
		}
		if !e.CreatedAt.IsZero() {
			r.Date = e.CreatedAt.Format(time.RFC3339Nano)
		}
		records = append(records, r)
	}

	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal history: %w", err)
	}
	return data, nil
}

// DecodeHistory parses a JSON array whose elements are either plain strings
// or {password, timezone, date} objects. Unparseable dates are dropped, not
// treated as corruption. At most MaxHistory entries are kept.
func DecodeHistory(data []byte) (domain.History, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptHistory, err)
	}

	h := make(domain.History, 0, len(raw))
	for i, item := range raw {
		e, err := decodeEntry(item)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrCorruptHistory, i, err)
		}
		h = append(h, e)
	}

	if len(h) > domain.MaxHistory {
		h = h[:domain.MaxHistory]
	}
	return h, nil
}

func decodeEntry(item json.RawMessage) (domain.HistoryEntry, error) {
	item = bytes.TrimSpace(item)
	if len(item) == 0 {
		return domain.HistoryEntry{}, errors.New("empty element")
	}

	switch item[0] {
	case '"':
		var text string
		if err := json.Unmarshal(item, &text); err != nil {
			return domain.HistoryEntry{}, err
		}
		if text == "" {
			return domain.HistoryEntry{}, errors.New("empty password")
		}
		return domain.HistoryEntry{GeneratedPassword: domain.GeneratedPassword{Text: text}}, nil

	case '{':
		var r historyRecord
		if err := json.Unmarshal(item, &r); err != nil {
			return domain.HistoryEntry{}, err
		}
		if r.Password == "" {
			return domain.HistoryEntry{}, errors.New("empty password")
		}
		e := domain.HistoryEntry{
			ID: r.ID,
			GeneratedPassword: domain.GeneratedPassword{
				Text:     r.Password,
				Timezone: r.Timezone,
			},
		}
		if t, err := time.Parse(time.RFC3339Nano, r.Date); err == nil {
			e.CreatedAt = t
		}
		return e, nil

	default:
		return domain.HistoryEntry{}, fmt.Errorf("unexpected element %s", item)
	}
}
