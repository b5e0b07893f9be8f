package domain

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// MaxHistory is the number of entries kept in the history.
const MaxHistory = 5

// GeneratedPassword is an immutable generation result.
type GeneratedPassword struct {
	Text      string
	CreatedAt time.Time
	Timezone  string
}

// Length returns the number of characters in the password.
func (p GeneratedPassword) Length() int { return utf8.RuneCountInString(p.Text) }

// HistoryEntry is one remembered password.
//
// Entries decoded from the legacy plain-string shape have no ID, no timezone
// and a zero CreatedAt.
type HistoryEntry struct {
	ID string
	GeneratedPassword
}

// History is ordered most recent first.
type History []HistoryEntry

// Record returns a new history with e at the front, any entry with the same
// text removed and the result capped at MaxHistory. h is not modified.
func (h History) Record(e HistoryEntry) History {
	out := make(History, 0, MaxHistory)
	out = append(out, e)
	for _, existing := range h {
		if len(out) == MaxHistory {
			break
		}
		if existing.Text == e.Text {
			continue
		}
		out = append(out, existing)
	}
	return out
}

// Delete returns a new history without the entry at index.
// Out of range indexes leave the history unchanged and return ErrIndexOutOfRange.
func (h History) Delete(index int) (History, error) {
	if index < 0 || index >= len(h) {
		return h, fmt.Errorf("%w: %d (size %d)", ErrIndexOutOfRange, index, len(h))
	}
	out := make(History, 0, len(h)-1)
	out = append(out, h[:index]...)
	out = append(out, h[index+1:]...)
	return out, nil
}

// DeleteID returns a new history without the entry with the given ID.
func (h History) DeleteID(id string) (History, error) {
	for i, e := range h {
		if id != "" && e.ID == id {
			return h.Delete(i)
		}
	}
	return h, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
}

// At returns the entry at index.
func (h History) At(index int) (HistoryEntry, error) {
	if index < 0 || index >= len(h) {
		return HistoryEntry{}, fmt.Errorf("%w: %d (size %d)", ErrIndexOutOfRange, index, len(h))
	}
	return h[index], nil
}

// Clone returns a copy that does not share the backing array.
func (h History) Clone() History {
	if h == nil {
		return History{}
	}
	out := make(History, len(h))
	copy(out, h)
	return out
}
