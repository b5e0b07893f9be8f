package presets

import (
	"sort"
	"sync"
	"time"

	"github.com/MrSnakeDoc/passgen/internal/domain"
)

// Registry holds the current presets. Reads vastly outnumber reloads.
type Registry struct {
	mu         sync.RWMutex
	presets    map[string]domain.Preset
	lastReload time.Time
}

func NewRegistry() *Registry {
	return &Registry{presets: make(map[string]domain.Preset)}
}

// Replace swaps the whole preset set.
func (r *Registry) Replace(presets []domain.Preset) {
	next := make(map[string]domain.Preset, len(presets))
	for _, p := range presets {
		next[p.Name] = p
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.presets = next
	r.lastReload = time.Now()
}

// Get looks a preset up by name, case-insensitively.
func (r *Registry) Get(name string) (domain.Preset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.presets[NormalizeName(name)]
	return p, ok
}

// All returns the presets sorted by name.
func (r *Registry) All() []domain.Preset {
	r.mu.RLock()
	out := make([]domain.Preset, 0, len(r.presets))
	for _, p := range r.presets {
		out = append(out, p)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.presets)
}

// LastReload returns the time of the last Replace, zero if never loaded.
func (r *Registry) LastReload() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastReload
}
