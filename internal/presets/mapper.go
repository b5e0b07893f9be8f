package presets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/passgen/internal/domain"
)

var (
	ErrMissingName   = errors.New("preset has no name")
	ErrDuplicateName = errors.New("duplicate preset name")
)

// Map converts file entries to domain presets. Invalid entries are skipped
// and reported in the returned error slice; the valid ones are still returned.
func Map(f File) ([]domain.Preset, []error) {
	out := make([]domain.Preset, 0, len(f.Presets))
	seen := make(map[string]bool, len(f.Presets))
	var errs []error

	for i, e := range f.Presets {
		p, err := mapEntry(e)
		if err != nil {
			errs = append(errs, fmt.Errorf("preset #%d (%q): %w", i, e.Name, err))
			continue
		}
		if seen[p.Name] {
			errs = append(errs, fmt.Errorf("preset #%d: %w: %s", i, ErrDuplicateName, p.Name))
			continue
		}
		seen[p.Name] = true
		out = append(out, p)
	}
	return out, errs
}

func mapEntry(e Entry) (domain.Preset, error) {
	name := NormalizeName(e.Name)
	if name == "" {
		return domain.Preset{}, ErrMissingName
	}

	cats, err := domain.ParseCategorySet(e.Categories)
	if err != nil {
		return domain.Preset{}, err
	}

	cfg := domain.GenerationConfig{
		Length:         e.Length,
		Categories:     cats,
		ExcludeSimilar: e.ExcludeSimilar,
	}
	if err := cfg.Validate(); err != nil {
		return domain.Preset{}, err
	}

	return domain.Preset{
		Name:        name,
		Description: strings.TrimSpace(e.Description),
		Config:      cfg,
	}, nil
}

// NormalizeName lowercases and trims a preset name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
