// Package service runs the generate, score and record cycle behind the HTTP
// handlers.
package service

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/passgen/internal/domain"
	"github.com/MrSnakeDoc/passgen/internal/history"
	"github.com/MrSnakeDoc/passgen/internal/logger"
)

// ZoneResolver returns an IANA zone for a client without blocking.
type ZoneResolver interface {
	Resolve(ctx context.Context, clientIP string) string
}

// PresetSource looks presets up by name.
type PresetSource interface {
	Get(name string) (domain.Preset, bool)
}

// Overrides are the optional fields of a generate request. Nil fields keep
// the value of the preset, or of the configured defaults.
type Overrides struct {
	Preset         string
	Length         *int
	Upper          *bool
	Lower          *bool
	Digit          *bool
	Symbol         *bool
	ExcludeSimilar *bool
}

// Result is everything produced by one generation.
type Result struct {
	Password domain.HistoryEntry
	Rating   domain.Rating
	Missing  []domain.Category
	Estimate domain.Estimate
	History  domain.History
}

// Report is the strength of a config without generating anything.
type Report struct {
	Rating  domain.Rating
	Missing []domain.Category
}

// Password wires the generator, the scorer and the history together.
type Password struct {
	gen      *domain.Generator
	history  *history.Service
	zones    ZoneResolver
	presets  PresetSource
	defaults domain.GenerationConfig
	site     string
	logger   logger.Logger
}

// Options configures NewPassword. Zero values fall back to sane defaults.
type Options struct {
	Random   domain.RandomSource // nil => crypto/rand
	Defaults domain.GenerationConfig
	Site     string // written in detailed exports
}

func NewPassword(h *history.Service, zones ZoneResolver, presets PresetSource, opts Options, log logger.Logger) *Password {
	defaults := opts.Defaults
	if defaults.Validate() != nil {
		defaults = domain.DefaultConfig()
	}
	return &Password{
		gen:      domain.NewGenerator(opts.Random),
		history:  h,
		zones:    zones,
		presets:  presets,
		defaults: defaults,
		site:     opts.Site,
		logger:   log,
	}
}

// Defaults returns the config used for fields a request leaves out.
func (p *Password) Defaults() domain.GenerationConfig { return p.defaults }

// BuildConfig layers the overrides on top of the named preset or the defaults.
// The result is not validated.
func (p *Password) BuildConfig(o Overrides) (domain.GenerationConfig, error) {
	cfg := p.defaults
	if o.Preset != "" {
		if p.presets == nil {
			return cfg, fmt.Errorf("%w: %s", domain.ErrUnknownPreset, o.Preset)
		}
		preset, ok := p.presets.Get(o.Preset)
		if !ok {
			return cfg, fmt.Errorf("%w: %s", domain.ErrUnknownPreset, o.Preset)
		}
		cfg = preset.Config
	}

	if o.Length != nil {
		cfg.Length = *o.Length
	}
	if o.ExcludeSimilar != nil {
		cfg.ExcludeSimilar = *o.ExcludeSimilar
	}
	toggles := []struct {
		on  *bool
		cat domain.Category
	}{
		{o.Upper, domain.Upper},
		{o.Lower, domain.Lower},
		{o.Digit, domain.Digit},
		{o.Symbol, domain.Symbol},
	}
	for _, t := range toggles {
		switch {
		case t.on == nil:
		case *t.on:
			cfg.Categories = cfg.Categories.With(t.cat)
		default:
			cfg.Categories = cfg.Categories.Without(t.cat)
		}
	}
	return cfg, nil
}

// Generate produces a password for cfg and records it. A failed generation
// leaves the history untouched.
func (p *Password) Generate(ctx context.Context, cfg domain.GenerationConfig, clientIP string) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	text, err := p.gen.Generate(cfg)
	if err != nil {
		return Result{}, fmt.Errorf("generate: %w", err)
	}

	tz := "UTC"
	if p.zones != nil {
		tz = p.zones.Resolve(ctx, clientIP)
	}

	entry, h := p.history.Record(ctx, text, tz)

	p.logger.Debug("password generated",
		logger.Int("length", cfg.Length),
		logger.Strings("categories", cfg.Categories.Names()),
		logger.Bool("exclude_similar", cfg.ExcludeSimilar),
		logger.String("timezone", tz))

	return Result{
		Password: entry,
		Rating:   domain.Rate(cfg),
		Missing:  domain.MissingCategories(cfg),
		Estimate: domain.EstimatePassword(text),
		History:  h,
	}, nil
}

// Rate scores cfg. Any config can be rated, including invalid ones.
func (p *Password) Rate(cfg domain.GenerationConfig) Report {
	return Report{
		Rating:  domain.Rate(cfg),
		Missing: domain.MissingCategories(cfg),
	}
}

func (p *Password) History() domain.History { return p.history.List() }

func (p *Password) Delete(ctx context.Context, index int) (domain.History, error) {
	return p.history.Delete(ctx, index)
}

func (p *Password) DeleteID(ctx context.Context, id string) (domain.History, error) {
	return p.history.DeleteID(ctx, id)
}

// Export renders the entry at index as a downloadable text file.
func (p *Password) Export(index int, detailed bool) (filename, body string, err error) {
	e, err := p.history.Get(index)
	if err != nil {
		return "", "", err
	}
	if detailed {
		return domain.ExportFilename, domain.ExportDetailed(e, p.site), nil
	}
	return domain.ExportFilename, domain.ExportPlain(e), nil
}
