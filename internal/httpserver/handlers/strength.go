package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/MrSnakeDoc/passgen/internal/httpserver/deps"
	"github.com/MrSnakeDoc/passgen/internal/service"
)

type strengthResponse struct {
	Config      configResponse `json:"config"`
	Valid       bool           `json:"valid"`
	Strength    ratingResponse `json:"strength"`
	Suggestions []string       `json:"suggestions"`
}

// Strength rates the config described by the query string without
// generating anything. Example: /api/strength?length=16&symbols=true
func Strength(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		o, err := parseOverrides(r.URL.Query())
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}

		cfg, err := d.Passwords.BuildConfig(o)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		report := d.Passwords.Rate(cfg)
		writeJSON(w, http.StatusOK, strengthResponse{
			Config:      toConfig(cfg),
			Valid:       cfg.Validate() == nil,
			Strength:    toRating(report.Rating),
			Suggestions: suggestions(report.Missing),
		})
	}
}

func parseOverrides(q url.Values) (service.Overrides, error) {
	o := service.Overrides{Preset: q.Get("preset")}

	if raw := q.Get("length"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return o, fmt.Errorf("invalid length %q", raw)
		}
		o.Length = &n
	}

	bools := []struct {
		key string
		dst **bool
	}{
		{"uppercase", &o.Upper},
		{"lowercase", &o.Lower},
		{"numbers", &o.Digit},
		{"symbols", &o.Symbol},
		{"exclude_similar", &o.ExcludeSimilar},
	}
	for _, b := range bools {
		raw := q.Get(b.key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return o, fmt.Errorf("invalid %s %q", b.key, raw)
		}
		*b.dst = &v
	}
	return o, nil
}
