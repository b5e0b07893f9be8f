package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/passgen/internal/domain"
	"github.com/MrSnakeDoc/passgen/internal/httpserver/deps"
)

type presetResponse struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Config      configResponse `json:"config"`
	Strength    ratingResponse `json:"strength"`
}

// Presets lists the loaded presets sorted by name.
func Presets(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out := []presetResponse{}
		if d.Presets != nil {
			for _, p := range d.Presets.All() {
				out = append(out, presetResponse{
					Name:        p.Name,
					Description: p.Description,
					Config:      toConfig(p.Config),
					Strength:    toRating(domain.Rate(p.Config)),
				})
			}
		}
		writeJSON(w, http.StatusOK, out)
	}
}
