package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/passgen/internal/httpserver/deps"
	"github.com/MrSnakeDoc/passgen/internal/service"
	"github.com/MrSnakeDoc/passgen/internal/utils"
)

const maxGenerateBody = 4 << 10

var errBadBody = errors.New("invalid request body")

type generateRequest struct {
	Preset         string `json:"preset"`
	Length         *int   `json:"length"`
	Uppercase      *bool  `json:"uppercase"`
	Lowercase      *bool  `json:"lowercase"`
	Numbers        *bool  `json:"numbers"`
	Symbols        *bool  `json:"symbols"`
	ExcludeSimilar *bool  `json:"exclude_similar"`
}

type estimateResponse struct {
	Score       int     `json:"score"`
	EntropyBits float64 `json:"entropy_bits"`
	CrackTime   string  `json:"crack_time"`
}

type generateResponse struct {
	Password    string           `json:"password"`
	ID          string           `json:"id"`
	Length      int              `json:"length"`
	CreatedAt   string           `json:"created_at"`
	Timezone    string           `json:"timezone"`
	Config      configResponse   `json:"config"`
	Strength    ratingResponse   `json:"strength"`
	Suggestions []string         `json:"suggestions"`
	Estimate    estimateResponse `json:"estimate"`
	History     []historyItem    `json:"history"`
}

func (g generateRequest) overrides() service.Overrides {
	return service.Overrides{
		Preset:         g.Preset,
		Length:         g.Length,
		Upper:          g.Uppercase,
		Lower:          g.Lowercase,
		Digit:          g.Numbers,
		Symbol:         g.Symbols,
		ExcludeSimilar: g.ExcludeSimilar,
	}
}

// Generate creates a password. An empty body uses the configured defaults.
func Generate(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxGenerateBody))
		if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("%v: %v", errBadBody, err)})
			return
		}

		cfg, err := d.Passwords.BuildConfig(req.overrides())
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		res, err := d.Passwords.Generate(r.Context(), cfg, utils.ClientIP(r, d.TrustProxy))
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		writeJSON(w, http.StatusOK, generateResponse{
			Password:    res.Password.Text,
			ID:          res.Password.ID,
			Length:      res.Password.Length(),
			CreatedAt:   res.Password.CreatedAt.UTC().Format(time.RFC3339),
			Timezone:    res.Password.Timezone,
			Config:      toConfig(cfg),
			Strength:    toRating(res.Rating),
			Suggestions: suggestions(res.Missing),
			Estimate: estimateResponse{
				Score:       res.Estimate.Score,
				EntropyBits: res.Estimate.EntropyBits,
				CrackTime:   res.Estimate.CrackTime,
			},
			History: toHistory(res.History),
		})
	}
}
