package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/MrSnakeDoc/passgen/internal/domain"
	"github.com/MrSnakeDoc/passgen/internal/logger"
)

type errorResponse struct {
	Error string `json:"error"`
}

type ratingResponse struct {
	Score   int    `json:"score"`
	Max     int    `json:"max"`
	Tier    string `json:"tier"`
	Color   string `json:"color"`
	Percent int    `json:"percent"`
}

type historyItem struct {
	Index     int    `json:"index"`
	ID        string `json:"id,omitempty"`
	Password  string `json:"password"`
	Length    int    `json:"length"`
	CreatedAt string `json:"created_at,omitempty"`
	Timezone  string `json:"timezone,omitempty"`
}

type configResponse struct {
	Length         int      `json:"length"`
	Categories     []string `json:"categories"`
	ExcludeSimilar bool     `json:"exclude_similar"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to status codes. Internal errors are logged
// and hidden from the client.
func writeError(w http.ResponseWriter, log logger.Logger, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Error("request failed", logger.Error(err))
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrIndexOutOfRange), errors.Is(err, domain.ErrEntryNotFound):
		return http.StatusNotFound
	case domain.IsValidationError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func toRating(r domain.Rating) ratingResponse {
	return ratingResponse{
		Score:   r.Score,
		Max:     domain.MaxScore,
		Tier:    string(r.Tier),
		Color:   r.Color,
		Percent: r.Percent,
	}
}

func toConfig(c domain.GenerationConfig) configResponse {
	return configResponse{
		Length:         c.Length,
		Categories:     c.Categories.Names(),
		ExcludeSimilar: c.ExcludeSimilar,
	}
}

func toHistory(h domain.History) []historyItem {
	out := make([]historyItem, 0, len(h))
	for i, e := range h {
		item := historyItem{
			Index:    i,
			ID:       e.ID,
			Password: e.Text,
			Length:   e.Length(),
			Timezone: e.Timezone,
		}
		if !e.CreatedAt.IsZero() {
			item.CreatedAt = e.CreatedAt.UTC().Format(time.RFC3339)
		}
		out = append(out, item)
	}
	return out
}

// suggestions returns "Add <label>" hints for the missing categories.
func suggestions(missing []domain.Category) []string {
	out := make([]string, 0, len(missing))
	for _, c := range missing {
		out = append(out, "Add "+c.Label())
	}
	return out
}

func parseIndex(raw string) (int, error) {
	i, err := strconv.Atoi(raw)
	if err != nil || i < 0 {
		return 0, domain.ErrIndexOutOfRange
	}
	return i, nil
}
