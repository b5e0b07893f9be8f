package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/passgen/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready bool   `json:"ready"`
	Store string `json:"store"`
	Error string `json:"error,omitempty"`
}

// Readyz reports 503 while the Redis backend does not answer pings.
// The memory backend is always ready.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := readyzResponse{Ready: true, Store: d.StoreBackend}

		if d.RedisClient != nil {
			ctx, cancel := context.WithTimeout(r.Context(), time.Second)
			defer cancel()
			if err := d.RedisClient.Ping(ctx).Err(); err != nil {
				resp.Ready = false
				resp.Error = "redis unreachable"
			}
		}

		status := http.StatusOK
		if !resp.Ready {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	}
}
