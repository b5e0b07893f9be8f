package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/passgen/internal/config"
	"github.com/MrSnakeDoc/passgen/internal/httpserver/deps"
)

type componentStatus struct {
	OK            bool   `json:"ok"`
	PresetsLoaded *int   `json:"presets_loaded,omitempty"`
	HistorySize   *int   `json:"history_size,omitempty"`
	LastReload    string `json:"last_reload,omitempty"`
	Mode          string `json:"mode,omitempty"`
	Impact        string `json:"impact,omitempty"`
	Error         string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		historySize := len(d.Passwords.History())

		components := map[string]componentStatus{
			"store":    checkStore(r.Context(), d, historySize),
			"presets":  presetsStatus(d),
			"timezone": timezoneStatus(d),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

// determineMode is "degraded" when history persistence is lost,
// "limited" when only optional components are down, else "optimal".
func determineMode(components map[string]componentStatus) string {
	if store, ok := components["store"]; ok && !store.OK {
		return "degraded"
	}
	for _, c := range components {
		if !c.OK {
			return "limited"
		}
	}
	return "optimal"
}

func checkStore(ctx context.Context, d deps.Deps, historySize int) componentStatus {
	if d.StoreBackend == config.BackendMemory || d.RedisClient == nil {
		return componentStatus{
			OK:          true,
			Mode:        config.BackendMemory,
			Impact:      "history-lost-on-restart",
			HistorySize: &historySize,
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{
			OK:          false,
			Mode:        config.BackendRedis,
			Impact:      "history-not-persisted",
			HistorySize: &historySize,
			Error:       "timeout",
		}
	}

	return componentStatus{
		OK:          true,
		Mode:        config.BackendRedis,
		HistorySize: &historySize,
	}
}

func presetsStatus(d deps.Deps) componentStatus {
	if d.PresetsFile == "" || d.Presets == nil {
		return componentStatus{OK: true, Mode: "disabled"}
	}

	count := d.Presets.Len()
	lastReload := "never"
	if t := d.Presets.LastReload(); !t.IsZero() {
		lastReload = t.Format("2006-01-02 15:04:05")
	}
	return componentStatus{
		OK:            count > 0,
		PresetsLoaded: &count,
		LastReload:    lastReload,
	}
}

func timezoneStatus(d deps.Deps) componentStatus {
	if d.Timezone == nil {
		return componentStatus{OK: true, Mode: "disabled"}
	}
	state := d.Timezone.BreakerState()
	st := componentStatus{
		OK:   state != "open",
		Mode: "breaker-" + state,
	}
	if !st.OK {
		st.Impact = "fallback-" + d.Timezone.Fallback()
	}
	return st
}
