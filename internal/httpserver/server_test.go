package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/passgen/internal/config"
	"github.com/MrSnakeDoc/passgen/internal/domain"
	"github.com/MrSnakeDoc/passgen/internal/history"
	"github.com/MrSnakeDoc/passgen/internal/httpserver/deps"
	"github.com/MrSnakeDoc/passgen/internal/logger"
	"github.com/MrSnakeDoc/passgen/internal/presets"
	"github.com/MrSnakeDoc/passgen/internal/service"
	"github.com/MrSnakeDoc/passgen/internal/store/memory"
	redisstore "github.com/MrSnakeDoc/passgen/internal/store/redis"
	"github.com/MrSnakeDoc/passgen/internal/timezone"
)

func newTestDeps(t *testing.T) deps.Deps {
	t.Helper()
	log := logger.Nop()

	store := redisstore.NewStore(memory.NewKV(), "test:")
	hist := history.NewService(store, log)

	reg := presets.NewRegistry()
	reg.Replace([]domain.Preset{{
		Name:        "pin",
		Description: "digits only",
		Config:      domain.GenerationConfig{Length: 6, Categories: domain.NewCategorySet(domain.Digit)},
	}})

	tz := timezone.New(timezone.Options{Fallback: "Europe/Paris"}, nil, nil, log)

	passwords := service.NewPassword(hist, tz, reg, service.Options{
		Random: domain.SeededSource(7),
		Site:   "passgen.test",
	}, log)

	return deps.Deps{
		Logger:              log,
		StartTime:           time.Now(),
		Version:             "test",
		TimeNow:             time.Now,
		StoreBackend:        config.BackendMemory,
		Passwords:           passwords,
		Presets:             reg,
		PresetsFile:         "presets.yaml",
		Timezone:            tz,
		ReloadTrigger:       make(chan struct{}, 1),
		RateLimitBurst:      100,
		RateLimitPerMin:     60,
		RateLimitMaxEntries: 100,
	}
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestGenerateDefaults(t *testing.T) {
	h := NewRouter(logger.Nop(), newTestDeps(t))

	rec := do(t, h, http.MethodPost, "/api/generate", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Len(t, body["password"], 12)
	assert.Equal(t, "Europe/Paris", body["timezone"])
	assert.Equal(t, []any{"Add Symbols"}, body["suggestions"])

	strength := body["strength"].(map[string]any)
	assert.Equal(t, float64(5), strength["score"])
	assert.Equal(t, "Strong", strength["tier"])
	assert.Equal(t, "green", strength["color"])
	assert.Equal(t, float64(83), strength["percent"])

	assert.Len(t, body["history"], 1)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestGenerateWithOptions(t *testing.T) {
	h := NewRouter(logger.Nop(), newTestDeps(t))

	rec := do(t, h, http.MethodPost, "/api/generate", `{"length":20,"symbols":true,"exclude_similar":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	pw := body["password"].(string)
	assert.Len(t, pw, 20)
	assert.False(t, strings.ContainsAny(pw, domain.SimilarCharacters))
	assert.Equal(t, float64(6), body["strength"].(map[string]any)["score"])
	assert.Empty(t, body["suggestions"])
}

func TestGeneratePreset(t *testing.T) {
	h := NewRouter(logger.Nop(), newTestDeps(t))

	rec := do(t, h, http.MethodPost, "/api/generate", `{"preset":"PIN"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	pw := decode(t, rec)["password"].(string)
	assert.Len(t, pw, 6)
	assert.Empty(t, strings.Trim(pw, domain.DigitAlphabet))
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"no categories", `{"uppercase":false,"lowercase":false,"numbers":false}`, http.StatusBadRequest},
		{"too long", `{"length":40}`, http.StatusBadRequest},
		{"too short", `{"length":5}`, http.StatusBadRequest},
		{"unknown preset", `{"preset":"nope"}`, http.StatusBadRequest},
		{"malformed", `{"length":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDeps(t)
			h := NewRouter(logger.Nop(), d)

			rec := do(t, h, http.MethodPost, "/api/generate", tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			assert.NotEmpty(t, decode(t, rec)["error"])
			assert.Empty(t, d.Passwords.History(), "failed generation must not touch history")
		})
	}
}

func TestGenerateEmptySelectionMessage(t *testing.T) {
	h := NewRouter(logger.Nop(), newTestDeps(t))

	rec := do(t, h, http.MethodPost, "/api/generate", `{"uppercase":false,"lowercase":false,"numbers":false}`)
	assert.Equal(t, domain.ErrEmptySelection.Error(), decode(t, rec)["error"])
}

func TestGenerateRateLimited(t *testing.T) {
	d := newTestDeps(t)
	d.RateLimitBurst = 2
	d.RateLimitPerMin = 1
	h := NewRouter(logger.Nop(), d)

	for i := 0; i < 2; i++ {
		rec := do(t, h, http.MethodPost, "/api/generate", "")
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := do(t, h, http.MethodPost, "/api/generate", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestStrength(t *testing.T) {
	h := NewRouter(logger.Nop(), newTestDeps(t))

	rec := do(t, h, http.MethodGet, "/api/strength?length=8&uppercase=false&numbers=false", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Equal(t, true, body["valid"])
	strength := body["strength"].(map[string]any)
	assert.Equal(t, float64(2), strength["score"])
	assert.Equal(t, "Weak", strength["tier"])
	assert.Equal(t, []any{"Add Uppercase", "Add Numbers", "Add Symbols"}, body["suggestions"])

	rec = do(t, h, http.MethodGet, "/api/strength?symbols=maybe", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/strength?length=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["valid"])
}

func TestPresetsList(t *testing.T) {
	h := NewRouter(logger.Nop(), newTestDeps(t))

	rec := do(t, h, http.MethodGet, "/api/presets", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "pin", list[0]["name"])
	assert.Equal(t, "digits only", list[0]["description"])
}

func TestHistoryLifecycle(t *testing.T) {
	d := newTestDeps(t)
	h := NewRouter(logger.Nop(), d)

	var ids []string
	for i := 0; i < 3; i++ {
		rec := do(t, h, http.MethodPost, "/api/generate", "")
		require.Equal(t, http.StatusOK, rec.Code)
		ids = append(ids, decode(t, rec)["id"].(string))
	}

	rec := do(t, h, http.MethodGet, "/api/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode(t, rec)["history"].([]any)
	require.Len(t, items, 3)
	assert.Equal(t, ids[2], items[0].(map[string]any)["id"])

	rec = do(t, h, http.MethodDelete, "/api/history/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["history"], 2)

	rec = do(t, h, http.MethodDelete, "/api/history/9", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/history/abc", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/history/id/"+ids[0], "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["history"], 1)

	rec = do(t, h, http.MethodDelete, "/api/history/id/"+ids[0], "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHistoryExport(t *testing.T) {
	d := newTestDeps(t)
	h := NewRouter(logger.Nop(), d)

	rec := do(t, h, http.MethodPost, "/api/generate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	pw := decode(t, rec)["password"].(string)

	rec = do(t, h, http.MethodGet, "/api/history/0/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, pw, rec.Body.String())
	assert.Equal(t, `attachment; filename="password.txt"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))

	rec = do(t, h, http.MethodGet, "/api/history/0/export?format=detailed", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Password generated by passgen.test")
	assert.Contains(t, rec.Body.String(), "Timezone:     Europe/Paris")
	assert.True(t, strings.HasSuffix(rec.Body.String(), "Password: "+pw+"\n"))

	rec = do(t, h, http.MethodGet, "/api/history/0/export?format=pdf", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/history/3/export", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHistoryRestrictedByCIDR(t *testing.T) {
	d := newTestDeps(t)
	d.AllowedCIDRS = []string{"10.0.0.0/8"}
	h := NewRouter(logger.Nop(), d)

	// httptest requests come from 192.0.2.1
	rec := do(t, h, http.MethodGet, "/api/history", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/generate", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	req.RemoteAddr = "10.1.2.3:4567"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestHistoryRestrictedByHost(t *testing.T) {
	d := newTestDeps(t)
	d.AllowedHosts = []string{"*.example.com"}
	h := NewRouter(logger.Nop(), d)

	rec := do(t, h, http.MethodGet, "/api/history", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	req.Host = "pw.example.com"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestReload(t *testing.T) {
	d := newTestDeps(t)
	h := NewRouter(logger.Nop(), d)

	rec := do(t, h, http.MethodPost, "/reload", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = do(t, h, http.MethodPost, "/reload", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	d.ReloadTrigger = nil
	h = NewRouter(logger.Nop(), d)
	rec = do(t, h, http.MethodPost, "/reload", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthReadyInfra(t *testing.T) {
	h := NewRouter(logger.Nop(), newTestDeps(t))

	rec := do(t, h, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])

	rec = do(t, h, http.MethodGet, "/readyz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["ready"])

	rec = do(t, h, http.MethodGet, "/infra", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "optimal", body["mode"])
	components := body["components"].(map[string]any)
	assert.Contains(t, components, "store")
	assert.Contains(t, components, "presets")
	assert.Contains(t, components, "timezone")
}
