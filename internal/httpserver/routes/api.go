package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/passgen/internal/httpserver/deps"
	"github.com/MrSnakeDoc/passgen/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/passgen/internal/httpserver/mw"
)

func init() { Register(registerAPI) }

func registerAPI(r chi.Router, d deps.Deps) {
	limit := mw.RateLimit(mw.RateLimitConfig{
		Burst:             d.RateLimitBurst,
		RefillPerIPPerMin: d.RateLimitPerMin,
		MaxEntries:        d.RateLimitMaxEntries,
		TrustProxy:        d.TrustProxy,
	})

	r.Route("/api", func(api chi.Router) {
		api.With(limit).Post("/generate", handlers.Generate(d))
		api.Get("/strength", handlers.Strength(d))
		api.Get("/presets", handlers.Presets(d))

		api.Group(func(h chi.Router) {
			h.Use(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger), mw.EnforceHost(d.AllowedHosts, d.Logger))
			h.Get("/history", handlers.History(d))
			h.Delete("/history/{index}", handlers.DeleteHistory(d))
			h.Delete("/history/id/{id}", handlers.DeleteHistoryID(d))
			h.Get("/history/{index}/export", handlers.ExportHistory(d))
		})
	})
}
