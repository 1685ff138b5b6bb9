package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/ceacwatch/ceacwatch/internal/httpserver/deps"
	"github.com/ceacwatch/ceacwatch/internal/httpserver/handlers"
	"github.com/ceacwatch/ceacwatch/internal/httpserver/mw"
)

func init() { Register(registerVisaStatus) }

func registerVisaStatus(r chi.Router, d deps.Deps) {
	r.Route("/api/visa-status", func(r chi.Router) {
		// Session-spawning routes pin a Chrome tab each; rate-limit them.
		spawning := chi.Router(r)
		if d.RateLimitRPS > 0 {
			spawning = r.With(mw.RateLimit(mw.RateLimitConfig{
				Burst:      d.RateLimitBurst,
				RPS:        d.RateLimitRPS,
				TrustProxy: d.TrustProxy,
			}))
		}
		spawning.Post("/start", handlers.Start(d))
		spawning.Post("/check", handlers.Check(d))
		spawning.Post("/check-auto", handlers.CheckAuto(d))

		r.Post("/submit", handlers.Submit(d))
		r.Post("/cancel", handlers.Cancel(d))
		r.Get("/sessions", handlers.Sessions(d))
	})
}
