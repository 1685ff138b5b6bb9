package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/ceacwatch/ceacwatch/internal/httpserver/deps"
	"github.com/ceacwatch/ceacwatch/internal/httpserver/handlers"
)

func init() { Register(registerLocations) }

func registerLocations(r chi.Router, d deps.Deps) {
	r.Post("/api/locations/reload", handlers.Reload(d))
}
