package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ceacwatch/ceacwatch/internal/httpserver/deps"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

type entry struct {
	reg Registrar
	mws []Middleware
}

// Populated by init() in each route file.
var registry []entry

// Register a registrar with optional per-route middlewares.
func Register(reg Registrar, mws ...Middleware) {
	registry = append(registry, entry{reg: reg, mws: mws})
}

// RegisterAll mounts every registered route group. Called once from server.New().
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, e := range registry {
		target := chi.Router(r)
		if len(e.mws) > 0 {
			target = r.With(e.mws...)
		}
		e.reg(target, d)
	}
}
