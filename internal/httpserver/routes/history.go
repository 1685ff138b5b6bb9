package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/ceacwatch/ceacwatch/internal/httpserver/deps"
	"github.com/ceacwatch/ceacwatch/internal/httpserver/handlers"
)

func init() { Register(registerHistory) }

func registerHistory(r chi.Router, d deps.Deps) {
	r.Get("/api/history/{application_id}", handlers.History(d))
}
