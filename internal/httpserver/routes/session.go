package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/moraka/internal/httpserver/deps"
	"github.com/MrSnakeDoc/moraka/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/moraka/internal/httpserver/mw"
)

func init() { Register(registerSession) }

func registerSession(r chi.Router, d deps.Deps) {
	r.Post("/register", handlers.Register(d))
	r.With(mw.RequireSession(d.Sessions, d.Logger)).Delete("/session", handlers.EndSession(d))
}
