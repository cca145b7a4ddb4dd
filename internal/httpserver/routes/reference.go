package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/moraka/internal/httpserver/deps"
	"github.com/MrSnakeDoc/moraka/internal/httpserver/handlers"
)

func init() { Register(registerReference) }

func registerReference(r chi.Router, d deps.Deps) {
	r.Get("/phone/normalize", handlers.NormalizePhone(d))
	r.Get("/reference", handlers.Reference(d))
}
