package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/moraka/internal/httpserver/deps"
	"github.com/MrSnakeDoc/moraka/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/moraka/internal/httpserver/mw"
)

func init() { Register(registerListings) }

func registerListings(r chi.Router, d deps.Deps) {
	r.Route("/listings", func(r chi.Router) {
		r.Use(mw.RequireSession(d.Sessions, d.Logger))
		r.Get("/", handlers.ListListings(d))
		r.Post("/", handlers.PostListing(d))
		r.Get("/{id}", handlers.GetListing(d))
		r.Post("/{id}/request", handlers.RequestListing(d))
	})
}
