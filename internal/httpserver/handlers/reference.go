package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/moraka/internal/domain"
	"github.com/MrSnakeDoc/moraka/internal/httpserver/deps"
)

type phoneResponse struct {
	Input     string `json:"input"`
	Canonical string `json:"canonical,omitempty"`
	Valid     bool   `json:"valid"`
}

type referenceResponse struct {
	Cities         []string                     `json:"cities"`
	Categories     []domain.Category            `json:"categories"`
	CategoryGroups map[string][]domain.Category `json:"category_groups"`
	PickupPlaces   []string                     `json:"pickup_places"`
}

// NormalizePhone reports the canonical form of ?phone=. It needs no session.
func NormalizePhone(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("phone")
		canonical, ok := domain.NormalizePhone(raw)
		writeJSON(w, d.Logger, http.StatusOK, phoneResponse{
			Input:     raw,
			Canonical: canonical,
			Valid:     ok,
		})
	}
}

// Reference returns the closed sets the forms and filters are built from.
func Reference(d deps.Deps) http.HandlerFunc {
	body := referenceResponse{
		Cities:         domain.Cities,
		Categories:     domain.Categories,
		CategoryGroups: domain.CategoryGroups,
		PickupPlaces:   domain.PickupPlaces,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		writeJSON(w, d.Logger, http.StatusOK, body)
	}
}
