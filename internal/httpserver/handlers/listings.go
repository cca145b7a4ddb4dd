package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/moraka/internal/domain"
	"github.com/MrSnakeDoc/moraka/internal/httpserver/deps"
	"github.com/MrSnakeDoc/moraka/internal/httpserver/mw"
	"github.com/MrSnakeDoc/moraka/internal/logger"
	"github.com/MrSnakeDoc/moraka/internal/session"
)

type listingsResponse struct {
	Count    int                   `json:"count"`
	Listings []session.ListingView `json:"listings"`
}

type requestResponse struct {
	ListingID string `json:"listing_id"`
	Message   string `json:"message"`
}

// ListListings returns the caller's catalog filtered by ?q=, ?city= and ?category=.
func ListListings(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := mw.SessionFrom(r.Context())
		if !ok {
			writeError(w, d.Logger, http.StatusUnauthorized, "unknown session")
			return
		}

		q := r.URL.Query()
		views := s.Browse(domain.Predicate{
			Search:   q.Get("q"),
			City:     strings.TrimSpace(q.Get("city")),
			Category: strings.TrimSpace(q.Get("category")),
		})

		writeJSON(w, d.Logger, http.StatusOK, listingsResponse{
			Count:    len(views),
			Listings: views,
		})
	}
}

// GetListing returns one listing of the caller's catalog.
func GetListing(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := mw.SessionFrom(r.Context())
		if !ok {
			writeError(w, d.Logger, http.StatusUnauthorized, "unknown session")
			return
		}

		v, err := s.Listing(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, d.Logger, http.StatusNotFound, domain.ErrListingNotFound.Error())
			return
		}
		writeJSON(w, d.Logger, http.StatusOK, v)
	}
}

// PostListing validates the posting form and inserts the listing.
func PostListing(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := mw.SessionFrom(r.Context())
		if !ok {
			writeError(w, d.Logger, http.StatusUnauthorized, "unknown session")
			return
		}

		var draft domain.ListingDraft
		if err := decodeJSON(w, r, &draft); err != nil {
			writeError(w, d.Logger, http.StatusBadRequest, "invalid JSON body")
			return
		}

		listing, err := s.Post(r.Context(), draft)
		if err != nil {
			var verrs domain.ValidationErrors
			switch {
			case errors.As(err, &verrs):
				writeJSON(w, d.Logger, http.StatusUnprocessableEntity, errorResponse{
					Error:  "invalid listing",
					Fields: verrs,
				})
			case errors.Is(err, domain.ErrDuplicateListing):
				writeError(w, d.Logger, http.StatusConflict, err.Error())
			case errors.Is(err, domain.ErrSessionEnded):
				writeError(w, d.Logger, http.StatusUnauthorized, "unknown session")
			default:
				d.Logger.Error("failed to post listing", logger.Error(err))
				writeError(w, d.Logger, http.StatusInternalServerError, "failed to post listing")
			}
			return
		}

		writeJSON(w, d.Logger, http.StatusCreated, listing)
	}
}

// RequestListing records the caller's interest in a listing.
func RequestListing(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := mw.SessionFrom(r.Context())
		if !ok {
			writeError(w, d.Logger, http.StatusUnauthorized, "unknown session")
			return
		}

		l, err := s.Request(chi.URLParam(r, "id"))
		if errors.Is(err, domain.ErrSessionEnded) {
			writeError(w, d.Logger, http.StatusUnauthorized, "unknown session")
			return
		}
		if err != nil {
			writeError(w, d.Logger, http.StatusNotFound, domain.ErrListingNotFound.Error())
			return
		}

		writeJSON(w, d.Logger, http.StatusAccepted, requestResponse{
			ListingID: l.ID,
			Message:   `Your request for "` + l.Title + `" has been sent. You'll receive contact details soon.`,
		})
	}
}
