package handlers

import (
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/moraka/internal/domain"
	"github.com/MrSnakeDoc/moraka/internal/httpserver/deps"
	"github.com/MrSnakeDoc/moraka/internal/httpserver/mw"
	"github.com/MrSnakeDoc/moraka/internal/logger"
	"github.com/MrSnakeDoc/moraka/internal/metrics"
)

type registerRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	City  string `json:"city"`
}

type registerResponse struct {
	SessionID string      `json:"session_id"`
	User      domain.User `json:"user"`
}

var stepHints = map[domain.Step]string{
	domain.NameStep:  "Name is required",
	domain.PhoneStep: "Enter a valid Botswana phone number",
	domain.CityStep:  "Select your city",
}

// Register walks the onboarding steps with the submitted draft and opens a
// session when every step passes.
func Register(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, d.Logger, http.StatusBadRequest, "invalid JSON body")
			return
		}

		user, step, err := domain.Register(domain.RegistrationDraft{
			Name:  req.Name,
			Phone: req.Phone,
			City:  req.City,
		})
		metrics.Registrations.WithLabelValues(step.String()).Inc()
		if err != nil {
			// Blocked steps are expected input errors
			writeJSON(w, d.Logger, http.StatusUnprocessableEntity, errorResponse{
				Error: stepHints[step],
				Step:  step.String(),
			})
			return
		}

		s, err := d.Sessions.Start(r.Context(), user)
		if err != nil {
			if errors.Is(err, domain.ErrSessionLimit) || errors.Is(err, domain.ErrShuttingDown) {
				writeError(w, d.Logger, http.StatusServiceUnavailable, err.Error())
				return
			}
			d.Logger.Error("failed to start session", logger.Error(err))
			writeError(w, d.Logger, http.StatusInternalServerError, "failed to start session")
			return
		}

		w.Header().Set(mw.SessionHeader, s.ID)
		writeJSON(w, d.Logger, http.StatusCreated, registerResponse{
			SessionID: s.ID,
			User:      s.User,
		})
	}
}

// EndSession stops the caller's session and its background feed.
func EndSession(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := mw.SessionFrom(r.Context())
		if !ok {
			writeError(w, d.Logger, http.StatusUnauthorized, "unknown session")
			return
		}

		if err := d.Sessions.End(s.ID); err != nil {
			// Ended concurrently
			writeError(w, d.Logger, http.StatusNotFound, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
