// Package handler exposes the session over a JSON HTTP API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"whenwin/model"
	"whenwin/session"
)

// SessionVerifier resolves a bearer token to the viewer it belongs to.
type SessionVerifier interface {
	VerifySession(ctx context.Context, idToken string) (*model.UserProfile, error)
}

// Authenticator is the slice of the auth connector the handlers need.
type Authenticator interface {
	SessionVerifier
	session.AuthService
}

type Server struct {
	session *session.Controller
	auth    Authenticator
	mux     *http.ServeMux
}

func NewServer(ctrl *session.Controller, auth Authenticator) *Server {
	s := &Server{
		session: ctrl,
		auth:    auth,
		mux:     http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("POST /api/auth/signup", s.handleSignUp)
	s.mux.HandleFunc("POST /api/auth/login", s.handleLogIn)
	s.mux.HandleFunc("POST /api/auth/logout", s.handleLogOut)
	s.mux.HandleFunc("POST /api/auth/password-strength", s.handlePasswordStrength)

	s.mux.HandleFunc("GET /api/categories", s.handleCategories)
	s.mux.HandleFunc("GET /api/location", s.handleGetLocation)
	s.mux.HandleFunc("PUT /api/location", s.handleSetLocation)

	s.mux.HandleFunc("GET /api/events", s.handleListEvents)
	s.mux.HandleFunc("POST /api/events", s.handleCreateEvent)
	s.mux.HandleFunc("PUT /api/events/{id}", s.handleUpdateEvent)
	s.mux.HandleFunc("DELETE /api/events/{id}", s.handleDeleteEvent)
	s.mux.HandleFunc("POST /api/events/bulk", s.handleBulkCreate)
	s.mux.HandleFunc("GET /api/events/template.csv", s.handleTemplate)

	s.mux.HandleFunc("POST /api/favorites/{id}", s.handleToggleFavorite)
	s.mux.HandleFunc("POST /api/calendar/{id}", s.handleToggleCalendar)
	s.mux.HandleFunc("GET /api/calendar/{id}/ics", s.handleArtifact)
	s.mux.HandleFunc("GET /api/calendar", s.handleMonthGrid)

	s.mux.HandleFunc("GET /api/notifications", s.handleNotifications)
	s.mux.HandleFunc("GET /api/profile", s.handleProfile)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// viewer resolves the request's bearer token. When the verified viewer is
// not the session's current user (fresh process, still-valid token) the
// session is restored first.
func (s *Server) viewer(r *http.Request) (*model.UserProfile, error) {
	token := bearerToken(r)
	if token == "" {
		return nil, model.ErrNotAuthenticated
	}

	profile, err := s.auth.VerifySession(r.Context(), token)
	if err != nil {
		return nil, err
	}

	current := s.session.User()
	if current == nil || current.UserID != profile.UserID {
		s.session.Restore(r.Context(), profile)
	}
	return profile, nil
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("error writing response")
	}
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	var verr model.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "validation failed", Fields: verr})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrNotAuthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, model.ErrEventDoesNotExist), errors.Is(err, model.ErrUserDoesNotExist):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrNotEventOwner):
		status = http.StatusForbidden
	case errors.Is(err, model.ErrToggleInFlight):
		status = http.StatusConflict
	case errors.Is(err, model.ErrPersistenceFailure):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError || status == http.StatusBadGateway {
		log.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return model.ValidationError{"body": "invalid JSON payload"}
	}
	return nil
}
