package handler

import (
	"net/http"

	"whenwin/model"
	"whenwin/validate"
)

type signUpPayload struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	City            string `json:"city"`
	State           string `json:"state"`
}

type authResponse struct {
	User  *model.UserProfile `json:"user"`
	Token string             `json:"token"`
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var payload signUpPayload
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	profile, token, err := s.session.SignUp(r.Context(), payload.Email, payload.Password, payload.ConfirmPassword, payload.Name, payload.City, payload.State)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{User: profile, Token: token})
}

type passwordStrengthPayload struct {
	Password string `json:"password"`
}

// handlePasswordStrength scores a candidate password so the signup form can
// show live feedback before submitting.
func (s *Server) handlePasswordStrength(w http.ResponseWriter, r *http.Request) {
	var payload passwordStrengthPayload
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, validate.PasswordStrength(payload.Password))
}

type logInPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogIn(w http.ResponseWriter, r *http.Request) {
	var payload logInPayload
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	profile, token, err := s.session.LogIn(r.Context(), payload.Email, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{User: profile, Token: token})
}

func (s *Server) handleLogOut(w http.ResponseWriter, r *http.Request) {
	if _, err := s.viewer(r); err != nil {
		writeError(w, err)
		return
	}
	if err := s.session.LogOut(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}
