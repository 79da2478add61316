package api

import (
	"net/http"
	"time"

	"pdv/m/domain"
	"pdv/m/internal/apperr"
	"pdv/m/internal/auth"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      domain.User `json:"user"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := h.decodeRequest(r, &req); err != nil {
		respondErr(w, r, err)
		return
	}
	user, err := h.users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	h.startSession(w, r, http.StatusCreated, user)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := h.decodeRequest(r, &req); err != nil {
		respondErr(w, r, err)
		return
	}
	user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	h.startSession(w, r, http.StatusOK, user)
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, status int, user domain.User) {
	token, expires, err := h.issuer.Issue(user)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(h.issuer.TTL().Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	respondJSON(w, status, authResponse{Token: token, ExpiresAt: expires, User: user})
}

// me returns the current user, or null for anonymous callers.
func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.UserID(r.Context())
	if !ok {
		respondJSON(w, http.StatusOK, nil)
		return
	}
	user, err := h.users.Get(r.Context(), id)
	if apperr.IsNotFound(err) {
		respondJSON(w, http.StatusOK, nil)
		return
	}
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
