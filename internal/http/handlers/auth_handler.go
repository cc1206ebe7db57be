package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumiskin/lumiskin-api/internal/domain"
	mw "github.com/lumiskin/lumiskin-api/internal/http/middleware"
	"github.com/lumiskin/lumiskin-api/internal/http/response"
	"github.com/lumiskin/lumiskin-api/internal/ratelimit"
	"github.com/lumiskin/lumiskin-api/internal/service"
	"github.com/lumiskin/lumiskin-api/pkg/auth"
	"github.com/lumiskin/lumiskin-api/pkg/config"
)

type AuthHandler struct {
	Auth     service.AuthService
	Sessions *auth.SessionManager
	Limiter  ratelimit.Limiter
	RL       config.RateLimitConfig
}

func NewAuthHandler(authSvc service.AuthService, sessions *auth.SessionManager, limiter ratelimit.Limiter, rl config.RateLimitConfig) *AuthHandler {
	return &AuthHandler{Auth: authSvc, Sessions: sessions, Limiter: limiter, RL: rl}
}

func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.register)
	r.With(mw.RateLimit(h.Limiter, "login", h.RL.LoginAttempts, h.RL.LoginWindow)).
		Post("/login", h.login)
	r.Post("/logout", h.logout)
	r.With(mw.OptionalSession(h.Sessions)).Get("/me", h.me)
	return r
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var in domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	c, err := h.Auth.Register(r.Context(), &in)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	h.issueSession(w, c)
	response.JSON(w, http.StatusCreated, map[string]any{
		"success":  true,
		"customer": c.ToInfo(0),
	})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var in domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	c, err := h.Auth.Login(r.Context(), &in)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	info, err := h.Auth.Me(r.Context(), c.ID)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	h.issueSession(w, c)
	response.JSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"customer": info,
	})
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.ClearCookie(w)
	response.JSON(w, http.StatusOK, map[string]any{"success": true})
}

// me reports identity for a valid session. "Not logged in" is a normal 200,
// never an error.
func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	claims := mw.Claims(r)
	if claims == nil {
		response.JSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	info, err := h.Auth.Me(r.Context(), claims.CustomerID)
	if err != nil {
		// A stale cookie for a deleted account is still "not logged in".
		response.JSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"customer":      info,
	})
}

func (h *AuthHandler) issueSession(w http.ResponseWriter, c *domain.Customer) {
	token, err := h.Sessions.Issue(c.ID, c.Email)
	if err != nil {
		return
	}
	h.Sessions.SetCookie(w, token)
}
