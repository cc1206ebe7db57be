package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumiskin/lumiskin-api/internal/domain"
	mw "github.com/lumiskin/lumiskin-api/internal/http/middleware"
	"github.com/lumiskin/lumiskin-api/internal/http/response"
	"github.com/lumiskin/lumiskin-api/internal/service"
	"github.com/lumiskin/lumiskin-api/pkg/config"
)

type GuestHandler struct {
	Guests service.GuestService
	Cfg    config.GuestConfig
	Secure bool
}

func NewGuestHandler(guests service.GuestService, cfg config.GuestConfig, secure bool) *GuestHandler {
	return &GuestHandler{Guests: guests, Cfg: cfg, Secure: secure}
}

func (h *GuestHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/start", h.start)
	return r
}

func (h *GuestHandler) start(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Guests.Start(r.Context(), mw.ClientIP(r))
	if err != nil {
		response.Error(w, r, err)
		return
	}

	// Mirror the token into a short-lived cookie for browser convenience.
	http.SetCookie(w, &http.Cookie{
		Name:     h.Cfg.CookieName,
		Value:    sess.Token,
		Path:     "/",
		MaxAge:   int(h.Cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	response.JSON(w, http.StatusOK, domain.GuestStartResponse{
		Success:      true,
		SessionToken: sess.Token,
		ExpiresAt:    sess.ExpiresAt,
	})
}
