package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/lumiskin/lumiskin-api/internal/http/middleware"
	"github.com/lumiskin/lumiskin-api/internal/http/response"
	"github.com/lumiskin/lumiskin-api/internal/ratelimit"
	"github.com/lumiskin/lumiskin-api/internal/service"
	"github.com/lumiskin/lumiskin-api/pkg/auth"
	"github.com/lumiskin/lumiskin-api/pkg/config"
)

type DiscountHandler struct {
	Discounts service.DiscountService
	Sessions  *auth.SessionManager
	Limiter   ratelimit.Limiter
	RL        config.RateLimitConfig
}

func NewDiscountHandler(discounts service.DiscountService, sessions *auth.SessionManager, limiter ratelimit.Limiter, rl config.RateLimitConfig) *DiscountHandler {
	return &DiscountHandler{Discounts: discounts, Sessions: sessions, Limiter: limiter, RL: rl}
}

func (h *DiscountHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(mw.RequireSession(h.Sessions)).Get("/my-codes", h.myCodes)
	r.With(mw.RateLimit(h.Limiter, "discount-validate", h.RL.ValidateAttempts, h.RL.ValidateWindow)).
		Get("/validate/{code}", h.validate)
	return r
}

func (h *DiscountHandler) myCodes(w http.ResponseWriter, r *http.Request) {
	claims := mw.Claims(r)

	resp, err := h.Discounts.MyCodes(r.Context(), claims.CustomerID)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, resp)
}

func (h *DiscountHandler) validate(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	resp, err := h.Discounts.Validate(r.Context(), code)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, resp)
}
