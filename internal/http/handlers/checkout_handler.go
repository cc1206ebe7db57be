package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumiskin/lumiskin-api/internal/domain"
	mw "github.com/lumiskin/lumiskin-api/internal/http/middleware"
	"github.com/lumiskin/lumiskin-api/internal/http/response"
	"github.com/lumiskin/lumiskin-api/internal/service"
	"github.com/lumiskin/lumiskin-api/pkg/auth"
)

type CheckoutHandler struct {
	Checkout service.CheckoutService
	Sessions *auth.SessionManager
}

func NewCheckoutHandler(checkout service.CheckoutService, sessions *auth.SessionManager) *CheckoutHandler {
	return &CheckoutHandler{Checkout: checkout, Sessions: sessions}
}

func (h *CheckoutHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(mw.RequireSession(h.Sessions))
	r.Post("/", h.create)
	return r
}

func (h *CheckoutHandler) create(w http.ResponseWriter, r *http.Request) {
	claims := mw.Claims(r)

	var in domain.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	resp, err := h.Checkout.Checkout(r.Context(), claims.CustomerID, &in)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, resp)
}
