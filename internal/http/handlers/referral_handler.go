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

type ReferralHandler struct {
	Referrals service.ReferralService
	Sessions  *auth.SessionManager
}

func NewReferralHandler(referrals service.ReferralService, sessions *auth.SessionManager) *ReferralHandler {
	return &ReferralHandler{Referrals: referrals, Sessions: sessions}
}

func (h *ReferralHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(mw.RequireSession(h.Sessions))
	r.Get("/", h.get)
	r.Post("/", h.issue)
	r.Post("/apply", h.apply)
	return r
}

func (h *ReferralHandler) get(w http.ResponseWriter, r *http.Request) {
	h.getOrCreate(w, r, http.StatusOK)
}

func (h *ReferralHandler) issue(w http.ResponseWriter, r *http.Request) {
	h.getOrCreate(w, r, http.StatusCreated)
}

func (h *ReferralHandler) getOrCreate(w http.ResponseWriter, r *http.Request, status int) {
	claims := mw.Claims(r)

	resp, err := h.Referrals.GetOrCreate(r.Context(), claims.CustomerID)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.JSON(w, status, resp)
}

func (h *ReferralHandler) apply(w http.ResponseWriter, r *http.Request) {
	claims := mw.Claims(r)

	var in domain.ApplyReferralRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	resp, err := h.Referrals.Apply(r.Context(), claims.CustomerID, in.Code)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, resp)
}
