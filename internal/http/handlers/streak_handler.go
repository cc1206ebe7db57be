package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/lumiskin/lumiskin-api/internal/http/middleware"
	"github.com/lumiskin/lumiskin-api/internal/http/response"
	"github.com/lumiskin/lumiskin-api/internal/service"
	"github.com/lumiskin/lumiskin-api/pkg/auth"
)

type StreakHandler struct {
	Streaks  service.StreakService
	Sessions *auth.SessionManager
}

func NewStreakHandler(streaks service.StreakService, sessions *auth.SessionManager) *StreakHandler {
	return &StreakHandler{Streaks: streaks, Sessions: sessions}
}

func (h *StreakHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(mw.RequireSession(h.Sessions))
	r.Get("/status", h.status)
	return r
}

func (h *StreakHandler) status(w http.ResponseWriter, r *http.Request) {
	claims := mw.Claims(r)

	resp, err := h.Streaks.Status(r.Context(), claims.CustomerID)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, resp)
}
