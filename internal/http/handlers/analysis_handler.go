package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lumiskin/lumiskin-api/internal/domain"
	mw "github.com/lumiskin/lumiskin-api/internal/http/middleware"
	"github.com/lumiskin/lumiskin-api/internal/http/response"
	"github.com/lumiskin/lumiskin-api/internal/service"
	"github.com/lumiskin/lumiskin-api/pkg/auth"
)

type AnalysisHandler struct {
	Analyses service.AnalysisService
	Sessions *auth.SessionManager
}

func NewAnalysisHandler(analyses service.AnalysisService, sessions *auth.SessionManager) *AnalysisHandler {
	return &AnalysisHandler{Analyses: analyses, Sessions: sessions}
}

func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(mw.RequireSession(h.Sessions))
	r.Post("/", h.create)
	r.Get("/history", h.history)
	r.Get("/{id}", h.getByID)
	return r
}

func (h *AnalysisHandler) create(w http.ResponseWriter, r *http.Request) {
	claims := mw.Claims(r)

	var in domain.CreateAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	a, err := h.Analyses.Create(r.Context(), claims.CustomerID, &in)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, a)
}

func (h *AnalysisHandler) getByID(w http.ResponseWriter, r *http.Request) {
	claims := mw.Claims(r)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, "Invalid analysis id")
		return
	}

	a, err := h.Analyses.Get(r.Context(), claims.CustomerID, id)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, a)
}

func (h *AnalysisHandler) history(w http.ResponseWriter, r *http.Request) {
	claims := mw.Claims(r)

	page, limit := 1, 10
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 50 {
			limit = n
		}
	}

	hist, err := h.Analyses.History(r.Context(), claims.CustomerID, page, limit)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, hist)
}
