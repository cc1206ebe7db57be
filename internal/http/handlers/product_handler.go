package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumiskin/lumiskin-api/internal/http/response"
	"github.com/lumiskin/lumiskin-api/internal/repo/postgres"
)

// ProductHandler reads straight from the repo; the catalog has no business
// rules beyond filtering.
type ProductHandler struct {
	Products postgres.ProductsRepo
}

func NewProductHandler(products postgres.ProductsRepo) *ProductHandler {
	return &ProductHandler{Products: products}
}

func (h *ProductHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Get("/{slug}", h.getBySlug)
	return r
}

func (h *ProductHandler) list(w http.ResponseWriter, r *http.Request) {
	products, err := h.Products.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"products": products,
		"count":    len(products),
	})
}

func (h *ProductHandler) getBySlug(w http.ResponseWriter, r *http.Request) {
	p, err := h.Products.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		response.Error(w, r, err)
		return
	}
	if p == nil {
		response.NotFound(w, "Product not found")
		return
	}
	response.JSON(w, http.StatusOK, p)
}
