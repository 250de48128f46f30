package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/corveoperu/cuervo-blanco-web/internal/catalog/domain"
	"github.com/corveoperu/cuervo-blanco-web/internal/catalog/filter"
	"github.com/corveoperu/cuervo-blanco-web/internal/catalog/repository"
	"github.com/corveoperu/cuervo-blanco-web/internal/catalog/service"
	"github.com/go-chi/chi/v5"
)

type CatalogHandler struct {
	catalog *service.CatalogService
}

func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// Browse handles GET /products with the storefront filter query params.
func (h *CatalogHandler) Browse(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseCriteria(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_query", err.Error())
		return
	}

	page, err := h.catalog.Browse(r.Context(), criteria)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to browse catalog")
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(w, r)
	if !ok {
		return
	}

	product, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "product not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get product")
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// ListAll handles GET /admin/products, inactive products included.
func (h *CatalogHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListAll(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list products")
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var product domain.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.catalog.Create(r.Context(), &product); err != nil {
		handleCatalogError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, product)
}

func (h *CatalogHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(w, r)
	if !ok {
		return
	}

	var product domain.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	product.ID = id

	if err := h.catalog.Update(r.Context(), &product); err != nil {
		handleCatalogError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *CatalogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(w, r)
	if !ok {
		return
	}

	if err := h.catalog.Delete(r.Context(), id); err != nil {
		handleCatalogError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func handleCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "not_found", "product not found")
	case errors.Is(err, service.ErrInvalidProduct),
		errors.Is(err, service.ErrEmptySpecKey),
		errors.Is(err, service.ErrNegativeStock):
		respondError(w, http.StatusBadRequest, "invalid_product", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func productIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return 0, false
	}
	return id, true
}

func parseCriteria(r *http.Request) (filter.Criteria, error) {
	q := r.URL.Query()
	criteria := filter.Criteria{
		Search:     q.Get("search"),
		Sort:       filter.SortOrder(q.Get("sort")),
		Categories: splitParam(q.Get("categories")),
		Brands:     splitParam(q.Get("brands")),
	}

	var err error
	if v := q.Get("min_price"); v != "" {
		if criteria.MinPrice, err = strconv.ParseFloat(v, 64); err != nil {
			return criteria, errors.New("min_price must be a number")
		}
	}
	if v := q.Get("max_price"); v != "" {
		if criteria.MaxPrice, err = strconv.ParseFloat(v, 64); err != nil {
			return criteria, errors.New("max_price must be a number")
		}
	}
	if v := q.Get("page"); v != "" {
		if criteria.Page, err = strconv.Atoi(v); err != nil {
			return criteria, errors.New("page must be an integer")
		}
	}
	return criteria, nil
}

func splitParam(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := parts[:0]
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
