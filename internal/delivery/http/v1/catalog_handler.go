package v1

import (
	"net/http"

	"mollywear-backend/internal/domain"
	"mollywear-backend/internal/usecase"
	"mollywear-backend/pkg/utils"
)

type CatalogHandler struct {
	usecase *usecase.CatalogUsecase
}

func NewCatalogHandler(uc *usecase.CatalogUsecase) *CatalogHandler {
	return &CatalogHandler{usecase: uc}
}

func (h *CatalogHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	published := true
	filter := domain.ProductFilter{
		CategorySlug: q.Get("category"),
		Query:        q.Get("q"),
		MinPrice:     utils.ParseFloat(q.Get("minPrice"), 0),
		MaxPrice:     utils.ParseFloat(q.Get("maxPrice"), 0),
		Sort:         q.Get("sort"),
		Limit:        utils.ParseInt(q.Get("limit"), 24),
		Offset:       utils.ParseInt(q.Get("offset"), 0),
		IsPublished:  &published,
	}
	if q.Get("featured") == "true" {
		featured := true
		filter.IsFeatured = &featured
	}

	products, total, err := h.usecase.GetProducts(r.Context(), filter)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load products")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"products": products,
		"total":    total,
	})
}

func (h *CatalogHandler) GetProductBySlug(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	product, err := h.usecase.GetProductBySlug(r.Context(), slug)
	if err != nil {
		if err == domain.ErrNotFound {
			utils.WriteError(w, http.StatusNotFound, "Product not found")
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load product")
		return
	}
	if !product.IsPublished {
		utils.WriteError(w, http.StatusNotFound, "Product not found")
		return
	}

	utils.WriteJSON(w, http.StatusOK, product)
}

func (h *CatalogHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.usecase.GetCategories(r.Context(), true)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load categories")
		return
	}
	utils.WriteJSON(w, http.StatusOK, categories)
}
