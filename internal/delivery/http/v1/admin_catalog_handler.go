package v1

import (
	"net/http"

	"mollywear-backend/internal/domain"
	"mollywear-backend/internal/usecase"
	"mollywear-backend/pkg/utils"

	json "github.com/goccy/go-json"
)

type AdminCatalogHandler struct {
	usecase *usecase.CatalogUsecase
}

func NewAdminCatalogHandler(uc *usecase.CatalogUsecase) *AdminCatalogHandler {
	return &AdminCatalogHandler{usecase: uc}
}

// ListProducts returns all products including unpublished drafts.
func (h *AdminCatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.ProductFilter{
		CategorySlug: q.Get("category"),
		Query:        q.Get("q"),
		Sort:         q.Get("sort"),
		Limit:        utils.ParseInt(q.Get("limit"), 24),
		Offset:       utils.ParseInt(q.Get("offset"), 0),
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

func (h *AdminCatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.usecase.GetProductByID(r.Context(), r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusNotFound, "Product not found")
		return
	}
	utils.WriteJSON(w, http.StatusOK, product)
}

func (h *AdminCatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var product domain.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.usecase.CreateProduct(r.Context(), &product); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusCreated, product)
}

func (h *AdminCatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var product domain.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	product.ID = r.PathValue("id")

	if err := h.usecase.UpdateProduct(r.Context(), &product); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, product)
}

type productStatusBody struct {
	IsPublished bool `json:"isPublished"`
}

func (h *AdminCatalogHandler) UpdateProductStatus(w http.ResponseWriter, r *http.Request) {
	var req productStatusBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.usecase.UpdateProductStatus(r.Context(), r.PathValue("id"), req.IsPublished); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Status updated"})
}

func (h *AdminCatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.usecase.DeleteProduct(r.Context(), r.PathValue("id")); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Product deleted"})
}

type stockAdjustBody struct {
	SizeID string `json:"sizeId"`
	Delta  int    `json:"delta"`
}

func (h *AdminCatalogHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	var req stockAdjustBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.usecase.AdjustStock(r.Context(), req.SizeID, req.Delta); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Stock adjusted"})
}

// --- Categories ---

func (h *AdminCatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.usecase.GetCategories(r.Context(), false)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load categories")
		return
	}
	utils.WriteJSON(w, http.StatusOK, categories)
}

func (h *AdminCatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var category domain.Category
	if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.usecase.CreateCategory(r.Context(), &category); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusCreated, category)
}

func (h *AdminCatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var category domain.Category
	if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	category.ID = r.PathValue("id")

	if err := h.usecase.UpdateCategory(r.Context(), &category); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, category)
}

func (h *AdminCatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.usecase.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Category deleted"})
}
