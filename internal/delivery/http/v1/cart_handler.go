package v1

import (
	"net/http"

	"mollywear-backend/internal/cart"
	"mollywear-backend/internal/delivery/http/middleware"
	"mollywear-backend/internal/domain"
	"mollywear-backend/pkg/utils"

	json "github.com/goccy/go-json"
)

// CartHandler exposes the session cart. Every endpoint keys the
// container off the browser session cookie, so guests and logged-in
// shoppers go through the same code path.
type CartHandler struct {
	manager *cart.Manager
	maxQty  int
}

func NewCartHandler(manager *cart.Manager, maxQty int) *CartHandler {
	return &CartHandler{manager: manager, maxQty: maxQty}
}

func (h *CartHandler) session(r *http.Request) *cart.Container {
	return h.manager.Get(middleware.SessionKey(r))
}

// cartView is the full cart payload the storefront renders from.
type cartView struct {
	Lines          []domain.ResolvedLine `json:"lines"`
	Subtotal       float64               `json:"subtotal"`
	Coupon         *domain.Coupon        `json:"coupon"`
	DiscountAmount float64               `json:"discountAmount"`
	Total          float64               `json:"total"`
}

func (h *CartHandler) view(r *http.Request, c *cart.Container) (*cartView, error) {
	lines, subtotal, err := c.Resolve(r.Context())
	if err != nil {
		return nil, err
	}
	return &cartView{
		Lines:          lines,
		Subtotal:       subtotal,
		Coupon:         c.AppliedCoupon(),
		DiscountAmount: c.DiscountAmount(subtotal),
		Total:          c.Total(subtotal),
	}, nil
}

func (h *CartHandler) writeCart(w http.ResponseWriter, r *http.Request, c *cart.Container) {
	view, err := h.view(r, c)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load cart")
		return
	}
	utils.WriteJSON(w, http.StatusOK, view)
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.writeCart(w, r, h.session(r))
}

type addToCartRequest struct {
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

func (h *CartHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if req.Quantity > h.maxQty {
		utils.WriteError(w, http.StatusBadRequest, "Quantity exceeds the per-item limit")
		return
	}

	c := h.session(r)
	if err := c.AddToCart(r.Context(), req.ProductID, req.Size, req.Quantity); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeCart(w, r, c)
}

func (h *CartHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("productId")
	size := r.URL.Query().Get("size")
	if size == "" {
		size = cart.DefaultSize
	}

	c := h.session(r)
	c.RemoveFromCart(r.Context(), productID, size)
	h.writeCart(w, r, c)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	c := h.session(r)
	c.ClearCart(r.Context())
	h.writeCart(w, r, c)
}

type applyCouponRequest struct {
	Code string `json:"code"`
}

func (h *CartHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var req applyCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	c := h.session(r)
	result := c.ApplyCoupon(r.Context(), req.Code)

	view, err := h.view(r, c)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load cart")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": result.Success,
		"message": result.Message,
		"cart":    view,
	})
}

func (h *CartHandler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	c := h.session(r)
	c.RemoveCoupon()
	h.writeCart(w, r, c)
}
