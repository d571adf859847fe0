package v1

import (
	"net/http"

	"mollywear-backend/internal/cart"
	"mollywear-backend/internal/delivery/http/middleware"
	"mollywear-backend/internal/domain"
	"mollywear-backend/pkg/utils"

	json "github.com/goccy/go-json"
)

type WishlistHandler struct {
	manager *cart.Manager
	lookup  domain.ProductLookup
}

func NewWishlistHandler(manager *cart.Manager, lookup domain.ProductLookup) *WishlistHandler {
	return &WishlistHandler{manager: manager, lookup: lookup}
}

func (h *WishlistHandler) session(r *http.Request) *cart.Container {
	return h.manager.Get(middleware.SessionKey(r))
}

// wishlistItem pairs the saved entry with its catalog record. Entries
// whose product has been unpublished are returned without one.
type wishlistItem struct {
	domain.WishlistEntry
	Product *domain.Product `json:"product"`
	InCart  bool            `json:"inCart"`
}

func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	c := h.session(r)
	entries := c.Wishlist()

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ProductID
	}
	products, err := h.lookup.GetPublishedByIDs(r.Context(), ids)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load wishlist")
		return
	}
	byID := make(map[string]*domain.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	items := make([]wishlistItem, len(entries))
	for i, e := range entries {
		inCart := false
		if p := byID[e.ProductID]; p != nil {
			for _, size := range p.AvailableSizes() {
				if c.IsInCart(e.ProductID, size) {
					inCart = true
					break
				}
			}
			if !inCart && c.IsInCart(e.ProductID, cart.DefaultSize) {
				inCart = true
			}
		}
		items[i] = wishlistItem{WishlistEntry: e, Product: byID[e.ProductID], InCart: inCart}
	}

	utils.WriteJSON(w, http.StatusOK, items)
}

type wishlistRequest struct {
	ProductID string `json:"productId"`
}

func (h *WishlistHandler) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	var req wishlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	h.session(r).AddToWishlist(r.Context(), req.ProductID)
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Added to wishlist"})
}

func (h *WishlistHandler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("productId")
	h.session(r).RemoveFromWishlist(r.Context(), productID)
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Removed from wishlist"})
}

// MoveToCart adds the saved product to the cart with quantity 1. The
// wishlist entry stays until removed explicitly.
func (h *WishlistHandler) MoveToCart(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("productId")
	if err := h.session(r).MoveToCart(r.Context(), productID); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Moved to cart"})
}
