package v1

import (
	"net/http"

	"mollywear-backend/internal/cart"
	"mollywear-backend/internal/delivery/http/middleware"
	"mollywear-backend/internal/domain"
	"mollywear-backend/internal/usecase"
	"mollywear-backend/pkg/utils"

	json "github.com/goccy/go-json"
)

type OrderHandler struct {
	usecase       *usecase.OrderUsecase
	returnUsecase *usecase.ReturnUsecase
	cartManager   *cart.Manager
}

func NewOrderHandler(uc *usecase.OrderUsecase, ruc *usecase.ReturnUsecase, cartManager *cart.Manager) *OrderHandler {
	return &OrderHandler{usecase: uc, returnUsecase: ruc, cartManager: cartManager}
}

func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(domain.UserContextKey).(*domain.User)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req usecase.CheckoutReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	session := h.cartManager.Get(middleware.SessionKey(r))
	order, err := h.usecase.Checkout(r.Context(), user.ID, session, req)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) GetMyOrders(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(domain.UserContextKey).(*domain.User)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	orders, err := h.usecase.GetMyOrders(r.Context(), user.ID)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load orders")
		return
	}
	utils.WriteJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) GetMyOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(domain.UserContextKey).(*domain.User)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	order, err := h.usecase.GetMyOrder(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusNotFound, "Order not found")
		return
	}
	utils.WriteJSON(w, http.StatusOK, order)
}

// --- Returns ---

type returnRequestBody struct {
	OrderID     string `json:"orderId"`
	OrderItemID string `json:"orderItemId"`
	Reason      string `json:"reason"`
}

func (h *OrderHandler) RequestReturn(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(domain.UserContextKey).(*domain.User)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req returnRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	ret, err := h.returnUsecase.RequestReturn(r.Context(), user.ID, req.OrderID, req.OrderItemID, req.Reason)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusCreated, ret)
}

func (h *OrderHandler) GetMyReturns(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(domain.UserContextKey).(*domain.User)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	returns, err := h.returnUsecase.GetMyReturns(r.Context(), user.ID)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load returns")
		return
	}
	utils.WriteJSON(w, http.StatusOK, returns)
}
