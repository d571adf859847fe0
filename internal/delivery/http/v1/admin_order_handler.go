package v1

import (
	"net/http"

	"mollywear-backend/internal/domain"
	"mollywear-backend/internal/usecase"
	"mollywear-backend/pkg/utils"

	json "github.com/goccy/go-json"
)

type AdminOrderHandler struct {
	usecase       *usecase.OrderUsecase
	returnUsecase *usecase.ReturnUsecase
}

func NewAdminOrderHandler(uc *usecase.OrderUsecase, ruc *usecase.ReturnUsecase) *AdminOrderHandler {
	return &AdminOrderHandler{usecase: uc, returnUsecase: ruc}
}

func (h *AdminOrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.OrderFilter{
		Page:          utils.ParseInt(q.Get("page"), 1),
		Limit:         utils.ParseInt(q.Get("limit"), 20),
		Status:        q.Get("status"),
		PaymentStatus: q.Get("paymentStatus"),
		Search:        q.Get("q"),
	}

	orders, total, err := h.usecase.GetAllOrders(r.Context(), filter)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load orders")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"orders": orders,
		"total":  total,
	})
}

func (h *AdminOrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.usecase.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusNotFound, "Order not found")
		return
	}
	utils.WriteJSON(w, http.StatusOK, order)
}

type orderStatusBody struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

func (h *AdminOrderHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	admin, _ := r.Context().Value(domain.UserContextKey).(*domain.User)

	var req orderStatusBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.usecase.UpdateOrderStatus(r.Context(), r.PathValue("id"), req.Status, req.Note, admin.ID); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Order status updated"})
}

type paymentStatusBody struct {
	Status string `json:"status"`
}

func (h *AdminOrderHandler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	admin, _ := r.Context().Value(domain.UserContextKey).(*domain.User)

	var req paymentStatusBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.usecase.UpdatePaymentStatus(r.Context(), r.PathValue("id"), req.Status, admin.ID); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Payment status updated"})
}

func (h *AdminOrderHandler) GetOrderHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.usecase.GetOrderHistory(r.Context(), r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load order history")
		return
	}
	utils.WriteJSON(w, http.StatusOK, history)
}

// --- Returns ---

func (h *AdminOrderHandler) ListReturns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	returns, total, err := h.returnUsecase.ListReturns(
		r.Context(),
		q.Get("status"),
		utils.ParseInt(q.Get("limit"), 20),
		utils.ParseInt(q.Get("offset"), 0),
	)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load returns")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"returns": returns,
		"total":   total,
	})
}

type reviewReturnBody struct {
	Approve   bool    `json:"approve"`
	AdminNote *string `json:"adminNote"`
}

func (h *AdminOrderHandler) ReviewReturn(w http.ResponseWriter, r *http.Request) {
	var req reviewReturnBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.returnUsecase.ReviewReturn(r.Context(), r.PathValue("id"), req.Approve, req.AdminNote); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Return reviewed"})
}

func (h *AdminOrderHandler) CompleteReturn(w http.ResponseWriter, r *http.Request) {
	if err := h.returnUsecase.CompleteReturn(r.Context(), r.PathValue("id")); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Return completed"})
}
