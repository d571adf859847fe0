package v1

import (
	"net/http"

	"mollywear-backend/internal/usecase"
	"mollywear-backend/pkg/utils"

	json "github.com/goccy/go-json"
)

type AdminCouponHandler struct {
	usecase *usecase.CouponUsecase
}

func NewAdminCouponHandler(uc *usecase.CouponUsecase) *AdminCouponHandler {
	return &AdminCouponHandler{usecase: uc}
}

func (h *AdminCouponHandler) ListCoupons(w http.ResponseWriter, r *http.Request) {
	limit := utils.ParseInt(r.URL.Query().Get("limit"), 20)
	offset := utils.ParseInt(r.URL.Query().Get("offset"), 0)

	coupons, total, err := h.usecase.ListCoupons(r.Context(), limit, offset)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to list coupons")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"coupons": coupons,
		"total":   total,
	})
}

func (h *AdminCouponHandler) GetCoupon(w http.ResponseWriter, r *http.Request) {
	coupon, err := h.usecase.GetCoupon(r.Context(), r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusNotFound, "Coupon not found")
		return
	}
	utils.WriteJSON(w, http.StatusOK, coupon)
}

func (h *AdminCouponHandler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	var req usecase.CouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	coupon, err := h.usecase.CreateCoupon(r.Context(), req)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusCreated, coupon)
}

func (h *AdminCouponHandler) UpdateCoupon(w http.ResponseWriter, r *http.Request) {
	var req usecase.CouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	coupon, err := h.usecase.UpdateCoupon(r.Context(), r.PathValue("id"), req)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, coupon)
}

func (h *AdminCouponHandler) DeleteCoupon(w http.ResponseWriter, r *http.Request) {
	if err := h.usecase.DeleteCoupon(r.Context(), r.PathValue("id")); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Coupon deleted"})
}
