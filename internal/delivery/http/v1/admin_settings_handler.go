package v1

import (
	"net/http"
	"time"

	"mollywear-backend/internal/domain"
	"mollywear-backend/internal/usecase"
	"mollywear-backend/pkg/utils"

	json "github.com/goccy/go-json"
)

type AdminSettingsHandler struct {
	usecase     *usecase.SettingsUsecase
	authUsecase *usecase.AuthUsecase
}

func NewAdminSettingsHandler(uc *usecase.SettingsUsecase, auc *usecase.AuthUsecase) *AdminSettingsHandler {
	return &AdminSettingsHandler{usecase: uc, authUsecase: auc}
}

// --- Drop countdown ---

func (h *AdminSettingsHandler) GetDropCountdown(w http.ResponseWriter, r *http.Request) {
	countdown, err := h.usecase.GetDropCountdown(r.Context())
	if err != nil {
		if err == domain.ErrNotFound {
			utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"countdown": nil})
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load countdown")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"countdown": countdown})
}

type countdownBody struct {
	Title    string    `json:"title"`
	DropAt   time.Time `json:"dropAt"`
	IsActive bool      `json:"isActive"`
}

func (h *AdminSettingsHandler) SetDropCountdown(w http.ResponseWriter, r *http.Request) {
	var req countdownBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	countdown, err := h.usecase.SetDropCountdown(r.Context(), req.Title, req.DropAt, req.IsActive)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, countdown)
}

// --- Shipping zones ---

func (h *AdminSettingsHandler) ListShippingZones(w http.ResponseWriter, r *http.Request) {
	zones, err := h.usecase.GetAllShippingZones(r.Context())
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load shipping zones")
		return
	}
	utils.WriteJSON(w, http.StatusOK, zones)
}

func (h *AdminSettingsHandler) CreateShippingZone(w http.ResponseWriter, r *http.Request) {
	var zone domain.ShippingZone
	if err := json.NewDecoder(r.Body).Decode(&zone); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	created, err := h.usecase.CreateShippingZone(r.Context(), zone)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusCreated, created)
}

func (h *AdminSettingsHandler) UpdateShippingZone(w http.ResponseWriter, r *http.Request) {
	var zone domain.ShippingZone
	if err := json.NewDecoder(r.Body).Decode(&zone); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	zone.ID = int32(utils.ParseInt(r.PathValue("id"), 0))

	updated, err := h.usecase.UpdateShippingZone(r.Context(), zone)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, updated)
}

func (h *AdminSettingsHandler) DeleteShippingZone(w http.ResponseWriter, r *http.Request) {
	id := int32(utils.ParseInt(r.PathValue("id"), 0))
	if err := h.usecase.DeleteShippingZone(r.Context(), id); err != nil {
		utils.WriteError(w, http.StatusNotFound, "Shipping zone not found")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Shipping zone deleted"})
}

// --- Users ---

func (h *AdminSettingsHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, total, err := h.authUsecase.ListUsers(
		r.Context(),
		utils.ParseInt(r.URL.Query().Get("limit"), 20),
		utils.ParseInt(r.URL.Query().Get("offset"), 0),
	)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load users")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"users": users,
		"total": total,
	})
}
