package v1

import (
	"net/http"

	"mollywear-backend/internal/usecase"
	"mollywear-backend/pkg/utils"
)

// SettingsHandler serves the public storefront settings endpoints.
type SettingsHandler struct {
	usecase *usecase.SettingsUsecase
}

func NewSettingsHandler(uc *usecase.SettingsUsecase) *SettingsHandler {
	return &SettingsHandler{usecase: uc}
}

// GetDropCountdown returns the live next-drop countdown, or null when
// there is nothing to announce.
func (h *SettingsHandler) GetDropCountdown(w http.ResponseWriter, r *http.Request) {
	countdown, err := h.usecase.GetLiveCountdown(r.Context())
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load countdown")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"countdown": countdown})
}

func (h *SettingsHandler) GetShippingZones(w http.ResponseWriter, r *http.Request) {
	zones, err := h.usecase.GetActiveShippingZones(r.Context())
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load shipping zones")
		return
	}
	utils.WriteJSON(w, http.StatusOK, zones)
}
