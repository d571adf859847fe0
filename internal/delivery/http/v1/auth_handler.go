package v1

import (
	"net/http"
	"time"

	"mollywear-backend/internal/cart"
	"mollywear-backend/internal/delivery/http/middleware"
	"mollywear-backend/internal/domain"
	"mollywear-backend/internal/usecase"
	"mollywear-backend/pkg/logger"
	"mollywear-backend/pkg/utils"

	json "github.com/goccy/go-json"
)

type AuthHandler struct {
	usecase     *usecase.AuthUsecase
	cartManager *cart.Manager
	tokenExpiry time.Duration
	secureCookies bool
}

func NewAuthHandler(uc *usecase.AuthUsecase, cartManager *cart.Manager, tokenExpiry time.Duration, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		usecase:     uc,
		cartManager: cartManager,
		tokenExpiry: tokenExpiry,
		secureCookies: secureCookies,
	}
}

type requestOTPBody struct {
	Email string `json:"email"`
}

func (h *AuthHandler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var req requestOTPBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.usecase.RequestOTP(r.Context(), req.Email); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Login code sent"})
}

type verifyOTPBody struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	token, user, err := h.usecase.VerifyOTP(r.Context(), req.Email, req.Code)
	if err != nil {
		utils.WriteError(w, http.StatusUnauthorized, err.Error())
		return
	}

	// Bind the session cart to the account. Whatever the account had
	// persisted replaces the guest state.
	if key := middleware.SessionKey(r); key != "" {
		if err := h.cartManager.Get(key).BindUser(r.Context(), user.ID); err != nil {
			logger.Get().Error().Err(err).Str("user_id", user.ID).Msg("failed to bind cart session")
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "accessToken",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.tokenExpiry.Seconds()),
	})

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	// Drop the in-memory session state; the persisted cart stays on the
	// account for next login.
	if key := middleware.SessionKey(r); key != "" {
		h.cartManager.Get(key).Reset()
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "accessToken",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(domain.UserContextKey).(*domain.User)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	full, err := h.usecase.GetUserByID(r.Context(), user.ID)
	if err != nil {
		utils.WriteError(w, http.StatusNotFound, "User not found")
		return
	}
	utils.WriteJSON(w, http.StatusOK, full)
}

type profileBody struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(domain.UserContextKey).(*domain.User)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req profileBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	updated, err := h.usecase.UpdateProfile(r.Context(), user.ID, req.FirstName, req.LastName, req.Phone)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}
	utils.WriteJSON(w, http.StatusOK, updated)
}

// --- Addresses ---

func (h *AuthHandler) GetAddresses(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(domain.UserContextKey).(*domain.User)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	addresses, err := h.usecase.GetAddresses(r.Context(), user.ID)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load addresses")
		return
	}
	utils.WriteJSON(w, http.StatusOK, addresses)
}

func (h *AuthHandler) AddAddress(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(domain.UserContextKey).(*domain.User)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var addr domain.Address
	if err := json.NewDecoder(r.Body).Decode(&addr); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	created, err := h.usecase.AddAddress(r.Context(), user.ID, addr)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to add address")
		return
	}
	utils.WriteJSON(w, http.StatusCreated, created)
}

func (h *AuthHandler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(domain.UserContextKey).(*domain.User)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var addr domain.Address
	if err := json.NewDecoder(r.Body).Decode(&addr); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	addr.ID = r.PathValue("id")

	updated, err := h.usecase.UpdateAddress(r.Context(), user.ID, addr)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, updated)
}

func (h *AuthHandler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(domain.UserContextKey).(*domain.User)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.usecase.DeleteAddress(r.Context(), user.ID, r.PathValue("id")); err != nil {
		utils.WriteError(w, http.StatusNotFound, "Address not found")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Address deleted"})
}
