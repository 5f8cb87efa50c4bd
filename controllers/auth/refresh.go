package auth

import (
	"net/http"

	"educycle/database"
	"educycle/middleware"
	"educycle/models"
	"educycle/utils"
)

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// POST /v1/auth/refresh
//
// Rotates the refresh token: the presented token is revoked and a new pair
// is issued. A replayed token therefore fails on its second use.
func RefreshHandler(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	rt, err := utils.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Refresh token tidak valid"})
		return
	}

	var user models.User
	if err := database.DB.Where("id = ?", rt.UserID).First(&user).Error; err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Refresh token tidak valid"})
		return
	}
	if user.Status != "Active" {
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Akun Anda tidak aktif"})
		return
	}

	if err := database.DB.Model(&models.RefreshToken{}).
		Where("id = ?", rt.ID).
		Update("revoked", true).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

	accessToken, err := utils.GenerateAccessToken(user.ID, "user")
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Terjadi kesalahan sistem, silakan coba lagi"})
		return
	}
	newJTI, err := utils.GenerateRefreshToken(user.ID)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Terjadi kesalahan sistem, silakan coba lagi"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Token diperbarui",
		Data: map[string]interface{}{
			"access_token":  accessToken,
			"refresh_token": newJTI,
		},
	})
}
