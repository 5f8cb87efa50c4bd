package auth

import (
	"net/http"

	"educycle/database"
	"educycle/models"
	"educycle/utils"
)

// POST /v1/auth/logout-all
//
// Revokes every refresh token belonging to the authenticated user. Useful
// after a password change or a lost device.
func LogoutAllHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	res := database.DB.Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked = ?", uid, false).
		Update("revoked", true)
	if res.Error != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Semua sesi telah diakhiri",
		Data:    map[string]interface{}{"revoked_sessions": res.RowsAffected},
	})
}
