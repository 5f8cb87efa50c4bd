package users

import (
	"net/http"
	"strings"

	"educycle/database"
	"educycle/middleware"
	"educycle/models"
	"educycle/utils"
)

// GET /v1/users/profile
func GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var user models.User
	if err := database.DB.Where("id = ?", uid).First(&user).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Pengguna tidak ditemukan"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: user})
}

type UpdateProfileRequest struct {
	Name   *string `json:"name"`
	Campus *string `json:"campus"`
	Number *string `json:"number"`
}

// PUT /v1/users/profile
func UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	var req UpdateProfileRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		n := strings.TrimSpace(*req.Name)
		if n == "" || len(n) > 100 {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Nama tidak valid"})
			return
		}
		updates["name"] = n
	}
	if req.Campus != nil {
		updates["campus"] = strings.TrimSpace(*req.Campus)
	}
	if req.Number != nil {
		num := strings.TrimSpace(*req.Number)
		if len(num) < 8 {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Nomor telepon tidak valid"})
			return
		}
		var count int64
		database.DB.Model(&models.User{}).Where("number = ? AND id <> ?", num, uid).Count(&count)
		if count > 0 {
			utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Nomor sudah digunakan"})
			return
		}
		updates["number"] = num
	}
	if len(updates) == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Tidak ada perubahan"})
		return
	}

	if err := database.DB.Model(&models.User{}).Where("id = ?", uid).Updates(updates).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Profil diperbarui"})
}
