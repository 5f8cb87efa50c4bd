package admins

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"educycle/database"
	"educycle/middleware"
	"educycle/models"
	"educycle/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// GET /v1/admin/users?search=&status=&page=&limit=
func GetUsersHandler(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 20
	}

	db := database.DB
	query := db.Model(&models.User{})
	if search := strings.TrimSpace(r.URL.Query().Get("search")); search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR email LIKE ? OR number LIKE ?", like, like, like)
	}
	if status := r.URL.Query().Get("status"); status != "" && status != "null" {
		query = query.Where("status = ?", status)
	}

	var totalRows int64
	if err := query.Count(&totalRows).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

	totalPages := int(math.Ceil(float64(totalRows) / float64(limit)))
	offset := (page - 1) * limit

	var users []models.User
	if err := query.Order("id DESC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"data": users,
			"pagination": map[string]interface{}{
				"page":        page,
				"limit":       limit,
				"total_rows":  totalRows,
				"total_pages": totalPages,
			},
		},
	})
}

type UpdateUserStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// PATCH /v1/admin/users/{id}/status
//
// Suspending a user also kills their refresh tokens so the suspension takes
// effect within the access token lifetime.
func UpdateUserStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id < 1 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "ID pengguna tidak valid"})
		return
	}
	var req UpdateUserStatusRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	switch req.Status {
	case "Active", "Inactive", "Suspend":
	default:
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Status harus Active, Inactive atau Suspend"})
		return
	}

	var user models.User
	if err := database.DB.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Pengguna tidak ditemukan"})
		} else {
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		}
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("status", req.Status).Error; err != nil {
			return err
		}
		if req.Status != "Active" {
			return tx.Model(&models.RefreshToken{}).
				Where("user_id = ? AND revoked = ?", user.ID, false).
				Update("revoked", true).Error
		}
		return nil
	})
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Status pengguna diperbarui"})
}
