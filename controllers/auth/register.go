package auth

import (
	"errors"
	"net/http"
	"strings"

	"educycle/database"
	"educycle/middleware"
	"educycle/models"
	"educycle/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Name            string  `json:"name" validate:"required,nameok"`
	Email           string  `json:"email" validate:"required,email"`
	Number          string  `json:"number" validate:"required,phone8"`
	Campus          *string `json:"campus"`
	Password        string  `json:"password" validate:"required,pwdmin"`
	ConfirmPassword string  `json:"confirm_password" validate:"required,eqfield=Password"`
}

// POST /v1/auth/register
func RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Number = strings.TrimSpace(req.Number)

	db := database.DB

	var existing models.User
	err := db.Where("email = ? OR number = ?", req.Email, req.Number).First(&existing).Error
	if err == nil {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Email atau nomor sudah terdaftar"})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Terjadi kesalahan sistem, silakan coba lagi"})
		return
	}

	user := models.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    req.Email,
		Number:   req.Number,
		Campus:   req.Campus,
		Password: string(hashed),
		Status:   "Active",
	}
	if err := db.Create(&user).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Gagal membuat akun, silakan coba lagi"})
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Pendaftaran berhasil, silakan login",
		Data: map[string]interface{}{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
		},
	})
}
