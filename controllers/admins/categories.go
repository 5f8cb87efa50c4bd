package admins

import (
	"errors"
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

// GET /v1/admin/categories
//
// Unlike the public endpoint this includes Inactive categories.
func ListCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	var categories []models.Category
	if err := database.DB.Order("name ASC").Find(&categories).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: categories})
}

type CategoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// POST /v1/admin/categories
func CreateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > 100 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Nama kategori tidak valid"})
		return
	}
	status := req.Status
	if status != "Active" && status != "Inactive" {
		status = "Active"
	}

	category := models.Category{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Status:      status,
	}
	if err := database.DB.Create(&category).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Kategori dibuat", Data: category})
}

// PUT /v1/admin/categories/{id}
func UpdateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id < 1 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "ID kategori tidak valid"})
		return
	}
	var req CategoryRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	var category models.Category
	if err := database.DB.Where("id = ?", id).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Kategori tidak ditemukan"})
		} else {
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		}
		return
	}

	updates := map[string]interface{}{
		"name":        strings.TrimSpace(req.Name),
		"description": strings.TrimSpace(req.Description),
	}
	if req.Status == "Active" || req.Status == "Inactive" {
		updates["status"] = req.Status
	}
	if err := database.DB.Model(&category).Updates(updates).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Kategori diperbarui", Data: category})
}

// DELETE /v1/admin/categories/{id}
//
// Refused while any product still references the category.
func DeleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id < 1 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "ID kategori tidak valid"})
		return
	}

	var inUse int64
	database.DB.Model(&models.Product{}).Where("category_id = ?", id).Count(&inUse)
	if inUse > 0 {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Kategori masih dipakai produk dan tidak dapat dihapus"})
		return
	}

	res := database.DB.Delete(&models.Category{}, id)
	if res.Error != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}
	if res.RowsAffected == 0 {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Kategori tidak ditemukan"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Kategori dihapus"})
}
