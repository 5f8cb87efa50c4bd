package admins

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"educycle/database"
	"educycle/middleware"
	"educycle/models"
	"educycle/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// GET /v1/admin/products?status=&page=&limit=
//
// Defaults to the Pending moderation queue.
func GetProductsHandler(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 20
	}
	status := r.URL.Query().Get("status")
	if status == "" {
		status = "Pending"
	}

	db := database.DB
	query := db.Model(&models.Product{})
	if status != "all" {
		query = query.Where("status = ?", status)
	}

	var totalRows int64
	if err := query.Count(&totalRows).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

	totalPages := int(math.Ceil(float64(totalRows) / float64(limit)))
	offset := (page - 1) * limit

	var products []models.Product
	if err := query.Preload("Category").Preload("Seller").
		Order("id ASC").Limit(limit).Offset(offset).Find(&products).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"data": products,
			"pagination": map[string]interface{}{
				"page":        page,
				"limit":       limit,
				"total_rows":  totalRows,
				"total_pages": totalPages,
			},
		},
	})
}

type ModerateProductRequest struct {
	Action string  `json:"action" validate:"required"` // approve | reject
	Reason *string `json:"reason"`
}

// POST /v1/admin/products/{id}/moderate
func ModerateProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id < 1 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "ID produk tidak valid"})
		return
	}
	var req ModerateProductRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	var newStatus, note string
	switch req.Action {
	case "approve":
		newStatus = "Active"
		note = "Produk Anda disetujui dan kini tampil di katalog"
	case "reject":
		newStatus = "Rejected"
		note = "Produk Anda ditolak oleh admin"
		if req.Reason != nil && *req.Reason != "" {
			note += ": " + *req.Reason
		}
	default:
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Aksi harus approve atau reject"})
		return
	}

	var product models.Product
	if err := database.DB.Where("id = ?", id).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Produk tidak ditemukan"})
		} else {
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		}
		return
	}

	res := database.DB.Model(&models.Product{}).
		Where("id = ? AND status = ?", product.ID, "Pending").
		Update("status", newStatus)
	if res.Error != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}
	if res.RowsAffected == 0 {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Produk sudah dimoderasi"})
		return
	}

	models.PushNotification(database.DB, product.SellerID, nil, "moderation", note)
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Moderasi tersimpan"})
}
