package admins

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"educycle/database"
	"educycle/lifecycle"
	"educycle/middleware"
	"educycle/models"
	"educycle/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// GET /v1/admin/transactions?status=&page=&limit=
func GetTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 20
	}

	db := database.DB
	query := db.Model(&models.Transaction{})
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

	var transactions []models.Transaction
	if err := query.Preload("Product").Order("id DESC").Limit(limit).Offset(offset).Find(&transactions).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"data": transactions,
			"pagination": map[string]interface{}{
				"page":        page,
				"limit":       limit,
				"total_rows":  totalRows,
				"total_pages": totalPages,
			},
		},
	})
}

// GET /v1/admin/disputes?page=&limit=
//
// Shortcut for the Disputed queue, oldest first.
func GetDisputesHandler(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 20
	}

	db := database.DB
	query := db.Model(&models.Transaction{}).Where("status = ?", lifecycle.StatusDisputed)

	var totalRows int64
	if err := query.Count(&totalRows).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

	totalPages := int(math.Ceil(float64(totalRows) / float64(limit)))
	offset := (page - 1) * limit

	var disputes []models.Transaction
	if err := query.Preload("Product").Order("updated_at ASC").Limit(limit).Offset(offset).Find(&disputes).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"data": disputes,
			"pagination": map[string]interface{}{
				"page":        page,
				"limit":       limit,
				"total_rows":  totalRows,
				"total_pages": totalPages,
			},
		},
	})
}

type ResolveDisputeRequest struct {
	Resolution string `json:"resolution" validate:"required"` // complete | cancel
	Note       string `json:"note"`
}

// POST /v1/admin/disputes/{id}/resolve
//
// Admin verdict on a Disputed transaction. This is the only path out of
// Disputed; the buyer/seller role rules do not apply to it.
func ResolveDisputeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id < 1 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "ID transaksi tidak valid"})
		return
	}
	var req ResolveDisputeRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	var newStatus string
	switch req.Resolution {
	case "complete":
		newStatus = lifecycle.StatusCompleted
	case "cancel":
		newStatus = lifecycle.StatusCancelled
	default:
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Resolusi harus complete atau cancel"})
		return
	}

	var t models.Transaction
	if err := database.DB.Where("id = ?", id).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Transaksi tidak ditemukan"})
		} else {
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		}
		return
	}
	if t.Status != lifecycle.StatusDisputed {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Transaksi tidak dalam status sengketa"})
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Transaction{}).
			Where("id = ? AND status = ?", t.ID, lifecycle.StatusDisputed).
			Update("status", newStatus)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if newStatus == lifecycle.StatusCompleted {
			if err := tx.Model(&models.Product{}).
				Where("id = ? AND status = ?", t.ProductID, "Active").
				Update("status", "Sold").Error; err != nil {
				return err
			}
		}
		note := "Sengketa order " + t.OrderID + " telah diputuskan admin"
		if req.Note != "" {
			note += ": " + req.Note
		}
		models.PushNotification(tx, t.BuyerID, &t.ID, "dispute", note)
		models.PushNotification(tx, t.SellerID, &t.ID, "dispute", note)
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Transaksi sudah berubah, silakan muat ulang"})
		} else {
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		}
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Sengketa diselesaikan"})
}
