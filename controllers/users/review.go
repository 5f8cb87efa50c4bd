package users

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"educycle/database"
	"educycle/lifecycle"
	"educycle/middleware"
	"educycle/models"
	"educycle/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type CreateReviewRequest struct {
	Rating  int     `json:"rating"`
	Comment *string `json:"comment"`
}

// POST /v1/users/transactions/{id}/review
//
// Only the buyer of a completed transaction may review, once.
func CreateReviewHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	var req CreateReviewRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Rating harus antara 1 dan 5"})
		return
	}
	if req.Comment != nil {
		c := strings.TrimSpace(*req.Comment)
		if len(c) > 1000 {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Komentar terlalu panjang"})
			return
		}
		req.Comment = &c
	}

	t, ok := loadTransaction(w, r)
	if !ok {
		return
	}
	if t.BuyerID != uid {
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Hanya pembeli yang dapat memberikan ulasan"})
		return
	}
	if t.Status != lifecycle.StatusCompleted && t.Status != lifecycle.StatusAutoCompleted {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Ulasan hanya untuk transaksi yang sudah selesai"})
		return
	}

	review := models.Review{
		TransactionID: t.ID,
		ReviewerID:    uid,
		SellerID:      t.SellerID,
		Rating:        req.Rating,
		Comment:       req.Comment,
	}
	if err := database.DB.Create(&review).Error; err != nil {
		// Unique index on transaction_id rejects the second attempt.
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "Duplicate entry") {
			utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Transaksi ini sudah diulas"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

	models.PushNotification(database.DB, t.SellerID, &t.ID, "review",
		"Anda menerima ulasan baru untuk order "+t.OrderID)

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Ulasan tersimpan", Data: review})
}

// GET /v1/sellers/{id}/reviews?page=&limit=
func GetSellerReviewsHandler(w http.ResponseWriter, r *http.Request) {
	sellerID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || sellerID < 1 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "ID penjual tidak valid"})
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 10
	}

	db := database.DB
	query := db.Model(&models.Review{}).Where("seller_id = ?", sellerID)

	var totalRows int64
	if err := query.Count(&totalRows).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

	var avg float64
	db.Model(&models.Review{}).Where("seller_id = ?", sellerID).
		Select("COALESCE(AVG(rating), 0)").Scan(&avg)

	totalPages := int(math.Ceil(float64(totalRows) / float64(limit)))
	offset := (page - 1) * limit

	var reviews []models.Review
	if err := query.Order("id DESC").Limit(limit).Offset(offset).Find(&reviews).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"data":           reviews,
			"average_rating": utils.RoundFloat(avg, 2),
			"pagination": map[string]interface{}{
				"page":        page,
				"limit":       limit,
				"total_rows":  totalRows,
				"total_pages": totalPages,
			},
		},
	})
}
