package users

import (
	"net/http"

	"educycle/database"
	"educycle/lifecycle"
	"educycle/models"
	"educycle/utils"
)

// GET /v1/users/dashboard
//
// Seller-side summary: listing counts per status, open and completed
// transactions, total sales and average rating.
func GetDashboardHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	db := database.DB

	type statusCount struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}

	var productCounts []statusCount
	db.Model(&models.Product{}).
		Select("status, COUNT(*) as count").
		Where("seller_id = ?", uid).
		Group("status").Scan(&productCounts)

	var openSales int64
	db.Model(&models.Transaction{}).
		Where("seller_id = ? AND status IN ?", uid, []string{
			lifecycle.StatusPending, lifecycle.StatusAccepted, lifecycle.StatusMeeting,
		}).Count(&openSales)

	var completedSales int64
	var totalSales float64
	db.Model(&models.Transaction{}).
		Where("seller_id = ? AND status IN ?", uid, []string{
			lifecycle.StatusCompleted, lifecycle.StatusAutoCompleted,
		}).Count(&completedSales)
	db.Model(&models.Transaction{}).
		Where("seller_id = ? AND status IN ?", uid, []string{
			lifecycle.StatusCompleted, lifecycle.StatusAutoCompleted,
		}).Select("COALESCE(SUM(amount), 0)").Scan(&totalSales)

	var disputed int64
	db.Model(&models.Transaction{}).
		Where("seller_id = ? AND status = ?", uid, lifecycle.StatusDisputed).
		Count(&disputed)

	var avgRating float64
	var reviewCount int64
	db.Model(&models.Review{}).Where("seller_id = ?", uid).Count(&reviewCount)
	db.Model(&models.Review{}).Where("seller_id = ?", uid).
		Select("COALESCE(AVG(rating), 0)").Scan(&avgRating)

	var openPurchases int64
	db.Model(&models.Transaction{}).
		Where("buyer_id = ? AND status IN ?", uid, []string{
			lifecycle.StatusPending, lifecycle.StatusAccepted, lifecycle.StatusMeeting,
		}).Count(&openPurchases)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"products": productCounts,
			"sales": map[string]interface{}{
				"open":         openSales,
				"completed":    completedSales,
				"disputed":     disputed,
				"total_amount": utils.RoundFloat(totalSales, 2),
			},
			"purchases": map[string]interface{}{
				"open": openPurchases,
			},
			"reviews": map[string]interface{}{
				"count":          reviewCount,
				"average_rating": utils.RoundFloat(avgRating, 2),
			},
		},
	})
}
