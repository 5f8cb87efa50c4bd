package admins

import (
	"net/http"

	"educycle/database"
	"educycle/lifecycle"
	"educycle/models"
	"educycle/utils"
)

// GET /v1/admin/dashboard
func DashboardHandler(w http.ResponseWriter, r *http.Request) {
	db := database.DB

	var totalUsers, totalProducts, pendingProducts int64
	db.Model(&models.User{}).Count(&totalUsers)
	db.Model(&models.Product{}).Count(&totalProducts)
	db.Model(&models.Product{}).Where("status = ?", "Pending").Count(&pendingProducts)

	type statusCount struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}
	var txCounts []statusCount
	db.Model(&models.Transaction{}).
		Select("status, COUNT(*) as count").
		Group("status").Scan(&txCounts)

	var openDisputes int64
	db.Model(&models.Transaction{}).Where("status = ?", lifecycle.StatusDisputed).Count(&openDisputes)

	var completedVolume float64
	db.Model(&models.Transaction{}).
		Where("status IN ?", []string{lifecycle.StatusCompleted, lifecycle.StatusAutoCompleted}).
		Select("COALESCE(SUM(amount), 0)").Scan(&completedVolume)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"users":            totalUsers,
			"products":         totalProducts,
			"pending_products": pendingProducts,
			"transactions":     txCounts,
			"open_disputes":    openDisputes,
			"completed_volume": utils.RoundFloat(completedVolume, 2),
		},
	})
}
