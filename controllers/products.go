package controllers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"educycle/database"
	"educycle/models"
	"educycle/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// GET /v1/products?search=&category_id=&condition=&page=&limit=
//
// Public catalog. Only Active listings are visible here; Pending, Rejected
// and Sold products never leave the seller's own view.
func GetProductsHandler(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 12
	}
	if limit > 50 {
		limit = 50
	}

	db := database.DB
	query := db.Model(&models.Product{}).Where("status = ?", "Active")

	if search := strings.TrimSpace(r.URL.Query().Get("search")); search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", like, like)
	}
	if catStr := r.URL.Query().Get("category_id"); catStr != "" {
		if catID, err := strconv.Atoi(catStr); err == nil && catID > 0 {
			query = query.Where("category_id = ?", catID)
		}
	}
	if cond := r.URL.Query().Get("condition"); cond == "Baru" || cond == "Bekas" {
		query = query.Where("`condition` = ?", cond)
	}

	sort := "id DESC"
	switch r.URL.Query().Get("sort") {
	case "price_asc":
		sort = "amount ASC"
	case "price_desc":
		sort = "amount DESC"
	case "oldest":
		sort = "id ASC"
	}

	var totalRows int64
	if err := query.Count(&totalRows).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

	totalPages := int(math.Ceil(float64(totalRows) / float64(limit)))
	offset := (page - 1) * limit

	var products []models.Product
	if err := query.Preload("Category").Order(sort).Limit(limit).Offset(offset).Find(&products).Error; err != nil {
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

// GET /v1/products/{id}
func GetProductDetailHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id < 1 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "ID produk tidak valid"})
		return
	}

	var product models.Product
	err = database.DB.Preload("Category").Preload("Seller").
		Where("id = ? AND status = ?", id, "Active").First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Produk tidak ditemukan"})
		} else {
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		}
		return
	}

	var avgRating float64
	var reviewCount int64
	database.DB.Model(&models.Review{}).Where("seller_id = ?", product.SellerID).Count(&reviewCount)
	database.DB.Model(&models.Review{}).Where("seller_id = ?", product.SellerID).
		Select("COALESCE(AVG(rating), 0)").Scan(&avgRating)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"product": product,
			"seller_rating": map[string]interface{}{
				"count":   reviewCount,
				"average": utils.RoundFloat(avgRating, 2),
			},
		},
	})
}

// GET /v1/categories
func GetCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	var categories []models.Category
	if err := database.DB.Where("status = ?", "Active").Order("name ASC").Find(&categories).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: categories})
}
