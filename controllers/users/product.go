package users

import (
	"errors"
	"math"
	"net/http"
	"path/filepath"
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

var allowedImageExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// POST /v1/users/products (multipart/form-data)
//
// New listings start as Pending and appear in the catalog only after an
// admin approves them.
func CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Form tidak valid"})
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	description := strings.TrimSpace(r.FormValue("description"))
	amount, errAmount := strconv.ParseFloat(r.FormValue("amount"), 64)
	categoryID, errCategory := strconv.Atoi(r.FormValue("category_id"))
	condition := strings.TrimSpace(r.FormValue("condition"))

	if name == "" || len(name) > 100 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Nama produk wajib diisi (maks 100 karakter)"})
		return
	}
	if errAmount != nil || amount <= 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Harga tidak valid"})
		return
	}
	if errCategory != nil || categoryID < 1 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Kategori tidak valid"})
		return
	}
	if condition != "Baru" && condition != "Bekas" {
		condition = "Bekas"
	}

	var category models.Category
	if err := database.DB.Where("id = ?", categoryID).First(&category).Error; err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Kategori tidak ditemukan"})
		return
	}

	product := models.Product{
		SellerID:    uid,
		CategoryID:  uint(categoryID),
		Name:        name,
		Description: description,
		Amount:      utils.RoundFloat(amount, 2),
		Condition:   condition,
		Status:      "Pending",
	}
	if loc := strings.TrimSpace(r.FormValue("location")); loc != "" {
		product.Location = &loc
	}
	if err := database.DB.Create(&product).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		ext := strings.ToLower(filepath.Ext(header.Filename))
		if !allowedImageExt[ext] {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Format gambar harus jpg, png atau webp"})
			return
		}
		url, err := utils.UploadProductImage(product.ID, header.Filename, file)
		if err != nil {
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Gagal mengunggah gambar"})
			return
		}
		product.Image = &url
		_ = database.DB.Model(&product).Update("image", url).Error
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Produk dibuat dan menunggu persetujuan admin", Data: product})
}

// GET /v1/users/products?status=&page=&limit=
func GetMyProductsHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
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
	status := strings.TrimSpace(r.URL.Query().Get("status"))

	db := database.DB
	query := db.Model(&models.Product{}).Where("seller_id = ?", uid)
	if status != "" && status != "null" {
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
	if err := query.Preload("Category").Order("id DESC").Limit(limit).Offset(offset).Find(&products).Error; err != nil {
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

// PUT /v1/users/products/{id}
type UpdateProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Amount      *float64 `json:"amount"`
	Condition   *string  `json:"condition"`
	Location    *string  `json:"location"`
}

func UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	product, ok := loadOwnProduct(w, r, uid)
	if !ok {
		return
	}
	if product.Status == "Sold" {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Produk yang sudah terjual tidak dapat diubah"})
		return
	}
	if hasOpenTransaction(product.ID) {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Produk memiliki transaksi berjalan dan tidak dapat diubah"})
		return
	}

	var req UpdateProductRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		n := strings.TrimSpace(*req.Name)
		if n == "" || len(n) > 100 {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Nama produk tidak valid"})
			return
		}
		updates["name"] = n
	}
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Amount != nil {
		if *req.Amount <= 0 {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Harga tidak valid"})
			return
		}
		updates["amount"] = utils.RoundFloat(*req.Amount, 2)
	}
	if req.Condition != nil {
		if *req.Condition != "Baru" && *req.Condition != "Bekas" {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Kondisi harus Baru atau Bekas"})
			return
		}
		updates["condition"] = *req.Condition
	}
	if req.Location != nil {
		updates["location"] = strings.TrimSpace(*req.Location)
	}
	if len(updates) == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Tidak ada perubahan"})
		return
	}

	if err := database.DB.Model(&product).Updates(updates).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Produk diperbarui", Data: product})
}

// DELETE /v1/users/products/{id}
//
// Refused while an open transaction references the listing.
func DeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	product, ok := loadOwnProduct(w, r, uid)
	if !ok {
		return
	}

	if hasOpenTransaction(product.ID) {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Produk memiliki transaksi berjalan dan tidak dapat dihapus"})
		return
	}

	if err := database.DB.Delete(&product).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}
	if product.Image != nil {
		if key, ok := utils.ObjectKeyFromURL(*product.Image); ok {
			_ = utils.DeleteObject(key)
		}
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Produk dihapus"})
}

func hasOpenTransaction(productID uint) bool {
	var open int64
	database.DB.Model(&models.Transaction{}).
		Where("product_id = ? AND status IN ?", productID, []string{
			lifecycle.StatusPending, lifecycle.StatusAccepted, lifecycle.StatusMeeting, lifecycle.StatusDisputed,
		}).Count(&open)
	return open > 0
}

func loadOwnProduct(w http.ResponseWriter, r *http.Request, uid uint) (models.Product, bool) {
	var product models.Product
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id < 1 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "ID produk tidak valid"})
		return product, false
	}
	if err := database.DB.Where("id = ?", id).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Produk tidak ditemukan"})
		} else {
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		}
		return product, false
	}
	if product.SellerID != uid {
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Produk ini bukan milik Anda"})
		return product, false
	}
	return product, true
}
