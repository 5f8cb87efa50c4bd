package users

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"educycle/database"
	"educycle/lifecycle"
	"educycle/middleware"
	"educycle/models"
	"educycle/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type CreateTransactionRequest struct {
	ProductID uint `json:"product_id"`
}

type VerifyOtpRequest struct {
	Code string `json:"code" validate:"required"`
}

type DisputeRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type transactionDTO struct {
	ID              uint    `json:"id"`
	OrderID         string  `json:"order_id"`
	ProductID       uint    `json:"product_id"`
	BuyerID         uint    `json:"buyer_id"`
	SellerID        uint    `json:"seller_id"`
	Amount          float64 `json:"amount"`
	Status          string  `json:"status"`
	BuyerConfirmed  bool    `json:"buyer_confirmed"`
	SellerConfirmed bool    `json:"seller_confirmed"`
	MeetingAt       *string `json:"meeting_at,omitempty"`
	DisputeReason   *string `json:"dispute_reason,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

func toTransactionDTO(t *models.Transaction) transactionDTO {
	dto := transactionDTO{
		ID:              t.ID,
		OrderID:         t.OrderID,
		ProductID:       t.ProductID,
		BuyerID:         t.BuyerID,
		SellerID:        t.SellerID,
		Amount:          t.Amount,
		Status:          t.Status,
		BuyerConfirmed:  t.BuyerConfirmed,
		SellerConfirmed: t.SellerConfirmed,
		DisputeReason:   t.DisputeReason,
		CreatedAt:       t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       t.UpdatedAt.Format(time.RFC3339),
	}
	if t.MeetingAt != nil {
		s := t.MeetingAt.Format(time.RFC3339)
		dto.MeetingAt = &s
	}
	return dto
}

// POST /v1/users/transactions
func CreateTransactionHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	var req CreateTransactionRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if req.ProductID == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "product_id wajib diisi"})
		return
	}

	db := database.DB
	var created models.Transaction
	err := db.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Where("id = ?", req.ProductID).First(&product).Error; err != nil {
			return err
		}
		if product.Status != "Active" {
			return errProductUnavailable
		}
		if product.SellerID == uid {
			return errOwnProduct
		}

		// Amount is snapshotted here; later price edits never touch an
		// open transaction.
		created = models.Transaction{
			OrderID:   utils.GenerateOrderID(uid),
			ProductID: product.ID,
			BuyerID:   uid,
			SellerID:  product.SellerID,
			Amount:    product.Amount,
			Status:    lifecycle.StatusPending,
		}
		return tx.Create(&created).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Produk tidak ditemukan"})
		case errors.Is(err, errProductUnavailable):
			utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Produk tidak tersedia untuk dibeli"})
		case errors.Is(err, errOwnProduct):
			utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Anda tidak dapat membeli produk sendiri"})
		default:
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Terjadi kesalahan sistem, silakan coba lagi"})
		}
		return
	}

	models.PushNotification(db, created.SellerID, &created.ID, "transaction",
		"Permintaan pembelian baru untuk produk Anda, order "+created.OrderID)

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Transaksi dibuat", Data: toTransactionDTO(&created)})
}

var (
	errProductUnavailable = errors.New("product unavailable")
	errOwnProduct         = errors.New("own product")
)

// GET /v1/users/transactions?role=buyer|seller&status=&page=&limit=
func GetTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	role := strings.TrimSpace(r.URL.Query().Get("role"))
	status := strings.TrimSpace(r.URL.Query().Get("status"))

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 10
	}

	db := database.DB
	query := db.Model(&models.Transaction{})
	switch role {
	case "buyer":
		query = query.Where("buyer_id = ?", uid)
	case "seller":
		query = query.Where("seller_id = ?", uid)
	default:
		query = query.Where("buyer_id = ? OR seller_id = ?", uid, uid)
	}
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

	var transactions []models.Transaction
	if err := query.Order("id DESC").Limit(limit).Offset(offset).Find(&transactions).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

	items := make([]transactionDTO, 0, len(transactions))
	for i := range transactions {
		items = append(items, toTransactionDTO(&transactions[i]))
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"data": items,
			"pagination": map[string]interface{}{
				"page":        page,
				"limit":       limit,
				"total_rows":  totalRows,
				"total_pages": totalPages,
			},
		},
	})
}

// GET /v1/users/transactions/{id}
func GetTransactionDetailHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	t, ok := loadTransaction(w, r)
	if !ok {
		return
	}
	if lifecycle.RoleOf(&t, uid) == lifecycle.RoleNone {
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Anda bukan pihak dalam transaksi ini"})
		return
	}

	var product models.Product
	data := map[string]interface{}{"transaction": toTransactionDTO(&t)}
	if err := database.DB.Preload("Category").Where("id = ?", t.ProductID).First(&product).Error; err == nil {
		data["product"] = product
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: data})
}

// POST /v1/users/transactions/{id}/accept
func AcceptTransactionHandler(w http.ResponseWriter, r *http.Request) {
	transitionHandler(w, r, func(t *models.Transaction, uid uint) error {
		return lifecycle.Accept(t, uid)
	}, func(t *models.Transaction) (uint, string) {
		return t.BuyerID, "Penjual menerima permintaan pembelian Anda, order " + t.OrderID
	})
}

// POST /v1/users/transactions/{id}/reject
func RejectTransactionHandler(w http.ResponseWriter, r *http.Request) {
	transitionHandler(w, r, func(t *models.Transaction, uid uint) error {
		return lifecycle.Reject(t, uid)
	}, func(t *models.Transaction) (uint, string) {
		return t.BuyerID, "Penjual menolak permintaan pembelian Anda, order " + t.OrderID
	})
}

// POST /v1/users/transactions/{id}/cancel
func CancelTransactionHandler(w http.ResponseWriter, r *http.Request) {
	transitionHandler(w, r, func(t *models.Transaction, uid uint) error {
		return lifecycle.Cancel(t, uid)
	}, func(t *models.Transaction) (uint, string) {
		return t.SellerID, "Pembeli membatalkan permintaan pembelian, order " + t.OrderID
	})
}

// POST /v1/users/transactions/{id}/begin-meeting
func BeginMeetingHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	t, ok := loadTransaction(w, r)
	if !ok {
		return
	}
	prev := t.Status
	if err := lifecycle.BeginMeeting(&t, uid, time.Now()); err != nil {
		writeLifecycleError(w, err)
		return
	}
	if !casUpdate(w, &t, prev, map[string]interface{}{"status": t.Status, "meeting_at": t.MeetingAt}) {
		return
	}
	other := counterparty(&t, uid)
	models.PushNotification(database.DB, other, &t.ID, "transaction", "Pertemuan serah terima dimulai untuk order "+t.OrderID)
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: toTransactionDTO(&t)})
}

// POST /v1/users/transactions/{id}/generate-otp
//
// The raw code appears only in this response, handed by the seller to the
// buyer in person.
func GenerateOtpHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	t, ok := loadTransaction(w, r)
	if !ok {
		return
	}

	if allowed, wait, msg := middleware.GetOTPRateLimiter().Check(uid); !allowed {
		utils.WriteJSON(w, http.StatusTooManyRequests, utils.APIResponse{
			Success: false,
			Message: msg,
			Data:    map[string]interface{}{"retry_after_seconds": int(wait.Seconds())},
		})
		return
	}

	prev := t.Status
	code, err := lifecycle.GenerateOtp(&t, uid, time.Now())
	if err != nil {
		writeLifecycleError(w, err)
		return
	}
	if !casUpdate(w, &t, prev, map[string]interface{}{"otp_code": t.OtpCode, "otp_expired_at": t.OtpExpiredAt}) {
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Kode serah terima dibuat, berikan kepada pembeli",
		Data: map[string]interface{}{
			"otp_code":   code,
			"expired_at": t.OtpExpiredAt.Format(time.RFC3339),
		},
	})
}

// POST /v1/users/transactions/{id}/verify-otp
func VerifyOtpHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	var req VerifyOtpRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	t, ok := loadTransaction(w, r)
	if !ok {
		return
	}

	prev := t.Status
	if err := lifecycle.VerifyOtp(&t, uid, strings.TrimSpace(req.Code), time.Now()); err != nil {
		writeLifecycleError(w, err)
		return
	}
	// The code is cleared in the same conditional write that records the
	// confirmation, so a replay can never verify again.
	updates := map[string]interface{}{
		"buyer_confirmed": true,
		"otp_code":        nil,
		"otp_expired_at":  nil,
	}
	if !casUpdate(w, &t, prev, updates) {
		return
	}
	completeIfBothConfirmed(&t)
	models.PushNotification(database.DB, t.SellerID, &t.ID, "transaction", "Pembeli memverifikasi kode serah terima untuk order "+t.OrderID)
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Kode terverifikasi", Data: toTransactionDTO(&t)})
}

// POST /v1/users/transactions/{id}/confirm-receipt
func ConfirmReceiptHandler(w http.ResponseWriter, r *http.Request) {
	confirmHandler(w, r, true)
}

// POST /v1/users/transactions/{id}/confirm-handover
func ConfirmHandoverHandler(w http.ResponseWriter, r *http.Request) {
	confirmHandler(w, r, false)
}

func confirmHandler(w http.ResponseWriter, r *http.Request, buyerSide bool) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	t, ok := loadTransaction(w, r)
	if !ok {
		return
	}

	prev := t.Status
	var err error
	var column string
	if buyerSide {
		err = lifecycle.ConfirmReceipt(&t, uid)
		column = "buyer_confirmed"
	} else {
		err = lifecycle.ConfirmHandover(&t, uid)
		column = "seller_confirmed"
	}
	if err != nil {
		writeLifecycleError(w, err)
		return
	}
	if !casUpdate(w, &t, prev, map[string]interface{}{column: true}) {
		return
	}
	completeIfBothConfirmed(&t)
	other := counterparty(&t, uid)
	models.PushNotification(database.DB, other, &t.ID, "transaction", "Konfirmasi serah terima diterima untuk order "+t.OrderID)
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Konfirmasi tersimpan", Data: toTransactionDTO(&t)})
}

// POST /v1/users/transactions/{id}/dispute
func DisputeTransactionHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	var req DisputeRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	t, ok := loadTransaction(w, r)
	if !ok {
		return
	}

	prev := t.Status
	if err := lifecycle.Dispute(&t, uid, strings.TrimSpace(req.Reason)); err != nil {
		writeLifecycleError(w, err)
		return
	}
	if !casUpdate(w, &t, prev, map[string]interface{}{"status": t.Status, "dispute_reason": t.DisputeReason}) {
		return
	}
	other := counterparty(&t, uid)
	models.PushNotification(database.DB, other, &t.ID, "dispute", "Sengketa diajukan untuk order "+t.OrderID+", admin akan meninjau")
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Sengketa diajukan", Data: toTransactionDTO(&t)})
}

// transitionHandler covers the plain status transitions that need no extra
// payload or side effects beyond a notification.
func transitionHandler(w http.ResponseWriter, r *http.Request, apply func(*models.Transaction, uint) error, note func(*models.Transaction) (uint, string)) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	t, ok := loadTransaction(w, r)
	if !ok {
		return
	}
	prev := t.Status
	if err := apply(&t, uid); err != nil {
		writeLifecycleError(w, err)
		return
	}
	if !casUpdate(w, &t, prev, map[string]interface{}{"status": t.Status}) {
		return
	}
	target, msg := note(&t)
	models.PushNotification(database.DB, target, &t.ID, "transaction", msg)
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: toTransactionDTO(&t)})
}

func loadTransaction(w http.ResponseWriter, r *http.Request) (models.Transaction, bool) {
	var t models.Transaction
	idStr := mux.Vars(r)["id"]
	id, err := strconv.Atoi(idStr)
	if err != nil || id < 1 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "ID transaksi tidak valid"})
		return t, false
	}
	if err := database.DB.Where("id = ?", id).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Transaksi tidak ditemukan"})
		} else {
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		}
		return t, false
	}
	return t, true
}

// casUpdate writes the mutated fields conditioned on the status being
// unchanged since the record was read. A lost race answers 409 with the
// status that won so the client can re-render and retry.
func casUpdate(w http.ResponseWriter, t *models.Transaction, prevStatus string, updates map[string]interface{}) bool {
	res := database.DB.Model(&models.Transaction{}).
		Where("id = ? AND status = ?", t.ID, prevStatus).
		Updates(updates)
	if res.Error != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return false
	}
	if res.RowsAffected == 0 {
		var current models.Transaction
		if err := database.DB.Where("id = ?", t.ID).First(&current).Error; err != nil {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Transaksi tidak ditemukan"})
			return false
		}
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{
			Success: false,
			Message: "Transaksi berubah di sisi lain, silakan muat ulang",
			Data:    map[string]interface{}{"status": current.Status},
		})
		return false
	}
	return true
}

// completeIfBothConfirmed performs the single Meeting -> Completed
// transition once both confirmations are on the record. The guarded UPDATE
// makes sure exactly one of two racing confirmations commits it; the loser
// re-reads and finds Completed, which is success, not an error.
func completeIfBothConfirmed(t *models.Transaction) {
	db := database.DB
	res := db.Model(&models.Transaction{}).
		Where("id = ? AND status = ? AND buyer_confirmed = ? AND seller_confirmed = ?",
			t.ID, lifecycle.StatusMeeting, true, true).
		Update("status", lifecycle.StatusCompleted)
	if res.Error != nil {
		return
	}
	if res.RowsAffected > 0 {
		markProductSold(db, t)
		models.PushNotification(db, t.BuyerID, &t.ID, "transaction", "Transaksi "+t.OrderID+" selesai")
		models.PushNotification(db, t.SellerID, &t.ID, "transaction", "Transaksi "+t.OrderID+" selesai")
	}
	// Refresh the local copy either way so the response shows the outcome.
	_ = db.Where("id = ?", t.ID).First(t).Error
}

func markProductSold(db *gorm.DB, t *models.Transaction) {
	_ = db.Model(&models.Product{}).
		Where("id = ? AND status = ?", t.ProductID, "Active").
		Update("status", "Sold").Error
}

func counterparty(t *models.Transaction, uid uint) uint {
	if uid == t.BuyerID {
		return t.SellerID
	}
	return t.BuyerID
}

func writeLifecycleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, lifecycle.ErrForbidden):
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Anda tidak berhak melakukan aksi ini"})
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Aksi tidak valid untuk status transaksi saat ini"})
	case errors.Is(err, lifecycle.ErrInvalidOtp):
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Kode serah terima tidak valid."})
	case errors.Is(err, lifecycle.ErrOtpExpired):
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Kode serah terima sudah kadaluarsa."})
	default:
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Terjadi kesalahan sistem, silakan coba lagi"})
	}
}
