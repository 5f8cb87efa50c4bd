package users

import (
	"crypto/subtle"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"educycle/database"
	"educycle/lifecycle"
	"educycle/models"
	"educycle/utils"

	"gorm.io/gorm"
)

func cronAuthorized(r *http.Request) bool {
	key := getCronKey()
	if key == "" {
		return false
	}
	got := r.Header.Get("X-CRON-KEY")
	return subtle.ConstantTimeCompare([]byte(got), []byte(key)) == 1
}

func getCronKey() string {
	return strings.TrimSpace(os.Getenv("CRON_KEY"))
}

// POST /v1/cron/expire-pending
//
// Sweeps Pending transactions whose 48 hour response window has passed and
// cancels them. The window is enforced here, not by a client timer, so it
// holds even when nobody has the page open.
func ExpirePendingHandler(w http.ResponseWriter, r *http.Request) {
	if !cronAuthorized(r) {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	db := database.DB
	now := time.Now()
	cutoff := now.Add(-lifecycle.ResponseWindow)

	var stale []models.Transaction
	if err := db.Where("status = ? AND created_at <= ?", lifecycle.StatusPending, cutoff).
		Limit(500).Find(&stale).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

	processed := 0
	for i := range stale {
		t := stale[i]
		if !lifecycle.ExpirePending(&t, now) {
			continue
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			// Status guard: if the seller accepted between the read and
			// here, the accept wins and this row is skipped.
			res := tx.Model(&models.Transaction{}).
				Where("id = ? AND status = ?", t.ID, lifecycle.StatusPending).
				Update("status", lifecycle.StatusCancelled)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return nil
			}
			processed++
			models.PushNotification(tx, t.BuyerID, &t.ID, "transaction",
				"Order "+t.OrderID+" dibatalkan karena penjual tidak merespons dalam 48 jam")
			models.PushNotification(tx, t.SellerID, &t.ID, "transaction",
				"Order "+t.OrderID+" dibatalkan karena tidak direspons dalam 48 jam")
			return nil
		})
		if err != nil {
			log.Printf("[cron] expire-pending tx=%d failed: %v", t.ID, err)
		}
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    map[string]interface{}{"processed": processed},
	})
}

// POST /v1/cron/auto-complete
//
// Sweeps Meeting transactions where the buyer has gone silent for 24 hours
// after the meeting started and completes them in the seller's favor.
func AutoCompleteHandler(w http.ResponseWriter, r *http.Request) {
	if !cronAuthorized(r) {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	db := database.DB
	now := time.Now()
	cutoff := now.Add(-lifecycle.AutoCompleteWindow)

	var stale []models.Transaction
	if err := db.Where("status = ? AND buyer_confirmed = ? AND meeting_at IS NOT NULL AND meeting_at <= ?",
		lifecycle.StatusMeeting, false, cutoff).
		Limit(500).Find(&stale).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

	processed := 0
	for i := range stale {
		t := stale[i]
		if !lifecycle.AutoComplete(&t, now) {
			continue
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			// A confirmation landing after the read flips buyer_confirmed
			// or the status, and the guard skips the row.
			res := tx.Model(&models.Transaction{}).
				Where("id = ? AND status = ? AND buyer_confirmed = ?", t.ID, lifecycle.StatusMeeting, false).
				Update("status", lifecycle.StatusAutoCompleted)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return nil
			}
			processed++
			if err := tx.Model(&models.Product{}).
				Where("id = ? AND status = ?", t.ProductID, "Active").
				Update("status", "Sold").Error; err != nil {
				return err
			}
			models.PushNotification(tx, t.BuyerID, &t.ID, "transaction",
				"Order "+t.OrderID+" diselesaikan otomatis setelah 24 jam tanpa konfirmasi")
			models.PushNotification(tx, t.SellerID, &t.ID, "transaction",
				"Order "+t.OrderID+" diselesaikan otomatis")
			return nil
		})
		if err != nil {
			log.Printf("[cron] auto-complete tx=%d failed: %v", t.ID, err)
		}
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    map[string]interface{}{"processed": processed},
	})
}
