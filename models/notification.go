package models

import (
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Notification struct {
	ID            string     `gorm:"primaryKey;type:char(36)" json:"id"`
	UserID        uint       `gorm:"not null;index" json:"user_id"`
	TransactionID *uint      `gorm:"index" json:"transaction_id,omitempty"`
	Kind          string     `gorm:"type:varchar(32);not null" json:"kind"`
	Message       string     `gorm:"type:text;not null" json:"message"`
	ReadAt        *time.Time `json:"read_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

// PushNotification inserts a notification row best-effort. Lifecycle
// transitions must never fail because the feed insert did; errors are
// logged and dropped.
func PushNotification(db *gorm.DB, userID uint, transactionID *uint, kind, message string) {
	n := Notification{
		ID:            uuid.NewString(),
		UserID:        userID,
		TransactionID: transactionID,
		Kind:          kind,
		Message:       message,
	}
	if err := db.Create(&n).Error; err != nil {
		log.Printf("[notify] gagal menyimpan notifikasi user=%d kind=%s: %v", userID, kind, err)
	}
}
