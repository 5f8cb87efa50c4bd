package models

import "time"

// Review is written by the buyer about the seller, one per completed
// transaction.
type Review struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	TransactionID uint      `gorm:"not null;uniqueIndex" json:"transaction_id"`
	ReviewerID    uint      `gorm:"not null;index" json:"reviewer_id"`
	SellerID      uint      `gorm:"not null;index" json:"seller_id"`
	Rating        int       `gorm:"not null" json:"rating"`
	Comment       *string   `gorm:"type:text" json:"comment,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"-"`
}

func (Review) TableName() string {
	return "reviews"
}
