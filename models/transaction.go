package models

import "time"

// Transaction is a single peer-to-peer exchange of one product between a
// buyer and a seller. Amount is snapshotted from the product at creation
// time; later price edits never touch an open transaction. The OTP fields
// are ephemeral handoff state and are never serialized.
type Transaction struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	OrderID         string     `gorm:"type:varchar(191);not null;uniqueIndex" json:"order_id"`
	ProductID       uint       `gorm:"not null;index" json:"product_id"`
	BuyerID         uint       `gorm:"not null;index" json:"buyer_id"`
	SellerID        uint       `gorm:"not null;index" json:"seller_id"`
	Amount          float64    `gorm:"type:decimal(15,2);not null" json:"amount"`
	Status          string     `gorm:"type:enum('Pending','Accepted','Meeting','Completed','AutoCompleted','Rejected','Cancelled','Disputed');not null;default:'Pending';index" json:"status"`
	OtpCode         *string    `gorm:"type:varchar(12)" json:"-"`
	OtpExpiredAt    *time.Time `json:"-"`
	BuyerConfirmed  bool       `gorm:"not null;default:false" json:"buyer_confirmed"`
	SellerConfirmed bool       `gorm:"not null;default:false" json:"seller_confirmed"`
	MeetingAt       *time.Time `json:"meeting_at,omitempty"`
	DisputeReason   *string    `gorm:"type:text" json:"dispute_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	// Relations
	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (Transaction) TableName() string {
	return "transactions"
}
