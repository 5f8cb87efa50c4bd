package models

import "time"

type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SellerID    uint      `gorm:"column:seller_id;not null;index" json:"seller_id"`
	CategoryID  uint      `gorm:"column:category_id;not null;index" json:"category_id"`
	Name        string    `gorm:"column:name;size:100;not null" json:"name"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	Amount      float64   `gorm:"column:amount;type:decimal(15,2);not null" json:"amount"`
	Condition   string    `gorm:"column:condition;type:enum('Baru','Bekas');default:'Bekas'" json:"condition"`
	Location    *string   `gorm:"column:location;size:100" json:"location,omitempty"`
	Image       *string   `gorm:"column:image;type:varchar(255)" json:"image,omitempty"`
	Status      string    `gorm:"column:status;type:enum('Pending','Active','Rejected','Sold');default:'Pending'" json:"status"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`

	// Relations
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Seller   *User     `gorm:"foreignKey:SellerID" json:"seller,omitempty"`
}

func (Product) TableName() string {
	return "products"
}
