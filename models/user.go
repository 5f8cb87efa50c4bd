package models

import "time"

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:191;uniqueIndex;not null" json:"email"`
	Number    string    `gorm:"size:20;uniqueIndex;not null" json:"number"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Campus    *string   `gorm:"size:100" json:"campus,omitempty"`
	Status    string    `gorm:"type:enum('Active','Inactive','Suspend');default:'Active'" json:"status"`
	Profile   *string   `gorm:"type:varchar(255);null" json:"profile,omitempty"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (User) TableName() string {
	return "users"
}
