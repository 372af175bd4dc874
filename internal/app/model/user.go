package model

import (
	"time"
)

type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`                        // user ID
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`  // login email
	PasswordHash string    `gorm:"not null" json:"-"`                           // bcrypt hash
	Name         string    `gorm:"size:255;not null" json:"name"`               // display name
	Phone        string    `gorm:"size:20" json:"phone,omitempty"`              // contact number
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
