package model

import (
	"time"
)

// Business is a GST-registered seller profile owned by a user.
// At most one active business per owner has IsPrimary set; the database
// enforces it with a partial unique index (see db.Migrate).
type Business struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                              // business ID
	UserID    uint      `gorm:"not null;index" json:"user_id"`                     // owner
	Name      string    `gorm:"size:255;not null" json:"name"`                     // legal name
	GSTNumber string    `gorm:"column:gst_number;size:15;not null" json:"gst_number"`
	PANNumber string    `gorm:"column:pan_number;size:10" json:"pan_number,omitempty"`
	Address   string    `gorm:"size:500;not null" json:"address"`
	City      string    `gorm:"size:100;not null" json:"city"`
	State     string    `gorm:"size:100;not null" json:"state"` // drives CGST/SGST vs IGST
	Pincode   string    `gorm:"size:6;not null" json:"pincode"`
	Email     string    `gorm:"size:255" json:"email,omitempty"`
	Phone     string    `gorm:"size:20" json:"phone,omitempty"`
	IsPrimary bool      `gorm:"not null;default:false" json:"is_primary"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"` // false = soft deleted
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Business) TableName() string {
	return "businesses"
}
