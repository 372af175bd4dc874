package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is a catalog line template. Invoices copy its fields at creation time.
type Item struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      uint            `gorm:"not null;index" json:"user_id"`
	Name        string          `gorm:"size:255;not null" json:"name"`
	Description string          `gorm:"size:1000" json:"description,omitempty"`
	HSNCode     string          `gorm:"column:hsn_code;size:8;not null" json:"hsn_code"` // HSN/SAC code
	UnitPrice   decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"unit_price"`
	TaxRate     decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"tax_rate"` // percent
	Unit        string          `gorm:"size:20;not null;default:'pcs'" json:"unit"`
	Category    string          `gorm:"size:100;index" json:"category,omitempty"`
	IsActive    bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (Item) TableName() string {
	return "items"
}
