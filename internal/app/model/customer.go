package model

import (
	"time"
)

type CustomerType string

const (
	CustomerTypeIndividual CustomerType = "individual"
	CustomerTypeBusiness   CustomerType = "business"
)

type Customer struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	UserID       uint         `gorm:"not null;index" json:"user_id"`
	Name         string       `gorm:"size:255;not null" json:"name"`
	GSTNumber    string       `gorm:"column:gst_number;size:15" json:"gst_number,omitempty"` // unregistered buyers have none
	Email        string       `gorm:"size:255" json:"email,omitempty"`
	Phone        string       `gorm:"size:20" json:"phone,omitempty"`
	Address      string       `gorm:"size:500" json:"address,omitempty"`
	City         string       `gorm:"size:100" json:"city,omitempty"`
	State        string       `gorm:"size:100;not null" json:"state"`
	Pincode      string       `gorm:"size:6" json:"pincode,omitempty"`
	CustomerType CustomerType `gorm:"type:varchar(20);not null;default:'individual'" json:"customer_type"`
	Notes        string       `gorm:"size:1000" json:"notes,omitempty"`
	IsActive     bool         `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

func (Customer) TableName() string {
	return "customers"
}
