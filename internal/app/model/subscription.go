package model

import (
	"time"
)

type SubscriptionStatus string

const (
	SubscriptionStatusInactive  SubscriptionStatus = "inactive"  // order created, payment pending
	SubscriptionStatusActive    SubscriptionStatus = "active"    // paid, within validity window
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled" // cancelled by owner
	SubscriptionStatusExpired   SubscriptionStatus = "expired"   // window elapsed
)

type Subscription struct {
	ID                     uint               `gorm:"primaryKey" json:"id"`
	UserID                 uint               `gorm:"not null;index" json:"user_id"`
	PlanName               string             `gorm:"size:50;not null" json:"plan_name"`
	Status                 SubscriptionStatus `gorm:"type:varchar(20);not null;default:'inactive';index" json:"status"`
	Price                  int64              `gorm:"not null" json:"price"` // minor units (paise)
	Currency               string             `gorm:"size:3;not null;default:'INR'" json:"currency"`
	BillingCycle           string             `gorm:"size:20;not null;default:'monthly'" json:"billing_cycle"`
	RazorpayOrderID        string             `gorm:"size:64;index" json:"razorpay_order_id,omitempty"`
	RazorpayPaymentID      string             `gorm:"size:64;index" json:"razorpay_payment_id,omitempty"`
	RazorpaySubscriptionID string             `gorm:"size:64;index" json:"razorpay_subscription_id,omitempty"`
	Receipt                string             `gorm:"size:100;index" json:"receipt,omitempty"`
	IsActive               bool               `gorm:"not null;default:false" json:"is_active"`
	StartedAt              *time.Time         `json:"started_at,omitempty"`
	ExpiresAt              *time.Time         `json:"expires_at,omitempty"`
	CancelledAt            *time.Time         `json:"cancelled_at,omitempty"`
	CreatedAt              time.Time          `json:"created_at"`
	UpdatedAt              time.Time          `json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// IsTerminal reports whether the row can no longer be activated or extended.
// A cancelled or expired subscription is only ever followed by a new row.
func (s *Subscription) IsTerminal() bool {
	return s.Status == SubscriptionStatusCancelled || s.Status == SubscriptionStatusExpired
}
