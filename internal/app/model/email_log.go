package model

import (
	"time"
)

type EmailStatus string

const (
	EmailStatusPending EmailStatus = "pending"
	EmailStatusSent    EmailStatus = "sent"
	EmailStatusFailed  EmailStatus = "failed"
)

// EmailLog records one invoice email. Retries are user-triggered and bounded
// by MaxRetries.
type EmailLog struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	UserID       uint        `gorm:"not null;index" json:"user_id"`
	InvoiceID    uint        `gorm:"not null;index" json:"invoice_id"`
	Recipient    string      `gorm:"size:255;not null" json:"recipient"`
	Subject      string      `gorm:"size:255;not null" json:"subject"`
	Message      string      `gorm:"size:1000" json:"message,omitempty"`
	Status       EmailStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	RetryCount   int         `gorm:"not null;default:0" json:"retry_count"`
	MaxRetries   int         `gorm:"not null;default:3" json:"max_retries"`
	ErrorMessage string      `gorm:"size:1000" json:"error_message,omitempty"`
	ProviderID   string      `gorm:"size:100" json:"provider_id,omitempty"` // Postmark message ID
	SentAt       *time.Time  `json:"sent_at,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

func (EmailLog) TableName() string {
	return "email_logs"
}

func (e *EmailLog) CanRetry() bool {
	return e.RetryCount < e.MaxRetries
}
