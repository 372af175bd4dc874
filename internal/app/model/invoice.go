package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// InvoiceStatuses lists every status label, in display order.
var InvoiceStatuses = []InvoiceStatus{
	InvoiceStatusDraft,
	InvoiceStatusSent,
	InvoiceStatusPaid,
	InvoiceStatusOverdue,
	InvoiceStatusCancelled,
}

type Invoice struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	UserID        uint            `gorm:"not null;uniqueIndex:idx_invoices_user_invoice_number,priority:1;index" json:"user_id"`
	BusinessID    uint            `gorm:"not null;index" json:"business_id"`
	CustomerID    uint            `gorm:"not null;index" json:"customer_id"`
	InvoiceNumber string          `gorm:"size:50;not null;uniqueIndex:idx_invoices_user_invoice_number,priority:2" json:"invoice_number"`
	InvoiceDate   time.Time       `gorm:"not null" json:"invoice_date"`
	DueDate       *time.Time      `json:"due_date,omitempty"`
	Status        InvoiceStatus   `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	IsInterState  bool            `gorm:"not null;default:false" json:"is_inter_state"` // fixed when totals are computed
	Subtotal      decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"subtotal"`
	TotalDiscount decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total_discount"`
	TotalTax      decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total_tax"`
	CGSTAmount    decimal.Decimal `gorm:"column:cgst_amount;type:decimal(16,4);not null" json:"cgst_amount"`
	SGSTAmount    decimal.Decimal `gorm:"column:sgst_amount;type:decimal(16,4);not null" json:"sgst_amount"`
	IGSTAmount    decimal.Decimal `gorm:"column:igst_amount;type:decimal(16,4);not null" json:"igst_amount"`
	RoundOff      decimal.Decimal `gorm:"type:decimal(6,2);not null" json:"round_off"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total_amount"`
	Notes         string          `gorm:"size:1000" json:"notes,omitempty"`
	Terms         string          `gorm:"size:1000" json:"terms,omitempty"`
	PaymentTerms  string          `gorm:"size:255" json:"payment_terms,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	Business *Business     `gorm:"foreignKey:BusinessID" json:"business,omitempty"`
	Customer *Customer     `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items    []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (Invoice) TableName() string {
	return "invoices"
}

// InvoiceItem snapshots the catalog item so later catalog edits leave
// historical invoices untouched. Line figures are stored unrounded.
type InvoiceItem struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	InvoiceID       uint            `gorm:"not null;index" json:"invoice_id"`
	ItemID          *uint           `gorm:"index" json:"item_id,omitempty"`
	Position        int             `gorm:"not null" json:"position"`
	Name            string          `gorm:"size:255;not null" json:"name"`
	Description     string          `gorm:"size:1000" json:"description,omitempty"`
	HSNCode         string          `gorm:"column:hsn_code;size:8" json:"hsn_code"`
	Unit            string          `gorm:"size:20" json:"unit"`
	Quantity        decimal.Decimal `gorm:"type:decimal(14,3);not null" json:"quantity"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"unit_price"`
	TaxRate         decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"tax_rate"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"discount_percent"`
	DiscountAmount  decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"discount_amount"`
	LineGross       decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"line_gross"`
	LineDiscount    decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"line_discount"`
	LineTaxable     decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"line_taxable"`
	LineTax         decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"line_tax"`
	LineTotal       decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"line_total"`
}

func (InvoiceItem) TableName() string {
	return "invoice_items"
}
