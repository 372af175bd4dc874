package dto

import "github.com/shopspring/decimal"

// DateLayout is the wire format for invoice and due dates.
const DateLayout = "2006-01-02"

type InvoiceItemInput struct {
	ItemID          *uint            `json:"item_id"`
	Name            string           `json:"name" validate:"required_without=ItemID,max=255"`
	Description     string           `json:"description" validate:"omitempty,max=1000"`
	HSNCode         string           `json:"hsn_code" validate:"omitempty,hsn"`
	Unit            string           `json:"unit" validate:"omitempty,max=20"`
	Quantity        decimal.Decimal  `json:"quantity" validate:"gt=0"`
	UnitPrice       *decimal.Decimal `json:"unit_price" validate:"omitnil,gte=0"` // defaults to the catalog price
	TaxRate         *decimal.Decimal `json:"tax_rate" validate:"omitnil,gte=0,lte=100"`
	DiscountPercent decimal.Decimal  `json:"discount_percent" validate:"gte=0,lte=100"`
	DiscountAmount  decimal.Decimal  `json:"discount_amount" validate:"gte=0"`
}

func (in *InvoiceItemInput) Normalize() {
	trim(&in.Name)
	trim(&in.HSNCode)
	trim(&in.Unit)
}

type InvoiceInput struct {
	BusinessID    uint               `json:"business_id" validate:"required"`
	CustomerID    uint               `json:"customer_id" validate:"required"`
	InvoiceNumber string             `json:"invoice_number" validate:"required,max=50"`
	InvoiceDate   string             `json:"invoice_date" validate:"required,datetime=2006-01-02"`
	DueDate       string             `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Status        string             `json:"status" validate:"omitempty,oneof=draft sent paid overdue cancelled"`
	Items         []InvoiceItemInput `json:"items" validate:"required,min=1,dive"`
	Notes         string             `json:"notes" validate:"omitempty,max=1000"`
	Terms         string             `json:"terms" validate:"omitempty,max=1000"`
	PaymentTerms  string             `json:"payment_terms" validate:"omitempty,max=255"`
}

func (in *InvoiceInput) Normalize() {
	trim(&in.InvoiceNumber)
	trim(&in.InvoiceDate)
	trim(&in.DueDate)
	for i := range in.Items {
		in.Items[i].Normalize()
	}
}

// InvoiceUpdate replaces the fields that are set. When Items is set the whole
// line list is replaced and totals are recomputed.
type InvoiceUpdate struct {
	ID            uint                `json:"id" validate:"required"`
	BusinessID    *uint               `json:"business_id" validate:"omitnil,gt=0"`
	CustomerID    *uint               `json:"customer_id" validate:"omitnil,gt=0"`
	InvoiceNumber *string             `json:"invoice_number" validate:"omitnil,min=1,max=50"`
	InvoiceDate   *string             `json:"invoice_date" validate:"omitnil,datetime=2006-01-02"`
	DueDate       *string             `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Status        *string             `json:"status" validate:"omitnil,oneof=draft sent paid overdue cancelled"`
	Items         *[]InvoiceItemInput `json:"items" validate:"omitnil,min=1,dive"`
	Notes         *string             `json:"notes" validate:"omitempty,max=1000"`
	Terms         *string             `json:"terms" validate:"omitempty,max=1000"`
	PaymentTerms  *string             `json:"payment_terms" validate:"omitempty,max=255"`
}

func (in *InvoiceUpdate) Normalize() {
	trim(in.InvoiceNumber)
	trim(in.InvoiceDate)
	trim(in.DueDate)
	if in.Items != nil {
		for i := range *in.Items {
			(*in.Items)[i].Normalize()
		}
	}
}

type InvoiceStatusInput struct {
	Status string `json:"status" validate:"required,oneof=draft sent paid overdue cancelled"`
}

// InvoiceFilter narrows invoice listings.
type InvoiceFilter struct {
	Status     string `form:"status" validate:"omitempty,oneof=draft sent paid overdue cancelled"`
	CustomerID uint   `form:"customer_id"`
	Search     string `form:"search" validate:"omitempty,max=100"`
	Page       int    `form:"page" validate:"omitempty,gte=1"`
	PageSize   int    `form:"page_size" validate:"omitempty,gte=1,lte=100"`
}

func (f *InvoiceFilter) Normalize() {
	trim(&f.Search)
	if f.Page == 0 {
		f.Page = 1
	}
	if f.PageSize == 0 {
		f.PageSize = 20
	}
}

func (f InvoiceFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}
