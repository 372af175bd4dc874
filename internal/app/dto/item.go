package dto

import "github.com/shopspring/decimal"

type ItemInput struct {
	Name        string          `json:"name" validate:"required,max=255"`
	Description string          `json:"description" validate:"omitempty,max=1000"`
	HSNCode     string          `json:"hsn_code" validate:"required,hsn"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"gte=0"`
	TaxRate     decimal.Decimal `json:"tax_rate" validate:"gte=0,lte=100"`
	Unit        string          `json:"unit" validate:"omitempty,max=20"`
	Category    string          `json:"category" validate:"omitempty,max=100"`
}

func (in *ItemInput) Normalize() {
	trim(&in.Name)
	trim(&in.HSNCode)
	trim(&in.Unit)
	trim(&in.Category)
	if in.Unit == "" {
		in.Unit = "pcs"
	}
}

type ItemUpdate struct {
	ID          uint             `json:"id" validate:"required"`
	Name        *string          `json:"name" validate:"omitnil,min=1,max=255"`
	Description *string          `json:"description" validate:"omitempty,max=1000"`
	HSNCode     *string          `json:"hsn_code" validate:"omitnil,hsn"`
	UnitPrice   *decimal.Decimal `json:"unit_price" validate:"omitnil,gte=0"`
	TaxRate     *decimal.Decimal `json:"tax_rate" validate:"omitnil,gte=0,lte=100"`
	Unit        *string          `json:"unit" validate:"omitnil,min=1,max=20"`
	Category    *string          `json:"category" validate:"omitempty,max=100"`
}

func (in *ItemUpdate) Normalize() {
	trim(in.Name)
	trim(in.HSNCode)
	trim(in.Unit)
	trim(in.Category)
}
